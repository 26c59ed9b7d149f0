package config

import (
	"fmt"
	"sort"
	"strings"

	"phofile/internal/domain"
	appErrors "phofile/internal/errors"
)

// Option keys accepted in a job section.
const (
	OptSource      = "src"
	OptDestination = "dst"
	OptTemplate    = "saveas"
	OptMethod      = "method"
	OptOverwrite   = "overwrite"
	OptLog         = "log"
	OptEnabled     = "enabled"
	OptDecoder     = "decoder"
	OptDateTags    = "datetags"
	OptDateFormats = "dateformats"
)

var requiredOptions = []string{OptSource, OptDestination, OptTemplate, OptMethod}

var knownOptions = map[string]bool{
	OptSource:      true,
	OptDestination: true,
	OptTemplate:    true,
	OptMethod:      true,
	OptOverwrite:   true,
	OptLog:         true,
	OptEnabled:     true,
	OptDecoder:     true,
	OptDateTags:    true,
	OptDateFormats: true,
}

// BuildJob validates a section and turns it into an immutable job. Any
// error is an InvalidConfig AppError naming the section.
func BuildJob(section Section) (domain.Job, error) {
	job, err := buildJob(section)
	if err != nil {
		return domain.Job{}, appErrors.Wrap(appErrors.InvalidConfig, "config", section.Name, err)
	}
	return job, nil
}

// BuildJobs builds every section, collecting per-section errors instead of
// stopping at the first one.
func BuildJobs(sections []Section) ([]domain.Job, []error) {
	var jobs []domain.Job
	var errs []error
	for _, section := range sections {
		job, err := BuildJob(section)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, errs
}

func buildJob(section Section) (domain.Job, error) {
	if section.Err != nil {
		return domain.Job{}, section.Err
	}
	opts := section.Options

	var unknown []string
	for key := range opts {
		if !knownOptions[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return domain.Job{}, fmt.Errorf("unknown option(s) %s", strings.Join(unknown, ", "))
	}

	var missing []string
	for _, key := range requiredOptions {
		if strings.TrimSpace(opts[key]) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return domain.Job{}, fmt.Errorf("missing required option(s) %s", strings.Join(missing, ", "))
	}

	mode, err := domain.ParseMode(strings.ToLower(strings.TrimSpace(opts[OptMethod])))
	if err != nil {
		return domain.Job{}, err
	}
	tmpl, err := domain.ParseTemplate(opts[OptTemplate])
	if err != nil {
		return domain.Job{}, err
	}

	overwrite, err := boolOption(opts, OptOverwrite, false)
	if err != nil {
		return domain.Job{}, err
	}
	logOutcomes, err := boolOption(opts, OptLog, false)
	if err != nil {
		return domain.Job{}, err
	}
	enabled, err := boolOption(opts, OptEnabled, true)
	if err != nil {
		return domain.Job{}, err
	}

	decoder := domain.DecoderGoExif
	if v := strings.TrimSpace(opts[OptDecoder]); v != "" {
		decoder, err = domain.ParseDecoder(strings.ToLower(v))
		if err != nil {
			return domain.Job{}, err
		}
	}

	rules := domain.DefaultTimestampRules()
	if v, ok := opts[OptDateTags]; ok {
		rules.Attributes = splitList(v, ",")
		if len(rules.Attributes) == 0 {
			return domain.Job{}, fmt.Errorf("option %s lists no attributes", OptDateTags)
		}
	}
	if v, ok := opts[OptDateFormats]; ok {
		rules.Layouts = splitList(v, ";")
		if len(rules.Layouts) == 0 {
			return domain.Job{}, fmt.Errorf("option %s lists no layouts", OptDateFormats)
		}
	}

	return domain.Job{
		Section:     section.Name,
		Source:      strings.TrimSpace(opts[OptSource]),
		Destination: strings.TrimSpace(opts[OptDestination]),
		Template:    tmpl,
		Mode:        mode,
		Overwrite:   overwrite,
		Log:         logOutcomes,
		Enabled:     enabled,
		Decoder:     decoder,
		Rules:       rules,
	}, nil
}

func boolOption(opts map[string]string, key string, fallback bool) (bool, error) {
	v, ok := opts[key]
	if !ok {
		return fallback, nil
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("option %s: %q is not a boolean", key, v)
	}
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"phofile/internal/app"
	"phofile/internal/config"
	"phofile/internal/domain"
	appErrors "phofile/internal/errors"
	"phofile/internal/infra/exif"
	"phofile/internal/infra/exiftool"
	"phofile/internal/infra/fs"
	"phofile/internal/joblog"
	"phofile/internal/logging"
	"phofile/internal/presentation"
	"phofile/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// adhocFlags maps job flags to the option keys of a config section.
var adhocFlags = []struct {
	flag   string
	option string
}{
	{"source", config.OptSource},
	{"destination", config.OptDestination},
	{"template", config.OptTemplate},
	{"method", config.OptMethod},
	{"log", config.OptLog},
	{"overwrite", config.OptOverwrite},
	{"decoder", config.OptDecoder},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		exitWithError(err)
	}
}

func newRootCommand() *cobra.Command {
	var cfg config.Config

	cmd := &cobra.Command{
		Use:           "phofile [config.yaml]",
		Short:         "File photos into folders named after their metadata",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if cfg.ConfigPath != "" {
					return appErrors.Wrap(appErrors.InvalidConfig, "args", "", errors.New("config file given twice"))
				}
				cfg.ConfigPath = args[0]
			}
			cfg.Adhoc = adhocOptions(cmd)
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.ConfigPath, "config", "c", "", "config file with one section per job")
	flags.StringP("source", "s", "", "source directory")
	flags.StringP("destination", "d", "", "destination directory")
	flags.StringP("template", "t", "", "path template, e.g. {Year}/{Month}/{Name}")
	flags.StringP("method", "m", "", "transfer method: copy or move")
	flags.BoolP("log", "l", false, "append outcomes to the log file")
	flags.BoolP("overwrite", "o", false, "replace files that already exist")
	flags.String("decoder", "", "metadata decoder: goexif or exiftool")
	flags.StringVar(&cfg.LogFile, "log-file", "", "log file path (default \""+config.DefaultLogFile+"\")")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "print per-file problems and timings")
	flags.BoolVar(&cfg.Debug, "debug", false, "also print metadata tags that could not be read")
	flags.BoolVar(&cfg.TUI, "tui", false, "show an interactive progress view")

	return cmd
}

// adhocOptions collects the job flags that were set on the command line.
func adhocOptions(cmd *cobra.Command) map[string]string {
	options := map[string]string{}
	for _, f := range adhocFlags {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		options[f.option] = cmd.Flags().Lookup(f.flag).Value.String()
	}
	return options
}

func run(ctx context.Context, cfg config.Config) error {
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return appErrors.Wrap(appErrors.InvalidConfig, "args", "", err)
	}

	jobs, err := loadJobs(cfg)
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.Verbose, cfg.Debug)
	if cfg.TUI {
		logger.Writer = nil
	}
	defer logger.Measure("Run")()

	exiftoolReader := exiftool.NewReader()
	defer exiftoolReader.Close()

	runner := &app.Runner{
		FS: fs.OSFS{},
		Decoders: map[domain.Decoder]app.MetadataDecoder{
			domain.DecoderGoExif:   exif.NewReader(),
			domain.DecoderExifTool: exiftoolReader,
		},
		Log:     joblog.New(),
		LogPath: cfg.LogFile,
		Logger:  logger,
	}

	printer := presentation.Printer{
		Writer:  os.Stdout,
		Verbose: cfg.Verbose,
	}

	if cfg.TUI {
		results, err := runWithTUI(ctx, runner, jobs)
		if err != nil {
			return appErrors.Wrap(appErrors.Internal, "tui", "", err)
		}
		for _, result := range results {
			printer.PrintJob(result)
		}
		printer.PrintRun(results)
		return nil
	}

	runner.Hooks.OnJobDone = printer.PrintJob
	printer.PrintRun(runner.Run(ctx, jobs))
	return nil
}

// loadJobs builds the jobs of a config file or the single ad-hoc job.
// Invalid sections of a config file are reported and skipped.
func loadJobs(cfg config.Config) ([]domain.Job, error) {
	if cfg.ConfigPath == "" {
		job, err := config.BuildJob(config.Section{Name: config.AdhocSection, Options: cfg.Adhoc})
		if err != nil {
			return nil, err
		}
		return []domain.Job{job}, nil
	}

	sections, err := config.LoadFile(cfg.ConfigPath)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.InvalidConfig, "config", cfg.ConfigPath, err)
	}
	jobs, errs := config.BuildJobs(sections)
	for _, err := range errs {
		fmt.Fprintln(os.Stderr, appErrors.UserMessage(err))
	}
	return jobs, nil
}

// runWithTUI processes the jobs while a bubbletea program renders progress.
// Quitting the program cancels the run between files.
func runWithTUI(ctx context.Context, runner *app.Runner, jobs []domain.Job) ([]app.JobResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(tui.NewModel(), tea.WithContext(ctx))
	runner.Hooks = tui.Hooks(program)

	done := make(chan []app.JobResult, 1)
	go func() {
		results := runner.Run(ctx, jobs)
		program.Send(tui.RunDoneMsg{})
		done <- results
	}()

	_, err := program.Run()
	cancel()
	results := <-done
	if errors.Is(err, tea.ErrProgramKilled) {
		err = nil
	}
	return results, err
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, appErrors.UserMessage(err))
	os.Exit(1)
}

package joblog

import (
	"bufio"
	"os"
	"strings"
	"time"

	"phofile/internal/domain"
)

// Log buffers outcome records in the order they occur and appends them to a
// shared tab-separated log file on Flush.
type Log struct {
	records []domain.Outcome
	now     func() time.Time
}

func New() *Log {
	return &Log{now: time.Now}
}

// Append stamps the record with the current time unless it already carries
// one.
func (l *Log) Append(outcome domain.Outcome) {
	if outcome.Time.IsZero() {
		outcome.Time = l.clock()
	}
	l.records = append(l.records, outcome)
}

func (l *Log) Records() []domain.Outcome {
	out := make([]domain.Outcome, len(l.records))
	copy(out, l.records)
	return out
}

func (l *Log) Len() int {
	return len(l.records)
}

// Write appends every buffered record to path, creating the file if needed.
// Nothing is created when the buffer is empty.
func (l *Log) Write(path string) error {
	if len(l.records) == 0 {
		return nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(file)
	for _, record := range l.records {
		if _, err := w.WriteString(FormatLine(record)); err != nil {
			file.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (l *Log) Clear() {
	l.records = nil
}

// Flush writes the buffer and clears it only when the write succeeded.
func (l *Log) Flush(path string) error {
	if err := l.Write(path); err != nil {
		return err
	}
	l.Clear()
	return nil
}

// FormatLine renders one record as a newline-terminated log line.
func FormatLine(o domain.Outcome) string {
	fields := []string{
		o.Time.Format(time.RFC3339),
		o.Section,
		o.Text,
		o.Source,
		o.Destination,
	}
	for i, f := range fields {
		fields[i] = fieldReplacer.Replace(f)
	}
	return strings.Join(fields, "\t") + "\n"
}

var fieldReplacer = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

func (l *Log) clock() time.Time {
	if l.now == nil {
		return time.Now()
	}
	return l.now()
}

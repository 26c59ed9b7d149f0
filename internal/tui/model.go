package tui

import (
	"fmt"
	"os"
	"strings"

	"phofile/internal/app"
	"phofile/internal/domain"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Phase represents the current state of the TUI
type Phase int

const (
	PhaseScanning Phase = iota
	PhaseTransferring
	PhaseDone
)

// Messages for the TUI
type (
	JobStartMsg struct {
		Job domain.Job
	}
	ScanProgressMsg struct {
		Current int
		Total   int
	}
	TransferProgressMsg struct {
		Current int
		Total   int
		Outcome domain.Outcome
	}
	JobDoneMsg struct {
		Result app.JobResult
	}
	RunDoneMsg struct{}
)

// Model is the main TUI model
type Model struct {
	Phase     Phase
	Job       domain.Job
	Results   []app.JobResult
	Quitting  bool
	spinner   spinner.Model
	progress  progress.Model
	current   int
	total     int
	lastFile  string
	lastState domain.State
	width     int
}

// NewModel creates a new TUI model
func NewModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
		progress.WithoutPercentage(),
	)

	return Model{
		Phase:    PhaseScanning,
		spinner:  s,
		progress: p,
		width:    80,
	}
}

// Hooks returns runner hooks that forward progress to program.
func Hooks(program *tea.Program) app.Hooks {
	return app.Hooks{
		OnJobStart: func(job domain.Job) { program.Send(JobStartMsg{Job: job}) },
		OnScan: func(current, total int) {
			program.Send(ScanProgressMsg{Current: current, Total: total})
		},
		OnTransfer: func(current, total int, outcome domain.Outcome) {
			program.Send(TransferProgressMsg{Current: current, Total: total, Outcome: outcome})
		},
		OnJobDone: func(result app.JobResult) { program.Send(JobDoneMsg{Result: result}) },
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(msg.Width-20, 60)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.Quitting = true
			return m, tea.Quit
		case "enter":
			if m.Phase == PhaseDone {
				return m, tea.Quit
			}
		}

	case JobStartMsg:
		m.Job = msg.Job
		m.Phase = PhaseScanning
		m.current, m.total = 0, 0
		m.lastFile = ""
		return m, nil

	case ScanProgressMsg:
		m.current, m.total = msg.Current, msg.Total
		return m, m.setPercent()

	case TransferProgressMsg:
		m.Phase = PhaseTransferring
		m.current, m.total = msg.Current, msg.Total
		m.lastFile = msg.Outcome.Source
		m.lastState = msg.Outcome.State
		return m, m.setPercent()

	case JobDoneMsg:
		m.Results = append(m.Results, msg.Result)
		return m, nil

	case RunDoneMsg:
		m.Phase = PhaseDone
		return m, nil

	case spinner.TickMsg:
		if m.Phase != PhaseDone {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) setPercent() tea.Cmd {
	if m.total == 0 {
		return nil
	}
	return m.progress.SetPercent(float64(m.current) / float64(m.total))
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("📷 Phofile"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Files photos by their metadata"))
	b.WriteString("\n\n")

	b.WriteString(m.renderResults())

	if m.Phase != PhaseDone && m.Job.Section != "" {
		b.WriteString(m.renderCurrent())
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderCurrent() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Job %s", m.Job.Section)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s %s %s %s", iconFolder, shortenPath(m.Job.Source), iconArrow, shortenPath(m.Job.Destination))))
	b.WriteString("\n\n")

	verb := "Scanning"
	if m.Phase == PhaseTransferring {
		verb = "Transferring"
	}
	b.WriteString(fmt.Sprintf("  %s %s...\n\n", m.spinner.View(), verb))

	if m.total > 0 {
		percent := float64(m.current) / float64(m.total)
		b.WriteString(fmt.Sprintf("  %s\n", m.progress.View()))
		b.WriteString(fmt.Sprintf("  %s %s\n",
			countStyle.Render(fmt.Sprintf("%d/%d files", m.current, m.total)),
			dimStyle.Render(fmt.Sprintf("(%.0f%%)", percent*100)),
		))
	}

	if m.lastFile != "" {
		b.WriteString(fmt.Sprintf("\n  %s %s\n", stateIcon(m.lastState), fileNameStyle.Render(shortenPath(m.lastFile))))
	}
	return b.String()
}

func (m Model) renderResults() string {
	if len(m.Results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Finished"))
	b.WriteString("\n")
	for _, result := range m.Results {
		b.WriteString("  ")
		b.WriteString(formatResult(result))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func formatResult(result app.JobResult) string {
	name := statLabelStyle.Render(result.Section)
	switch {
	case result.Disabled:
		return fmt.Sprintf("%s %s", name, dimStyle.Render(iconSkipped+" disabled"))
	case result.Err != nil:
		return fmt.Sprintf("%s %s", name, errorStyle.Render(iconError+" "+result.Err.Error()))
	}
	s := result.Summary
	return lipgloss.JoinHorizontal(lipgloss.Top,
		name,
		successStyle.Render(fmt.Sprintf("%s %d", iconSuccess, s.Succeeded)), "  ",
		warningStyle.Render(fmt.Sprintf("%s %d", iconSkipped, s.Skipped)), "  ",
		errorStyle.Render(fmt.Sprintf("%s %d", iconError, s.Failed+s.Unresolved)),
	)
}

func stateIcon(state domain.State) string {
	switch state {
	case domain.Succeeded:
		return successStyle.Render(iconSuccess)
	case domain.SkippedExists:
		return warningStyle.Render(iconSkipped)
	case domain.Failed, domain.Unresolved:
		return errorStyle.Render(iconError)
	default:
		return iconArrow
	}
}

func (m Model) renderHelp() string {
	help := "Press q to quit"
	if m.Phase == PhaseDone {
		help = "Press Enter to exit"
	}
	return helpStyle.Render(help)
}

// shortenPath replaces the home directory prefix with ~ for display
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}

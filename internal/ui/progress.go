package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Progress creates progress displays for downloads and index fetches.
type Progress interface {
	// Bar creates a byte-count progress bar. total may be -1 when the
	// size is unknown.
	Bar(title string, total int64) Bar

	// Spinner creates an indeterminate spinner.
	Spinner(title string) Spinner
}

// Bar is a determinate byte-count progress display.
type Bar interface {
	// Set updates the number of bytes transferred so far.
	Set(written int64)
	// SetTitle updates the display title.
	SetTitle(title string)
	// Done completes the bar.
	Done()
}

// Spinner is an indeterminate progress display.
type Spinner interface {
	SetTitle(title string)
	Stop()
}

// progressImpl implements Progress.
type progressImpl struct {
	theme    *Theme
	headless *HeadlessManager
	writer   io.Writer
}

// NewProgress creates a Progress backed by the given theme and headless
// manager. Output goes to os.Stdout.
func NewProgress(theme *Theme, hm *HeadlessManager) Progress {
	return &progressImpl{theme: theme, headless: hm, writer: os.Stdout}
}

// newProgressImpl creates a progressImpl with a custom writer (for testing).
func newProgressImpl(theme *Theme, hm *HeadlessManager, w io.Writer) *progressImpl {
	return &progressImpl{theme: theme, headless: hm, writer: w}
}

// Bar creates a byte-count progress bar, animated when a TTY is
// available and log-based otherwise.
func (p *progressImpl) Bar(title string, total int64) Bar {
	if p.headless.IsHeadless() || p.theme.NoColor {
		return newHeadlessBar(title, total, p.writer)
	}
	return newInteractiveBar(p.theme, title, total)
}

// Spinner creates an indeterminate spinner, animated when a TTY is
// available.
func (p *progressImpl) Spinner(title string) Spinner {
	if p.headless.IsHeadless() || p.theme.NoColor {
		return newHeadlessSpinner(title, p.writer)
	}
	return newInteractiveSpinner(p.theme, title)
}

// HumanBytes renders a byte count in binary units, e.g. "3.4 MiB".
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// --- interactive spinner ---

// spinnerTitleMsg updates the spinner title.
type spinnerTitleMsg string

// spinnerStopMsg stops the spinner.
type spinnerStopMsg struct{}

// spinnerModel is the bubbletea model for the animated spinner.
type spinnerModel struct {
	spinner spinner.Model
	title   string
	done    bool
}

func newSpinnerModel(theme *Theme, title string) spinnerModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	if !theme.NoColor {
		s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Colors.Primary))
	}
	return spinnerModel{spinner: s, title: title}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTitleMsg:
		m.title = string(msg)
		return m, nil
	case spinnerStopMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.title + "\n"
}

// interactiveSpinner implements Spinner with an animated bubbles spinner.
type interactiveSpinner struct {
	program *tea.Program
	once    sync.Once
}

func newInteractiveSpinner(theme *Theme, title string) *interactiveSpinner {
	p := tea.NewProgram(newSpinnerModel(theme, title))
	s := &interactiveSpinner{program: p}
	go func() {
		_, _ = p.Run()
	}()
	return s
}

// SetTitle updates the spinner title.
func (s *interactiveSpinner) SetTitle(title string) {
	s.program.Send(spinnerTitleMsg(title))
}

// Stop halts the spinner.
func (s *interactiveSpinner) Stop() {
	s.once.Do(func() {
		s.program.Send(spinnerStopMsg{})
		s.program.Wait()
	})
}

// --- interactive bar ---

// barSetMsg updates the transferred byte count.
type barSetMsg int64

// barTitleMsg updates the bar title.
type barTitleMsg string

// barDoneMsg completes the bar.
type barDoneMsg struct{}

// barModel is the bubbletea model for the animated byte-count bar.
type barModel struct {
	bar     progress.Model
	title   string
	written int64
	total   int64
	done    bool
}

func newBarModel(theme *Theme, title string, total int64) barModel {
	bar := progress.New(
		progress.WithGradient(theme.Colors.Primary, theme.Colors.Secondary),
		progress.WithWidth(40),
	)
	return barModel{bar: bar, title: title, total: total}
}

func (m barModel) Init() tea.Cmd {
	return nil
}

func (m barModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case barSetMsg:
		m.written = int64(msg)
		if m.total > 0 && m.written > m.total {
			m.written = m.total
		}
		return m, nil
	case barTitleMsg:
		m.title = string(msg)
		return m, nil
	case barDoneMsg:
		if m.total > 0 {
			m.written = m.total
		}
		m.done = true
		return m, tea.Quit
	case progress.FrameMsg:
		pm, cmd := m.bar.Update(msg)
		m.bar = pm.(progress.Model)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m barModel) View() string {
	if m.done {
		return ""
	}
	if m.total <= 0 {
		return fmt.Sprintf("%s %s\n", HumanBytes(m.written), m.title)
	}
	pct := float64(m.written) / float64(m.total)
	return m.bar.ViewAs(pct) + fmt.Sprintf(" %s/%s %s\n",
		HumanBytes(m.written), HumanBytes(m.total), m.title)
}

// interactiveBar implements Bar with an animated bubbles progress bar.
type interactiveBar struct {
	program *tea.Program
	once    sync.Once
}

func newInteractiveBar(theme *Theme, title string, total int64) *interactiveBar {
	p := tea.NewProgram(newBarModel(theme, title, total))
	b := &interactiveBar{program: p}
	go func() {
		_, _ = p.Run()
	}()
	return b
}

// Set updates the transferred byte count.
func (b *interactiveBar) Set(written int64) {
	b.program.Send(barSetMsg(written))
}

// SetTitle updates the bar title.
func (b *interactiveBar) SetTitle(title string) {
	b.program.Send(barTitleMsg(title))
}

// Done completes the bar.
func (b *interactiveBar) Done() {
	b.once.Do(func() {
		b.program.Send(barDoneMsg{})
		b.program.Wait()
	})
}

// --- headless bar ---

// headlessBar implements Bar with plain log lines, printed at most once
// per ten percent so piped output stays readable.
type headlessBar struct {
	title     string
	total     int64
	written   int64
	lastDecat int
	writer    io.Writer
}

func newHeadlessBar(title string, total int64, w io.Writer) *headlessBar {
	return &headlessBar{title: title, total: total, lastDecat: -1, writer: w}
}

// Set updates the byte count, logging when another tenth completes.
func (b *headlessBar) Set(written int64) {
	b.written = written
	if b.total <= 0 {
		return
	}
	decat := int(written * 10 / b.total)
	if decat > b.lastDecat {
		b.lastDecat = decat
		fmt.Fprintf(b.writer, "[%3d%%] %s\n", decat*10, b.title)
	}
}

// SetTitle updates the bar title.
func (b *headlessBar) SetTitle(title string) {
	b.title = title
}

// Done completes the bar.
func (b *headlessBar) Done() {
	if b.lastDecat < 10 {
		fmt.Fprintf(b.writer, "[100%%] %s\n", b.title)
	}
}

// --- headless spinner ---

// headlessSpinner implements Spinner with plain log lines.
type headlessSpinner struct {
	title  string
	writer io.Writer
}

func newHeadlessSpinner(title string, w io.Writer) *headlessSpinner {
	s := &headlessSpinner{title: title, writer: w}
	fmt.Fprintln(w, title)
	return s
}

// SetTitle updates the title and prints a log line.
func (s *headlessSpinner) SetTitle(title string) {
	s.title = title
	fmt.Fprintln(s.writer, title)
}

// Stop halts the spinner.
func (s *headlessSpinner) Stop() {}

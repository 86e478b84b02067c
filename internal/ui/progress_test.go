package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestHumanBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{3 * 1024 * 1024, "3.0 MiB"},
		{5 * 1024 * 1024 * 1024, "5.0 GiB"},
	}
	for _, tt := range tests {
		if got := HumanBytes(tt.n); got != tt.want {
			t.Errorf("HumanBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestHeadlessManager_Force(t *testing.T) {
	t.Parallel()

	hm := NewHeadlessManager()
	hm.ForceHeadless(true)
	if !hm.IsHeadless() {
		t.Error("IsHeadless = false after ForceHeadless(true)")
	}
	hm.ForceHeadless(false)
	if hm.IsHeadless() {
		t.Error("IsHeadless = true after ForceHeadless(false)")
	}
}

func TestProgress_HeadlessFallback(t *testing.T) {
	t.Parallel()

	hm := NewHeadlessManager()
	hm.ForceHeadless(true)
	var buf strings.Builder
	p := newProgressImpl(NewTheme(false), hm, &buf)

	if _, ok := p.Bar("brown.zip", 100).(*headlessBar); !ok {
		t.Error("expected headless bar without a TTY")
	}
	if _, ok := p.Spinner("fetching index").(*headlessSpinner); !ok {
		t.Error("expected headless spinner without a TTY")
	}
}

func TestHeadlessBar_LogsPerTenth(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	b := newHeadlessBar("brown.zip", 1000, &buf)
	for written := int64(0); written <= 1000; written += 10 {
		b.Set(written)
	}
	b.Done()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 11 {
		t.Errorf("lines = %d, want 11 (0%% through 100%%): %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "[  0%]") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[len(lines)-1], "[100%]") {
		t.Errorf("last line = %q", lines[len(lines)-1])
	}
}

func TestHeadlessBar_UnknownTotal(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	b := newHeadlessBar("mystery.zip", -1, &buf)
	b.Set(100)
	b.Set(5000)
	b.Done()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("lines = %d, want only the final line: %q", len(lines), buf.String())
	}
}

func TestHeadlessSpinner_PrintsTitles(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	s := newHeadlessSpinner("fetching index", &buf)
	s.SetTitle("parsing index")
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "fetching index") || !strings.Contains(out, "parsing index") {
		t.Errorf("output = %q", out)
	}
}

func TestBarModel_Update(t *testing.T) {
	t.Parallel()

	m := newBarModel(NewTheme(true), "brown.zip", 200)

	updated, _ := m.Update(barSetMsg(50))
	m = updated.(barModel)
	if m.written != 50 {
		t.Errorf("written = %d, want 50", m.written)
	}

	updated, _ = m.Update(barSetMsg(500))
	m = updated.(barModel)
	if m.written != 200 {
		t.Errorf("written = %d, want clamp to total", m.written)
	}

	updated, cmd := m.Update(barDoneMsg{})
	m = updated.(barModel)
	if !m.done {
		t.Error("done = false after barDoneMsg")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
	if m.View() != "" {
		t.Errorf("View after done = %q, want empty", m.View())
	}
}

func TestBarModel_ViewShowsBytes(t *testing.T) {
	t.Parallel()

	m := newBarModel(NewTheme(true), "brown.zip", 2048)
	updated, _ := m.Update(barSetMsg(1024))
	m = updated.(barModel)

	view := m.View()
	if !strings.Contains(view, "1.0 KiB/2.0 KiB") {
		t.Errorf("view = %q, want byte counts", view)
	}
	if !strings.Contains(view, "brown.zip") {
		t.Errorf("view = %q, want title", view)
	}
}

func TestSpinnerModel_Update(t *testing.T) {
	t.Parallel()

	m := newSpinnerModel(NewTheme(true), "working")

	updated, _ := m.Update(spinnerTitleMsg("still working"))
	m = updated.(spinnerModel)
	if m.title != "still working" {
		t.Errorf("title = %q", m.title)
	}

	updated, cmd := m.Update(spinnerStopMsg{})
	m = updated.(spinnerModel)
	if !m.done {
		t.Error("done = false after stop")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !updated.(spinnerModel).done {
		t.Error("ctrl-c should stop the spinner")
	}
}

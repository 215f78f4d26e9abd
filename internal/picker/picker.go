// Package picker is the interactive terminal window picker: it lists the
// host's capturable windows and captures the one the user selects.
package picker

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/tabdock/tabdock/internal/ipc"
)

// ANSI escape codes
const (
	escClear      = "\x1b[2J"
	escHome       = "\x1b[H"
	escHideCursor = "\x1b[?25l"
	escShowCursor = "\x1b[?25h"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	appStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Picker drives the selection loop against a running host.
type Picker struct {
	client *ipc.Client

	windows  []ipc.WindowInfo
	filtered []ipc.WindowInfo
	filter   string
	selected int
	status   string

	oldState *term.State
	width    int
	height   int
}

// New creates a picker talking to the given host client.
func New(client *ipc.Client) *Picker {
	return &Picker{client: client}
}

// Run enters raw mode and loops until the user captures a window or quits.
func (p *Picker) Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("pick requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	if err := p.reload(); err != nil {
		return err
	}

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	p.oldState = oldState
	defer p.restore()

	p.updateSize()
	p.render()

	buf := make([]byte, 32)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return err
		}

		done, err := p.handleInput(buf[:n])
		if done {
			return err
		}

		p.render()
	}
}

func (p *Picker) restore() {
	os.Stdout.WriteString(escShowCursor)
	os.Stdout.WriteString(escClear)
	os.Stdout.WriteString(escHome)
	if p.oldState != nil {
		term.Restore(int(os.Stdin.Fd()), p.oldState)
	}
}

func (p *Picker) reload() error {
	data, err := p.client.ListWindows()
	if err != nil {
		return err
	}
	p.windows = data.Windows
	p.applyFilter()
	return nil
}

func (p *Picker) applyFilter() {
	lower := strings.ToLower(p.filter)
	p.filtered = p.filtered[:0]
	for _, w := range p.windows {
		if lower == "" || strings.Contains(strings.ToLower(w.Title), lower) ||
			strings.Contains(strings.ToLower(w.AppID), lower) {
			p.filtered = append(p.filtered, w)
		}
	}
	if p.selected >= len(p.filtered) {
		p.selected = len(p.filtered) - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
}

// handleInput returns done=true when the loop should exit.
func (p *Picker) handleInput(input []byte) (bool, error) {
	switch {
	case len(input) == 1 && (input[0] == 3 || input[0] == 27): // Ctrl-C, Esc
		return true, nil

	case len(input) == 3 && input[0] == 27 && input[1] == '[':
		switch input[2] {
		case 'A': // up
			if p.selected > 0 {
				p.selected--
			}
		case 'B': // down
			if p.selected < len(p.filtered)-1 {
				p.selected++
			}
		}
		return false, nil

	case len(input) == 1 && input[0] == 13: // Enter
		if p.selected >= len(p.filtered) {
			return false, nil
		}
		win := p.filtered[p.selected]
		if err := p.client.Capture(win.ID); err != nil {
			p.status = err.Error()
			return false, nil
		}
		p.restore()
		p.oldState = nil
		fmt.Printf("Captured %q\n", win.Title)
		return true, nil

	case len(input) == 1 && input[0] == 18: // Ctrl-R
		if err := p.reload(); err != nil {
			p.status = err.Error()
		} else {
			p.status = "reloaded"
		}
		return false, nil

	case len(input) == 1 && (input[0] == 127 || input[0] == 8): // Backspace
		if p.filter != "" {
			p.filter = p.filter[:len(p.filter)-1]
			p.applyFilter()
		}
		return false, nil

	case len(input) == 1 && input[0] >= 32 && input[0] < 127:
		p.filter += string(input)
		p.applyFilter()
		return false, nil
	}

	return false, nil
}

func (p *Picker) updateSize() {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 1 || height < 1 {
		width, height = 80, 24
	}
	p.width = width
	p.height = height
}

func (p *Picker) render() {
	p.updateSize()

	var sb strings.Builder
	sb.WriteString(escHideCursor)
	sb.WriteString(escClear)
	sb.WriteString(escHome)

	sb.WriteString(titleStyle.Render("tabdock: capture a window"))
	sb.WriteString("\r\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("filter: %s_", p.filter)))
	sb.WriteString("\r\n\r\n")

	// Leave room for header, status and help lines.
	visible := p.height - 6
	if visible < 1 {
		visible = 1
	}

	start := 0
	if p.selected >= visible {
		start = p.selected - visible + 1
	}

	if len(p.filtered) == 0 {
		sb.WriteString(dimStyle.Render("  (no matching windows)"))
		sb.WriteString("\r\n")
	}
	for i := start; i < len(p.filtered) && i < start+visible; i++ {
		w := p.filtered[i]
		line := w.Title
		if w.AppID != "" {
			line += "  " + appStyle.Render("["+w.AppID+"]")
		}
		if i == p.selected {
			sb.WriteString(selectedStyle.Render("> " + line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\r\n")
	}

	sb.WriteString("\r\n")
	if p.status != "" {
		sb.WriteString(errStyle.Render(p.status))
		sb.WriteString("\r\n")
	}
	sb.WriteString(dimStyle.Render("up/down: select   enter: capture   ctrl-r: reload   esc: quit"))

	os.Stdout.WriteString(sb.String())
}

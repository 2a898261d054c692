package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// EventRow holds the per-row data the event list needs for its key actions.
type EventRow struct {
	TxHash      string // full 0x... hash
	ExplorerURL string // empty when the chain has no explorer
}

type eventListModel struct {
	title  string
	table  *Table
	rows   []EventRow // parallel to table.Rows
	cursor int
	flash  string

	open func(string)
	copy func(string) error
}

func newEventList(title string, table *Table, rows []EventRow) eventListModel {
	return eventListModel{
		title: title,
		table: table,
		rows:  rows,
		open:  openBrowser,
		copy:  copyToClipboard,
	}
}

func (m eventListModel) Init() tea.Cmd { return nil }

func (m eventListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.flash = ""
	switch key.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.table.Rows)-1 {
			m.cursor++
		}
	case "o":
		if m.cursor >= len(m.rows) {
			break
		}
		if url := m.rows[m.cursor].ExplorerURL; url != "" {
			m.open(url)
			m.flash = "Opening in browser…"
		} else {
			m.flash = "No explorer for this chain"
		}
	case "c":
		if m.cursor >= len(m.rows) {
			break
		}
		hash := m.rows[m.cursor].TxHash
		if hash == "" {
			m.flash = "No hash available"
			break
		}
		if err := m.copy(hash); err != nil {
			m.flash = "Copy failed: " + err.Error()
		} else {
			m.flash = "Copied: " + TruncateAddr(hash)
		}
	}
	return m, nil
}

func (m eventListModel) View() string {
	m.table.SelIdx = m.cursor

	var sb strings.Builder
	sb.WriteString(m.title + "\n\n")
	sb.WriteString(m.table.Render())
	sb.WriteString("\n")
	if m.flash != "" {
		sb.WriteString(StyleSuccess.Render("  ✓ " + m.flash))
	} else {
		sb.WriteString(eventControls())
	}
	sb.WriteString("\n")
	return sb.String()
}

func eventControls() string {
	sep := StyleMeta.Render("   ")
	return StyleMeta.Render("[ ↑↓ ] navigate") + sep +
		StyleInfo.Render("[ o ]") + StyleMeta.Render(" open in explorer") + sep +
		StyleWarning.Render("[ c ]") + StyleMeta.Render(" copy tx hash") + sep +
		StyleMeta.Render("[ q ] quit")
}

// RunEventList shows presale events in an interactive table until the user
// quits. rows must be parallel to table.Rows.
func RunEventList(title string, table *Table, rows []EventRow) error {
	p := tea.NewProgram(newEventList(title, table, rows),
		tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}

func copyToClipboard(text string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("pbcopy")
	case "windows":
		cmd = exec.Command("clip")
	default:
		if _, err := exec.LookPath("wl-copy"); err == nil {
			cmd = exec.Command("wl-copy")
		} else {
			cmd = exec.Command("xclip", "-selection", "clipboard")
		}
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	_, _ = io.WriteString(stdin, text)
	stdin.Close()
	return cmd.Wait()
}

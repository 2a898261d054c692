package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"

	"github.com/sovieth88-oss/presalectl/internal/presale"
)

// DashboardOptions wires the dashboard to the rest of the program. Every
// field is optional.
type DashboardOptions struct {
	ChainName func(chainID int64) string
	TxURL     func(chainID int64, hash string) string
	Refresh   func() error // runs off the UI goroutine when r is pressed
	ClearErr  func()
}

type updateMsg presale.Update

type updatesClosedMsg struct{}

type refreshDoneMsg struct{ err error }

type spinMsg struct{}

type dashboardModel struct {
	view    presale.View
	updates <-chan presale.Update
	opts    DashboardOptions

	updatedAt  time.Time
	flash      string
	frame      int
	spinning   bool
	refreshing bool
	closed     bool
	quitting   bool
}

func newDashboard(initial presale.View, updates <-chan presale.Update, opts DashboardOptions) dashboardModel {
	return dashboardModel{
		view:      initial,
		updates:   updates,
		opts:      opts,
		updatedAt: time.Now(),
	}
}

func waitForUpdate(ch <-chan presale.Update) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return updatesClosedMsg{}
		}
		return updateMsg(u)
	}
}

func spin() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg { return spinMsg{} })
}

func (m dashboardModel) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForUpdate(m.updates)}
	if m.view.Busy() {
		cmds = append(cmds, spin())
	}
	return tea.Batch(cmds...)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.flash = ""
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if m.opts.Refresh == nil || m.refreshing {
				return m, nil
			}
			m.refreshing = true
			refresh := m.opts.Refresh
			return m, func() tea.Msg { return refreshDoneMsg{err: refresh()} }
		case "c":
			if m.view.Err != nil && m.opts.ClearErr != nil {
				m.opts.ClearErr()
				m.view.Err = nil
				m.flash = "Error cleared"
			}
		}

	case updateMsg:
		m.view = msg.View
		m.updatedAt = time.Now()
		var cmds []tea.Cmd
		if !m.closed {
			cmds = append(cmds, waitForUpdate(m.updates))
		}
		if m.view.Busy() && !m.spinning {
			m.spinning = true
			cmds = append(cmds, spin())
		}
		return m, tea.Batch(cmds...)

	case updatesClosedMsg:
		m.closed = true

	case refreshDoneMsg:
		m.refreshing = false
		if msg.err == nil {
			m.flash = "Refreshed"
		}

	case spinMsg:
		m.frame++
		if m.view.Busy() {
			return m, spin()
		}
		m.spinning = false
	}
	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.header() + "\n\n")

	switch m.view.State {
	case presale.StateDisconnected:
		sb.WriteString(Info("No network selected.") + "\n")
	case presale.StateResolving:
		sb.WriteString(Info("Looking up the presale contract…") + "\n")
	case presale.StateUnsupported:
		sb.WriteString(Warn(fmt.Sprintf("The presale is not deployed on %s.", m.chainName())) + "\n")
		sb.WriteString(Hint("presalectl network list") + "\n")
	case presale.StateSynced:
		if m.view.Snapshot.Loaded() {
			sb.WriteString(m.snapshotBlock() + "\n")
		} else {
			sb.WriteString(StyleMeta.Render("Loading presale…") + "\n")
		}
	}

	if m.view.Connected() && m.view.State == presale.StateSynced {
		sb.WriteString(m.userBlock() + "\n")
	}
	if p := m.view.Pending; p != nil {
		sb.WriteString(m.pendingLine(*p) + "\n")
	}
	if m.view.Err != nil {
		sb.WriteString(Err(trimErr(m.view.Err.Error(), 96)) + "\n")
	}

	sb.WriteString("\n")
	if m.flash != "" {
		sb.WriteString(StyleSuccess.Render("  ✓ "+m.flash) + "\n")
	}
	sb.WriteString(m.footer() + "\n")
	return sb.String()
}

func (m dashboardModel) chainName() string {
	if m.opts.ChainName != nil {
		if name := m.opts.ChainName(m.view.ChainID); name != "" {
			return name
		}
	}
	return "chain " + strconv.FormatInt(m.view.ChainID, 10)
}

func (m dashboardModel) header() string {
	title := StyleTitle.UnsetMarginBottom().Render("Presale")
	if m.view.State == presale.StateDisconnected {
		return title
	}
	return title + StyleMeta.Render(" on ") + ChainName(m.chainName()) + "  " + stateBadge(m.view.State)
}

func stateBadge(s presale.State) string {
	switch s {
	case presale.StateSynced:
		return StyleSuccess.Render("● " + string(s))
	case presale.StateUnsupported:
		return StyleWarning.Render("● " + string(s))
	default:
		return StyleMeta.Render("● " + string(s))
	}
}

func (m dashboardModel) snapshotBlock() string {
	s := m.view.Snapshot
	status := StyleSuccess.Render("live")
	if s.Paused {
		status = StyleWarning.Render("paused")
	}
	pairs := [][2]string{
		{"Contract", m.view.Contract.Hex()},
		{"Status", status},
		{"Softcap", s.Softcap + " ETH"},
		{"Hardcap", s.Hardcap + " ETH"},
		{"Raised", s.TotalRaised + " ETH"},
		{"Withdrawn", s.TotalWithdrawn + " ETH"},
		{"Balance", s.ContractBalance + " ETH"},
		{"Token price", s.TokenPrice + " ETH"},
		{"Max purchase", s.MaxPurchase + " ETH"},
		{"Participants", strconv.FormatUint(s.Participants, 10)},
		{"Softcap reached", YesNo(s.SoftcapReached)},
	}
	bars := StyleMeta.Render("Hardcap ") + ProgressBar(s.HardcapProgress, 30) + "\n" +
		StyleMeta.Render("Softcap ") + ProgressBar(s.SoftcapProgress, 30)
	return KeyValueBlock("", pairs) + "\n" + bars + "\n"
}

func (m dashboardModel) userBlock() string {
	u := m.view.User
	return KeyValueBlock("", [][2]string{
		{"Account", u.Address.Hex()},
		{"Whitelisted", YesNo(u.Whitelisted)},
		{"Contributed", u.Contribution + " ETH"},
		{"Allocation", u.TokenAllocation + " tokens"},
	})
}

func (m dashboardModel) pendingLine(p presale.PendingAction) string {
	var line string
	switch p.State {
	case presale.TxSubmitted, presale.TxAwaitingConfirmation:
		line = StyleChain.Render(spinFrames[m.frame%len(spinFrames)]) + " " +
			StyleWarning.Render(fmt.Sprintf("%s %s", p.Action, p.State))
	case presale.TxConfirmed:
		line = Success(fmt.Sprintf("%s confirmed", p.Action))
	case presale.TxFailed:
		line = Err(fmt.Sprintf("%s failed", p.Action))
	}
	if p.Hash != (common.Hash{}) {
		line += "  " + Addr(TruncateAddr(p.Hash.Hex()))
		if m.opts.TxURL != nil {
			if url := m.opts.TxURL(m.view.ChainID, p.Hash.Hex()); url != "" {
				line += "\n  " + Meta(url)
			}
		}
	}
	return line
}

func (m dashboardModel) footer() string {
	sep := StyleMeta.Render("   ")
	parts := []string{StyleMeta.Render("updated " + m.updatedAt.Format("15:04:05"))}
	if m.opts.Refresh != nil {
		label := "[ r ] refresh"
		if m.refreshing {
			label = "[ r ] refreshing…"
		}
		parts = append(parts, StyleInfo.Render(label))
	}
	if m.view.Err != nil && m.opts.ClearErr != nil {
		parts = append(parts, StyleWarning.Render("[ c ] clear error"))
	}
	if m.closed {
		parts = append(parts, StyleWarning.Render("engine stopped"))
	}
	parts = append(parts, StyleMeta.Render("[ q ] quit"))
	return strings.Join(parts, sep)
}

// RunDashboard shows the live presale view until the user quits. The view
// follows updates; it keeps the last state if the channel closes.
func RunDashboard(initial presale.View, updates <-chan presale.Update, opts DashboardOptions) error {
	_, err := tea.NewProgram(newDashboard(initial, updates, opts), tea.WithAltScreen()).Run()
	return err
}

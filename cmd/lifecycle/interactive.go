package main

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/lifecycle/disposal"
	"github.com/wippyai/lifecycle/owner"
	"github.com/wippyai/lifecycle/resource"
	"github.com/wippyai/lifecycle/visibility"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	ownerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	visibleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	hiddenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const eventLogSize = 8

// eventLog keeps the most recent registry events for display.
type eventLog struct {
	lines []string
	mu    sync.Mutex
}

func (l *eventLog) OnLifecycleEvent(e disposal.Event) {
	line := fmt.Sprintf("%s %-9s %-12s %s", time.Now().Format("15:04:05"), e.Type, e.Owner, e.Key)
	if e.Err != nil {
		line += " " + e.Err.Error()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	if len(l.lines) > eventLogSize {
		l.lines = l.lines[len(l.lines)-eventLogSize:]
	}
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

type interactiveModel struct {
	host     *owner.Host
	flag     *visibility.Flag
	coord    *visibility.Coordinator
	events   *eventLog
	ticks    map[string]*atomic.Int64
	input    textinput.Model
	interval time.Duration
	err      error
	selected int
}

type refreshMsg time.Time

func newInteractiveModel(interval time.Duration) *interactiveModel {
	flag := visibility.NewFlag(true)
	coord := visibility.NewCoordinator(flag, nil)
	events := &eventLog{}

	ti := textinput.New()
	ti.Placeholder = "owner id"
	ti.Prompt = "mount: "
	ti.Width = 30
	ti.Focus()

	return &interactiveModel{
		host: owner.NewHost(&owner.Config{
			Coordinator: coord,
			Observer:    events,
		}),
		flag:     flag,
		coord:    coord,
		events:   events,
		ticks:    make(map[string]*atomic.Int64),
		input:    ti,
		interval: interval,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, refresh())
}

func refresh() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.FocusMsg:
		m.flag.Set(true)
		return m, nil

	case tea.BlurMsg:
		m.flag.Set(false)
		return m, nil

	case refreshMsg:
		return m, refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.host.Close()
			return m, tea.Quit

		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.selected < len(m.host.Owners())-1 {
				m.selected++
			}
			return m, nil

		case "tab":
			m.flag.Set(!m.flag.Visible())
			return m, nil

		case "ctrl+d":
			ids := m.host.Owners()
			if m.selected < len(ids) {
				id := ids[m.selected]
				if m.host.Deactivate(id) {
					delete(m.ticks, id)
				}
			}
			if n := len(m.host.Owners()); m.selected >= n && n > 0 {
				m.selected = n - 1
			}
			return m, nil

		case "enter":
			id := strings.TrimSpace(m.input.Value())
			if id != "" {
				m.err = m.mount(id)
				m.input.Reset()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// mount adds one claim on id. The first claim starts a pausable poll ticker.
func (m *interactiveModel) mount(id string) error {
	o := m.host.Activate(id)
	if o.Mounts() > 1 {
		return nil
	}

	counter := &atomic.Int64{}
	m.ticks[id] = counter
	_, err := o.Add(resource.Ticker(m.interval, func(time.Time) { counter.Add(1) }),
		disposal.WithKey("poll"))
	return err
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Lifecycle"))
	b.WriteString(" ")
	if m.coord.Visible() {
		b.WriteString(visibleStyle.Render("visible"))
	} else {
		b.WriteString(hiddenStyle.Render("hidden"))
	}
	b.WriteString(fmt.Sprintf("  listener attached: %v\n\n", m.coord.Subscribed()))

	ids := m.host.Owners()
	if len(ids) == 0 {
		b.WriteString("No owners mounted.\n")
	}
	for i, id := range ids {
		o, ok := m.host.Lookup(id)
		if !ok {
			continue
		}
		var polled int64
		if c := m.ticks[id]; c != nil {
			polled = c.Load()
		}
		line := fmt.Sprintf("%s  mounts %s  entries %s  paused %s  polled %s",
			ownerStyle.Render(id),
			countStyle.Render(fmt.Sprint(o.Mounts())),
			countStyle.Render(fmt.Sprint(o.Registry().Len())),
			countStyle.Render(fmt.Sprint(len(o.Registry().Paused()))),
			countStyle.Render(fmt.Sprint(polled)))
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(hiddenStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	for _, line := range m.events.snapshot() {
		b.WriteString(helpStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter mount • ctrl+d unmount selected • ↑/↓ select • tab toggle visibility • esc quit"))
	return b.String()
}

func runInteractive(interval time.Duration) error {
	p := tea.NewProgram(newInteractiveModel(interval), tea.WithAltScreen(), tea.WithReportFocus())
	_, err := p.Run()
	return err
}

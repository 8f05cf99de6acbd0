// Package picker is the availability tab: a day and time cursor over the
// selectable window, above a scrollable list of the user's own slots.
package picker

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/directory"
	"github.com/julianstephens/coffeematch/internal/models"
)

var (
	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// AddSlotMsg asks the parent to submit Day at Time.
type AddSlotMsg struct {
	Day  string
	Time string
}

type KeyMap struct {
	PrevDay  key.Binding
	NextDay  key.Binding
	PrevTime key.Binding
	NextTime key.Binding
	Add      key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		PrevDay: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		PrevTime: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "earlier"),
		),
		NextTime: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "later"),
		),
		Add: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add slot"),
		),
	}
}

type Model struct {
	viewport viewport.Model
	keys     KeyMap
	days     []string
	day      int
	time     int
	slots    []models.TimeSlot
	loc      *time.Location
}

func New(days []string, loc *time.Location, width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		keys:     DefaultKeyMap(),
		days:     days,
		loc:      loc,
	}
}

// Reset reopens the picker on a new window with the first day selected.
func (m *Model) Reset(days []string) {
	m.days = days
	m.day = 0
	m.time = 0
}

func (m *Model) SetSlots(slots []models.TimeSlot) {
	m.slots = slots
	m.render()
}

func (m Model) Keys() []key.Binding {
	return []key.Binding{m.keys.PrevDay, m.keys.NextDay, m.keys.PrevTime, m.keys.NextTime, m.keys.Add}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && len(m.days) > 0 {
		switch {
		case key.Matches(msg, m.keys.PrevDay):
			m.day = (m.day - 1 + len(m.days)) % len(m.days)
			return m, nil
		case key.Matches(msg, m.keys.NextDay):
			m.day = (m.day + 1) % len(m.days)
			return m, nil
		case key.Matches(msg, m.keys.PrevTime):
			m.time = (m.time - 1 + len(constants.TimeChoices)) % len(constants.TimeChoices)
			return m, nil
		case key.Matches(msg, m.keys.NextTime):
			m.time = (m.time + 1) % len(constants.TimeChoices)
			return m, nil
		case key.Matches(msg, m.keys.Add):
			pick := AddSlotMsg{Day: m.days[m.day], Time: constants.TimeChoices[m.time]}
			return m, func() tea.Msg { return pick }
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.days) == 0 {
		return "No days to pick from."
	}
	var b strings.Builder
	b.WriteString("  Day:  ")
	for i, d := range m.days {
		if i == m.day {
			b.WriteString(cursorStyle.Render("[" + d + "]"))
		} else {
			b.WriteString(choiceStyle.Render(" " + d + " "))
		}
	}
	b.WriteString("\n  Time: ")
	b.WriteString(cursorStyle.Render(constants.TimeChoices[m.time]))
	b.WriteString(choiceStyle.Render("  (30 minutes, enter to add)"))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	return b.String()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = max(height-3, 1)
	m.render()
}

func (m *Model) render() {
	m.viewport.SetContent(directory.RenderSlots("Your availability", m.slots, m.loc))
}

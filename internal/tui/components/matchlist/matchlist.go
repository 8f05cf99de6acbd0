package matchlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/coffeematch/internal/matches"
	"github.com/julianstephens/coffeematch/internal/models"
)

// RespondMsg asks the parent to accept or reject MatchID.
type RespondMsg struct {
	MatchID int64
	Action  models.ResponseAction
}

// RescheduleMsg asks the parent to start a reschedule of MatchID.
type RescheduleMsg struct {
	MatchID int64
}

// CycleFilterMsg asks the parent to move to the next filter.
type CycleFilterMsg struct{}

type Item struct {
	Card matches.Card
}

func (i Item) Title() string {
	prefix := "To"
	if i.Card.Direction == matches.Received {
		prefix = "From"
	}
	return fmt.Sprintf("#%d %s %s · %s", i.Card.Match.ID, prefix, i.Card.Counterpart, i.Card.Status)
}

func (i Item) Description() string {
	desc := i.Card.When + " at " + i.Card.Venue
	if i.Card.Message != "" {
		desc += fmt.Sprintf(" · %q", i.Card.Message)
	}
	return desc
}

func (i Item) FilterValue() string { return i.Card.Counterpart }

type KeyMap struct {
	Accept     key.Binding
	Reject     key.Binding
	Reschedule key.Binding
	Filter     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Accept: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "accept"),
		),
		Reject: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reject"),
		),
		Reschedule: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "reschedule"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle filter"),
		),
	}
}

type Model struct {
	list   list.Model
	keys   KeyMap
	filter matches.Filter
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Accept, keys.Reject, keys.Reschedule, keys.Filter}
	}
	return Model{list: l, keys: keys, filter: matches.FilterAll}
}

// SetCards shows received cards before sent ones.
func (m *Model) SetCards(received, sent []matches.Card, f matches.Filter) {
	items := make([]list.Item, 0, len(received)+len(sent))
	for _, c := range received {
		items = append(items, Item{Card: c})
	}
	for _, c := range sent {
		items = append(items, Item{Card: c})
	}
	m.list.SetItems(items)
	m.filter = f
}

func (m Model) Filter() matches.Filter {
	return m.filter
}

// Selected returns the highlighted card.
func (m Model) Selected() (matches.Card, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Card, ok
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Filter):
			return m, func() tea.Msg { return CycleFilterMsg{} }
		case key.Matches(msg, m.keys.Accept):
			return m, m.act(models.ActionAccept)
		case key.Matches(msg, m.keys.Reject):
			return m, m.act(models.ActionReject)
		case key.Matches(msg, m.keys.Reschedule):
			return m, m.act(models.ActionReschedule)
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// act emits a message only for cards that offer the action.
func (m Model) act(action models.ResponseAction) tea.Cmd {
	c, ok := m.Selected()
	if !ok || !c.Actionable() {
		return nil
	}
	id := c.Match.ID
	if action == models.ActionReschedule {
		return func() tea.Msg { return RescheduleMsg{MatchID: id} }
	}
	return func() tea.Msg { return RespondMsg{MatchID: id, Action: action} }
}

func (m Model) View() string {
	header := fmt.Sprintf("  Filter: %s\n", m.filter)
	if len(m.list.Items()) == 0 {
		return header + "\n  No matches to show."
	}
	return header + m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height-1)
}

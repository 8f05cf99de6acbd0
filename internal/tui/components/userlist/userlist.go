package userlist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/coffeematch/internal/directory"
)

// InviteMsg asks the parent to open the invite workflow for UserID.
type InviteMsg struct {
	UserID int64
}

type Item struct {
	Card directory.UserCard
}

func (i Item) Title() string {
	if i.Card.IsSelf {
		return i.Card.User.Name + " (you)"
	}
	return i.Card.User.Name
}

func (i Item) Description() string {
	u := i.Card.User
	switch {
	case u.Location != "" && u.Bio != "":
		return u.Location + " · " + u.Bio
	case u.Location != "":
		return u.Location
	case u.Bio != "":
		return u.Bio
	default:
		return u.Email
	}
}

func (i Item) FilterValue() string { return i.Card.User.Name }

type KeyMap struct {
	Invite key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Invite: key.NewBinding(
			key.WithKeys("i", "enter"),
			key.WithHelp("i", "invite"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Directory"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Invite}
	}
	return Model{list: l, keys: keys}
}

func (m *Model) SetUsers(cards []directory.UserCard) {
	items := make([]list.Item, len(cards))
	for i, c := range cards {
		items[i] = Item{Card: c}
	}
	m.list.SetItems(items)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if key.Matches(msg, m.keys.Invite) {
			if i, ok := m.list.SelectedItem().(Item); ok && i.Card.CanInvite {
				id := i.Card.User.ID
				return m, func() tea.Msg { return InviteMsg{UserID: id} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No one has registered yet."
	}
	return m.list.View()
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

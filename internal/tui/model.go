package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/directory"
	"github.com/julianstephens/coffeematch/internal/errors"
	"github.com/julianstephens/coffeematch/internal/invite"
	"github.com/julianstephens/coffeematch/internal/matches"
	"github.com/julianstephens/coffeematch/internal/session"
	"github.com/julianstephens/coffeematch/internal/tui/components/matchlist"
	"github.com/julianstephens/coffeematch/internal/tui/components/picker"
	"github.com/julianstephens/coffeematch/internal/tui/components/userlist"
)

// Options wires the TUI to an already constructed session and workflow.
// OnLogin and OnLogout let the caller persist the identity; both may be nil.
type Options struct {
	Ctx      context.Context
	Session  *session.Session
	Workflow *invite.Workflow
	OnLogin  func(email string)
	OnLogout func()
}

type AuthFormModel struct {
	Name     string
	Email    string
	Location string
	Bio      string
}

type InviteFormModel struct {
	SlotID  int64
	VenueID int64
	Message string
}

type RescheduleFormModel struct {
	MatchID int64
	SlotID  int64
	VenueID int64
}

type VenueFormModel struct {
	Name        string
	Type        string
	PriceRange  string
	Location    string
	Description string
}

type ProfileFormModel struct {
	Name     string
	Location string
	Bio      string
}

type Model struct {
	ctx      context.Context
	sess     *session.Session
	wf       *invite.Workflow
	onLogin  func(string)
	onLogout func()

	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model

	userList  userlist.Model
	matchList matchlist.Model
	picker    picker.Model
	venues    viewport.Model

	form           *huh.Form
	authForm       *AuthFormModel
	inviteForm     *InviteFormModel
	rescheduleForm *RescheduleFormModel
	venueForm      *VenueFormModel
	profileForm    *ProfileFormModel
	confirm        *constants.ConfirmationMsg

	// busy is set while a mutation is in flight; further mutations wait.
	busy     bool
	status   string
	errMsg   string
	quitting bool
	width    int
	height   int
}

func NewModel(opts Options) Model {
	ctx := opts.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		ctx:       ctx,
		sess:      opts.Session,
		wf:        opts.Workflow,
		onLogin:   opts.OnLogin,
		onLogout:  opts.OnLogout,
		state:     constants.StateAuth,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		userList:  userlist.New(0, 0),
		matchList: matchlist.New(0, 0),
		picker:    picker.New(nil, opts.Session.Location(), 0, 0),
		venues:    viewport.New(0, 0),
	}
	if m.sess.Active() {
		m.state = constants.StateDirectory
		m.picker.Reset(m.sess.Selector().Days())
		m.sync()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.sess.Active() {
		return refreshCmd(m.ctx, m.sess)
	}
	return nil
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateAuth:
		return []key.Binding{m.keys.Login, m.keys.Register, m.keys.Quit}
	case constants.StateAvailability:
		keys = append(keys, m.picker.Keys()...)
	case constants.StateVenues:
		keys = append(keys, m.keys.Add)
	case constants.StateProfile:
		keys = append(keys, m.keys.Edit, m.keys.Logout)
	}
	return append(keys, m.keys.Refresh)
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}

	var actions []key.Binding
	switch m.state {
	case constants.StateAuth:
		return [][]key.Binding{{m.keys.Login, m.keys.Register, m.keys.Quit}}
	case constants.StateAvailability:
		actions = m.picker.Keys()
	case constants.StateVenues:
		actions = []key.Binding{m.keys.Add}
	case constants.StateProfile:
		actions = []key.Binding{m.keys.Edit, m.keys.Logout}
	}
	return [][]key.Binding{global, actions}
}

// sync copies the session caches into the components. It runs on the
// update goroutine only.
func (m *Model) sync() {
	snap := m.sess.Snapshot()
	var self int64
	if snap.User != nil {
		self = snap.User.ID
	}

	m.userList.SetUsers(directory.UserCards(snap.Users, self))
	received, sent := matches.BuildCards(m.sess.MatchView(), snap.Filter)
	m.matchList.SetCards(received, sent, snap.Filter)
	m.picker.SetSlots(snap.Slots)
	m.venues.SetContent(directory.RenderVenues(directory.VenueCards(snap.Venues, snap.Users, self)))
}

func (m *Model) resize() {
	h := max(m.height-6, 1)
	w := max(m.width-4, 1)
	m.userList.SetSize(w, h)
	m.matchList.SetSize(w, h)
	m.picker.SetSize(w, h)
	m.venues.Width = w
	m.venues.Height = h
	m.help.Width = m.width
}

func (m *Model) fail(err error) {
	m.status = ""
	if err == nil {
		m.errMsg = ""
		return
	}
	m.errMsg = errors.Format(err)
}

func (m *Model) succeed(status string) {
	m.status = status
	m.errMsg = ""
}

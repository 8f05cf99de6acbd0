package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/errors"
	"github.com/julianstephens/coffeematch/internal/invite"
	"github.com/julianstephens/coffeematch/internal/matches"
	"github.com/julianstephens/coffeematch/internal/models"
	"github.com/julianstephens/coffeematch/internal/tui/components/matchlist"
	"github.com/julianstephens/coffeematch/internal/tui/components/picker"
	"github.com/julianstephens/coffeematch/internal/tui/components/userlist"
	"github.com/julianstephens/coffeematch/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case enteredMsg:
		return m.handleEntered(msg)

	case directoryMsg:
		if m.fetched(msg.res.Epoch, msg.err) && m.sess.ApplyDirectory(msg.res) {
			m.sync()
		}
		return m, nil
	case venuesMsg:
		if m.fetched(msg.res.Epoch, msg.err) && m.sess.ApplyVenues(msg.res) {
			m.sync()
		}
		return m, nil
	case slotsMsg:
		if m.fetched(msg.res.Epoch, msg.err) && m.sess.ApplySlots(msg.res) {
			m.sync()
		}
		return m, nil
	case matchesMsg:
		if m.fetched(msg.res.Epoch, msg.err) && m.sess.ApplyMatches(msg.res) {
			m.sync()
		}
		return m, nil

	case userlist.InviteMsg:
		return m.startInvite(msg.UserID)
	case inviteSlotsMsg:
		return m.handleInviteSlots(msg)
	case inviteSentMsg:
		return m.handleInviteSent(msg)

	case matchlist.CycleFilterMsg:
		m.sess.SetFilter(m.sess.Filter().Next())
		m.sync()
		return m, nil
	case matchlist.RespondMsg:
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, respondCmd(m.ctx, m.wf, msg.MatchID, msg.Action)
	case respondedMsg:
		m.busy = false
		if msg.match == nil {
			m.fail(msg.err)
			return m, nil
		}
		m.sync()
		m.succeed(fmt.Sprintf("✓ Match #%d is now %s", msg.match.ID, matches.StatusLabel(msg.match.Status)))
		m.warn(msg.err)
		return m, nil

	case matchlist.RescheduleMsg:
		return m.startReschedule(msg.MatchID)
	case rescheduleSlotsMsg:
		return m.handleRescheduleSlots(msg)
	case rescheduledMsg:
		m.busy = false
		if m.state == constants.StateReschedule {
			m.state = m.previousState
		}
		m.rescheduleForm = nil
		m.form = nil
		if msg.counter == nil {
			m.fail(msg.err)
			return m, nil
		}
		m.sync()
		m.succeed(fmt.Sprintf("✓ Match rescheduled; counter-proposal #%d sent to %s",
			msg.counter.ID, m.sess.UserName(msg.counter.TargetID)))
		m.warn(msg.err)
		return m, nil

	case picker.AddSlotMsg:
		return m.addSlot(msg)
	case slotAddedMsg:
		m.busy = false
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.sync()
		loc := m.sess.Location()
		m.succeed(fmt.Sprintf("✓ Added slot #%d %s-%s", msg.slot.ID,
			utils.FormatDateTime(msg.slot.StartTime.Time, loc),
			utils.FormatClock(msg.slot.EndTime.Time, loc)))
		return m, nil

	case venueAddedMsg:
		m.busy = false
		m.closeModal()
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.sync()
		m.succeed(fmt.Sprintf("✓ Added venue #%d %s", msg.venue.ID, msg.venue.Name))
		return m, nil

	case profileSavedMsg:
		m.busy = false
		m.closeModal()
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.sync()
		m.succeed("✓ Profile updated")
		return m, nil

	case logoutMsg:
		m.sess.Logout()
		if m.onLogout != nil {
			m.onLogout()
		}
		m.state = constants.StateAuth
		m.sync()
		m.succeed("✓ Logged out")
		return m, nil
	}

	return m.updateActive(msg)
}

// fetched reports whether a fetch result belongs to the current identity and
// succeeded. Failures from a stale identity are dropped silently.
func (m *Model) fetched(epoch uint64, err error) bool {
	if epoch != m.sess.Epoch() {
		return false
	}
	if err != nil {
		m.fail(err)
		return false
	}
	return true
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case constants.StateAuth:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Login):
			m.authForm = &AuthFormModel{}
			m.form = newLoginForm(m.authForm)
			m.openModal(constants.StateLogin)
			return m, m.form.Init()
		case key.Matches(msg, m.keys.Register):
			m.authForm = &AuthFormModel{}
			m.form = newRegisterForm(m.authForm)
			m.openModal(constants.StateRegister)
			return m, m.form.Init()
		}
		return m, nil

	case constants.StateConfirmation:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			var cmd tea.Cmd
			if m.confirm != nil {
				cmd = m.confirm.Action()
			}
			m.confirm = nil
			m.state = m.previousState
			return m, cmd
		case key.Matches(msg, m.keys.Cancel):
			m.confirm = nil
			m.state = m.previousState
		}
		return m, nil

	case constants.StateLogin, constants.StateRegister, constants.StateInvite,
		constants.StateReschedule, constants.StateAddVenue, constants.StateEditProfile:
		if key.Matches(msg, m.keys.Back) {
			m.closeModal()
			return m, nil
		}
		return m.updateForm(msg)
	}

	if m.state == constants.StateDirectory && m.userList.Filtering() {
		return m.updateActive(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		m.state = m.nextTab(1)
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.state = m.nextTab(-1)
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, refreshCmd(m.ctx, m.sess)
	case key.Matches(msg, m.keys.Back):
		return m, nil
	}

	switch m.state {
	case constants.StateVenues:
		if key.Matches(msg, m.keys.Add) {
			m.venueForm = &VenueFormModel{Type: models.VenueTypeCoffee}
			m.form = newVenueForm(m.venueForm)
			m.openModal(constants.StateAddVenue)
			return m, m.form.Init()
		}
	case constants.StateProfile:
		switch {
		case key.Matches(msg, m.keys.Edit):
			m.profileForm = &ProfileFormModel{}
			if u := m.sess.User(); u != nil {
				m.profileForm.Name = u.Name
				m.profileForm.Location = u.Location
				m.profileForm.Bio = u.Bio
			}
			m.form = newProfileForm(m.profileForm)
			m.openModal(constants.StateEditProfile)
			return m, m.form.Init()
		case key.Matches(msg, m.keys.Logout):
			if m.busy {
				return m, nil
			}
			m.confirm = &constants.ConfirmationMsg{
				Message: "Log out of coffeematch?",
				Action: func() tea.Cmd {
					return func() tea.Msg { return logoutMsg{} }
				},
			}
			m.openModal(constants.StateConfirmation)
			return m, nil
		}
	}

	return m.updateActive(msg)
}

func (m Model) nextTab(step int) constants.SessionState {
	i := slices.Index(constants.MainStates, m.state)
	if i < 0 {
		return constants.MainStates[0]
	}
	n := len(constants.MainStates)
	return constants.MainStates[(i+step+n)%n]
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case constants.StateDirectory:
		m.userList, cmd = m.userList.Update(msg)
	case constants.StateAvailability:
		m.picker, cmd = m.picker.Update(msg)
	case constants.StateMatches:
		m.matchList, cmd = m.matchList.Update(msg)
	case constants.StateVenues:
		m.venues, cmd = m.venues.Update(msg)
	case constants.StateLogin, constants.StateRegister, constants.StateInvite,
		constants.StateReschedule, constants.StateAddVenue, constants.StateEditProfile:
		return m.updateForm(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.submitForm()
	case huh.StateAborted:
		m.closeModal()
		return m, nil
	}
	return m, cmd
}

// submitForm hands the completed form to a command. The form is hidden
// until the result arrives.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	m.form = nil
	if m.busy {
		m.closeModal()
		return m, nil
	}
	m.busy = true
	m.errMsg = ""

	switch m.state {
	case constants.StateLogin:
		m.status = "Logging in..."
		return m, loginCmd(m.ctx, m.sess, m.authForm.Email)
	case constants.StateRegister:
		m.status = "Creating your account..."
		return m, registerCmd(m.ctx, m.sess, models.RegisterInput{
			Name:     m.authForm.Name,
			Email:    m.authForm.Email,
			Location: m.authForm.Location,
			Bio:      m.authForm.Bio,
		})
	case constants.StateInvite:
		m.status = "Sending invitation..."
		return m, submitInviteCmd(m.ctx, m.wf, invite.Proposal{
			SlotID:  m.inviteForm.SlotID,
			VenueID: m.inviteForm.VenueID,
			Message: m.inviteForm.Message,
		})
	case constants.StateReschedule:
		m.status = "Sending counter-proposal..."
		f := m.rescheduleForm
		return m, rescheduleCmd(m.ctx, m.wf, f.MatchID, f.SlotID, f.VenueID)
	case constants.StateAddVenue:
		m.status = "Saving venue..."
		return m, addVenueCmd(m.ctx, m.sess, models.VenueInput{
			Name:        m.venueForm.Name,
			Type:        m.venueForm.Type,
			PriceRange:  m.venueForm.PriceRange,
			Location:    m.venueForm.Location,
			Description: m.venueForm.Description,
		})
	case constants.StateEditProfile:
		m.status = "Saving profile..."
		return m, saveProfileCmd(m.ctx, m.sess, models.ProfileUpdate{
			Name:     m.profileForm.Name,
			Location: m.profileForm.Location,
			Bio:      m.profileForm.Bio,
		})
	}

	m.busy = false
	return m, nil
}

func (m *Model) openModal(state constants.SessionState) {
	if m.state != state {
		m.previousState = m.state
	}
	m.state = state
	m.status = ""
	m.errMsg = ""
}

// closeModal returns to the screen the modal was opened from.
func (m *Model) closeModal() {
	switch m.state {
	case constants.StateInvite:
		m.wf.Close()
	case constants.StateLogin, constants.StateRegister, constants.StateReschedule,
		constants.StateAddVenue, constants.StateEditProfile, constants.StateConfirmation:
	default:
		return
	}
	m.state = m.previousState
	m.form = nil
	m.inviteForm = nil
	m.rescheduleForm = nil
	m.venueForm = nil
	m.profileForm = nil
	m.confirm = nil
}

func (m Model) handleEntered(msg enteredMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.fail(msg.err)
		switch m.state {
		case constants.StateLogin:
			m.form = newLoginForm(m.authForm)
			return m, m.form.Init()
		case constants.StateRegister:
			m.form = newRegisterForm(m.authForm)
			return m, m.form.Init()
		}
		return m, nil
	}

	if m.onLogin != nil {
		m.onLogin(msg.email)
	}
	m.form = nil
	m.authForm = nil
	m.state = constants.StateDirectory
	m.picker.Reset(m.sess.Selector().Days())
	m.sync()

	name := msg.email
	if u := m.sess.User(); u != nil {
		name = u.Name
	}
	m.succeed(fmt.Sprintf("✓ Welcome, %s!", name))
	return m, nil
}

func (m Model) startInvite(userID int64) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	gen, err := m.wf.Begin(userID)
	if err != nil {
		m.fail(err)
		return m, nil
	}
	m.inviteForm = &InviteFormModel{}
	m.form = nil
	m.openModal(constants.StateInvite)
	return m, inviteSlotsCmd(m.ctx, m.wf, gen, userID)
}

func (m Model) handleInviteSlots(msg inviteSlotsMsg) (tea.Model, tea.Cmd) {
	if !m.wf.ApplySlots(msg.gen, msg.slots, msg.err) {
		return m, nil
	}

	switch m.wf.State() {
	case invite.StateFailed:
		m.fail(m.wf.Err())
	case invite.StateReady:
		return m.showInviteForm()
	}
	return m, nil
}

func (m Model) showInviteForm() (tea.Model, tea.Cmd) {
	venues := m.sess.Snapshot().Venues
	if len(venues) == 0 {
		m.fail(errors.Validation("Suggest a venue before sending an invitation."))
		return m, nil
	}
	slots := m.wf.Slots()
	if m.inviteForm == nil {
		m.inviteForm = &InviteFormModel{}
	}
	m.form = newInviteForm(m.inviteForm, m.wf.Target().Name, slots, venues, m.sess.Location())
	return m, m.form.Init()
}

func (m Model) handleInviteSent(msg inviteSentMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.match == nil {
		m.fail(msg.err)
		if m.state == constants.StateInvite && m.wf.CanSubmit() {
			return m.showInviteForm()
		}
		return m, nil
	}

	if m.state == constants.StateInvite {
		m.closeModal()
	}
	m.sync()
	m.succeed(fmt.Sprintf("✓ Invitation #%d sent to %s", msg.match.ID, m.sess.UserName(msg.match.TargetID)))
	m.warn(msg.err)
	return m, nil
}

func (m Model) startReschedule(matchID int64) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.rescheduleForm = &RescheduleFormModel{MatchID: matchID}
	m.form = nil
	m.openModal(constants.StateReschedule)
	return m, rescheduleSlotsCmd(m.ctx, m.wf, matchID)
}

func (m Model) handleRescheduleSlots(msg rescheduleSlotsMsg) (tea.Model, tea.Cmd) {
	if m.state != constants.StateReschedule || m.rescheduleForm == nil || m.rescheduleForm.MatchID != msg.matchID {
		return m, nil
	}

	match, _ := m.sess.ReceivedMatch(msg.matchID)
	requester := m.sess.UserName(match.RequesterID)
	switch {
	case msg.err != nil:
		m.closeModal()
		m.fail(msg.err)
		return m, nil
	case len(msg.slots) == 0:
		m.closeModal()
		m.fail(errors.Validationf("%s has no open slots to move this meetup to.", requester))
		return m, nil
	}

	m.form = newRescheduleForm(m.rescheduleForm, requester, msg.slots, m.sess.Snapshot().Venues, m.sess.Location())
	return m, m.form.Init()
}

func (m Model) addSlot(msg picker.AddSlotMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	sel := m.sess.Selector()
	if err := sel.SelectDay(msg.Day); err != nil {
		m.fail(err)
		return m, nil
	}
	if err := sel.SelectTime(msg.Time); err != nil {
		m.fail(err)
		return m, nil
	}
	m.busy = true
	m.status = "Adding slot..."
	m.errMsg = ""
	return m, addSlotCmd(m.ctx, m.sess)
}

// warn reports a follow-up failure without hiding the status line.
func (m *Model) warn(err error) {
	if err != nil {
		m.errMsg = errors.Format(err)
	}
}

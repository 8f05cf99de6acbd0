package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/invite"
)

var tabTitles = map[constants.SessionState]string{
	constants.StateDirectory:    "People",
	constants.StateAvailability: "Availability",
	constants.StateMatches:      "Matches",
	constants.StateVenues:       "Venues",
	constants.StateProfile:      "Profile",
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateAuth:
		content = m.viewAuth()
	case constants.StateLogin, constants.StateRegister:
		content = m.viewForm(titleStyle.Render("☕ coffeematch"))
	case constants.StateDirectory:
		content = docStyle.Render(m.userList.View())
	case constants.StateAvailability:
		content = docStyle.Render(m.picker.View())
	case constants.StateMatches:
		content = docStyle.Render(m.matchList.View())
	case constants.StateVenues:
		content = docStyle.Render(m.venues.View())
	case constants.StateProfile:
		content = m.viewProfile()
	case constants.StateInvite:
		content = m.viewInvite()
	case constants.StateReschedule:
		content = m.viewForm(titleStyle.Render("Reschedule"))
	case constants.StateAddVenue:
		content = m.viewForm(titleStyle.Render("Suggest a venue"))
	case constants.StateEditProfile:
		content = m.viewForm(titleStyle.Render("Edit profile"))
	case constants.StateConfirmation:
		content = m.viewConfirmation()
	}

	parts := []string{}
	if m.state != constants.StateAuth && m.state != constants.StateLogin && m.state != constants.StateRegister {
		parts = append(parts, m.viewTabs())
	}
	parts = append(parts, content, m.viewStatus(), m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	active := m.state
	if _, ok := tabTitles[active]; !ok {
		active = m.previousState
	}
	var tabs []string
	for _, s := range constants.MainStates {
		if s == active {
			tabs = append(tabs, activeTabStyle.Render(tabTitles[s]))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(tabTitles[s]))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	switch {
	case m.errMsg != "" && m.status != "":
		return "  " + statusStyle.Render(m.status) + "  " + dangerStyle.Render(m.errMsg)
	case m.errMsg != "":
		return "  " + dangerStyle.Render(m.errMsg)
	case m.status != "":
		return "  " + statusStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewAuth() string {
	return lipgloss.Place(m.width, max(m.height-4, 8),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			titleStyle.Render("☕ coffeematch"),
			mutedStyle.Render("Meet someone new over coffee."),
			"",
			"[l] Log in",
			"[n] Register",
			"",
			"[q] Quit",
		),
	)
}

func (m Model) viewForm(title string) string {
	if m.form == nil {
		return docStyle.Render(title + "\n\n" + mutedStyle.Render("Working..."))
	}
	return docStyle.Render(title + "\n\n" + m.form.View() + "\n" + mutedStyle.Render("esc to cancel"))
}

func (m Model) viewInvite() string {
	target := m.wf.Target().Name
	title := titleStyle.Render("Invite " + target)

	switch m.wf.State() {
	case invite.StateLoading:
		return docStyle.Render(title + "\n\n" + mutedStyle.Render("Loading "+target+"'s availability..."))
	case invite.StateNoSlots:
		return docStyle.Render(title + "\n\n" + target + " has not shared any availability yet.\n\n" + mutedStyle.Render("esc to go back"))
	case invite.StateFailed:
		return docStyle.Render(title + "\n\n" + mutedStyle.Render("Could not load availability. esc to go back and try again."))
	}
	if m.form == nil && !m.busy {
		return docStyle.Render(title + "\n\n" + mutedStyle.Render("esc to go back"))
	}
	return m.viewForm(title)
}

func (m Model) viewProfile() string {
	u := m.sess.User()
	if u == nil {
		return docStyle.Render("Not logged in.")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(u.Name))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(u.Email))
	b.WriteString("\n\n")
	if u.Location != "" {
		b.WriteString("Location: " + u.Location + "\n")
	}
	if u.Bio != "" {
		b.WriteString("Bio: " + u.Bio + "\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("[e] Edit profile  [L] Log out"))
	return docStyle.Render(b.String())
}

func (m Model) viewConfirmation() string {
	msg := ""
	if m.confirm != nil {
		msg = m.confirm.Message
	}
	return lipgloss.Place(m.width, max(m.height-4, 6),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(msg),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

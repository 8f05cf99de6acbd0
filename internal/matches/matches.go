// Package matches filters match lists and turns them into display cards.
package matches

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/models"
	"github.com/julianstephens/coffeematch/internal/utils"
)

type Filter string

const (
	FilterAll         Filter = "all"
	FilterPending     Filter = Filter(models.MatchStatusPending)
	FilterAccepted    Filter = Filter(models.MatchStatusAccepted)
	FilterRejected    Filter = Filter(models.MatchStatusRejected)
	FilterRescheduled Filter = Filter(models.MatchStatusRescheduled)
)

// Filters lists every filter in the order the TUI cycles through them.
var Filters = []Filter{FilterAll, FilterPending, FilterAccepted, FilterRejected, FilterRescheduled}

// ParseFilter matches s case-insensitively against Filters. Blank means all.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if s == string(f) {
			return f, nil
		}
	}
	return FilterAll, fmt.Errorf("unknown match filter %q (want one of %s)", s, strings.Join(filterNames(), ", "))
}

func filterNames() []string {
	names := make([]string, len(Filters))
	for i, f := range Filters {
		names[i] = string(f)
	}
	return names
}

// Next returns the filter after f, wrapping around.
func (f Filter) Next() Filter {
	for i, candidate := range Filters {
		if candidate == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

// Apply returns the matches whose status equals f, preserving order.
// FilterAll returns list itself.
func Apply(list []models.Match, f Filter) []models.Match {
	if f == FilterAll || f == "" {
		return list
	}
	out := make([]models.Match, 0, len(list))
	for _, m := range list {
		if strings.EqualFold(string(m.Status), string(f)) {
			out = append(out, m)
		}
	}
	return out
}

type Direction string

const (
	Received Direction = "received"
	Sent     Direction = "sent"
)

// Card is one match resolved against the cached directory and venues.
type Card struct {
	Match     models.Match
	Direction Direction
	// Counterpart is the other participant's name.
	Counterpart string
	Venue       string
	When        string
	Status      string
	Message     string
	// Actions is non-empty only for received pending matches.
	Actions []models.ResponseAction
}

// Actionable reports whether the card offers any response.
func (c Card) Actionable() bool {
	return len(c.Actions) > 0
}

// View is the cached state the cards are built from.
type View struct {
	CurrentUserID int64
	Received      []models.Match
	Sent          []models.Match
	Users         []models.User
	Venues        []models.Venue
	Location      *time.Location
}

// BuildCards filters both lists and resolves names. Ids missing from the
// caches render as placeholders.
func BuildCards(v View, f Filter) (received, sent []Card) {
	users := make(map[int64]string, len(v.Users))
	for _, u := range v.Users {
		users[u.ID] = u.Name
	}
	venues := make(map[int64]string, len(v.Venues))
	for _, venue := range v.Venues {
		venues[venue.ID] = venue.Name
	}

	build := func(m models.Match, dir Direction) Card {
		other := m.TargetID
		if dir == Received {
			other = m.RequesterID
		}
		c := Card{
			Match:       m,
			Direction:   dir,
			Counterpart: lookup(users, other, constants.UnknownUser),
			Venue:       lookup(venues, m.VenueID, constants.UnknownVenue),
			When:        utils.FormatDateTime(m.ProposedTime.Time, v.Location),
			Status:      StatusLabel(m.Status),
			Message:     m.Message,
		}
		if dir == Received && m.Status == models.MatchStatusPending && m.RoleOf(v.CurrentUserID) == models.RoleTarget {
			c.Actions = append([]models.ResponseAction(nil), models.ResponseActions...)
		}
		return c
	}

	for _, m := range Apply(v.Received, f) {
		received = append(received, build(m, Received))
	}
	for _, m := range Apply(v.Sent, f) {
		sent = append(sent, build(m, Sent))
	}
	return received, sent
}

func lookup(names map[int64]string, id int64, fallback string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return fallback
}

// StatusLabel capitalises a status for display.
func StatusLabel(s models.MatchStatus) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	statusStyles = map[models.MatchStatus]lipgloss.Style{
		models.MatchStatusPending:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.MatchStatusAccepted:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.MatchStatusRejected:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		models.MatchStatusRescheduled: lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	}
)

// Render draws a titled section of cards. empty is shown when there are none.
func Render(title string, cards []Card, empty string) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	if len(cards) == 0 {
		b.WriteString(detailStyle.Render("  " + empty))
		b.WriteString("\n")
		return b.String()
	}
	for _, c := range cards {
		b.WriteString(RenderCard(c))
	}
	return b.String()
}

// RenderCard draws one card in a few lines.
func RenderCard(c Card) string {
	prefix := "To"
	if c.Direction == Received {
		prefix = "From"
	}

	status := c.Status
	if st, ok := statusStyles[c.Match.Status]; ok {
		status = st.Render(c.Status)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  #%d %s %s  %s\n",
		c.Match.ID,
		detailStyle.Render(prefix),
		nameStyle.Render(c.Counterpart),
		status,
	)
	fmt.Fprintf(&b, "     %s\n", detailStyle.Render(fmt.Sprintf("%s at %s", c.When, c.Venue)))
	if c.Message != "" {
		fmt.Fprintf(&b, "     %s\n", messageStyle.Render(fmt.Sprintf("%q", c.Message)))
	}
	if c.Actionable() {
		actions := make([]string, len(c.Actions))
		for i, a := range c.Actions {
			actions[i] = string(a)
		}
		fmt.Fprintf(&b, "     %s\n", detailStyle.Render("actions: "+strings.Join(actions, " / ")))
	}
	return b.String()
}

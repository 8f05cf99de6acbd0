// Package directory renders the cached user directory, venue catalog and
// slot lists.
package directory

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/models"
	"github.com/julianstephens/coffeematch/internal/utils"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	selfStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Italic(true)
)

type UserCard struct {
	User   models.User
	IsSelf bool
	// CanInvite is true for everyone except the current user.
	CanInvite bool
}

func UserCards(users []models.User, currentID int64) []UserCard {
	cards := make([]UserCard, 0, len(users))
	for _, u := range users {
		self := currentID != 0 && u.ID == currentID
		cards = append(cards, UserCard{User: u, IsSelf: self, CanInvite: currentID != 0 && !self})
	}
	return cards
}

type VenueCard struct {
	Venue models.Venue
	Badge string
}

// VenueCards resolves each venue's creator into a badge.
func VenueCards(venues []models.Venue, users []models.User, currentID int64) []VenueCard {
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	cards := make([]VenueCard, 0, len(venues))
	for _, v := range venues {
		cards = append(cards, VenueCard{Venue: v, Badge: suggestedBy(v.CreatedByID, currentID, names)})
	}
	return cards
}

func suggestedBy(creatorID, currentID int64, names map[int64]string) string {
	switch {
	case creatorID == 0:
		return ""
	case creatorID == currentID:
		return "Suggested by you"
	default:
		name, ok := names[creatorID]
		if !ok || name == "" {
			name = constants.UnknownUser
		}
		return "Suggested by " + name
	}
}

func RenderUsers(cards []UserCard) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Directory"))
	b.WriteString("\n")
	if len(cards) == 0 {
		b.WriteString(detailStyle.Render("  No one has registered yet."))
		b.WriteString("\n")
		return b.String()
	}
	for _, c := range cards {
		name := nameStyle.Render(c.User.Name)
		if c.IsSelf {
			name = selfStyle.Render(c.User.Name + " (you)")
		}
		fmt.Fprintf(&b, "  #%d %s\n", c.User.ID, name)
		if details := userDetails(c.User); details != "" {
			fmt.Fprintf(&b, "     %s\n", detailStyle.Render(details))
		}
		if c.CanInvite {
			fmt.Fprintf(&b, "     %s\n", badgeStyle.Render(fmt.Sprintf("invite: coffeematch invite --to %d", c.User.ID)))
		}
	}
	return b.String()
}

func userDetails(u models.User) string {
	var parts []string
	if u.Location != "" {
		parts = append(parts, u.Location)
	}
	if u.Bio != "" {
		parts = append(parts, u.Bio)
	}
	return strings.Join(parts, " · ")
}

func RenderVenues(cards []VenueCard) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Venues"))
	b.WriteString("\n")
	if len(cards) == 0 {
		b.WriteString(detailStyle.Render("  No venues yet. Suggest one!"))
		b.WriteString("\n")
		return b.String()
	}
	for _, c := range cards {
		v := c.Venue
		fmt.Fprintf(&b, "  #%d %s %s\n", v.ID, nameStyle.Render(v.Name), detailStyle.Render(venueKind(v)))
		if v.Location != "" || v.Description != "" {
			fmt.Fprintf(&b, "     %s\n", detailStyle.Render(strings.TrimSpace(v.Location+"  "+v.Description)))
		}
		if c.Badge != "" {
			fmt.Fprintf(&b, "     %s\n", badgeStyle.Render(c.Badge))
		}
	}
	return b.String()
}

func venueKind(v models.Venue) string {
	if v.PriceRange == "" {
		return "(" + v.Type + ")"
	}
	return "(" + v.Type + ", " + v.PriceRange + ")"
}

// RenderSlots lists slots in loc with their status.
func RenderSlots(title string, slots []models.TimeSlot, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	if len(slots) == 0 {
		b.WriteString(detailStyle.Render("  No availability yet."))
		b.WriteString("\n")
		return b.String()
	}
	for _, s := range slots {
		fmt.Fprintf(&b, "  #%d %s-%s %s\n",
			s.ID,
			utils.FormatDateTime(s.StartTime.Time, loc),
			utils.FormatClock(s.EndTime.Time, loc),
			detailStyle.Render(string(s.Status)),
		)
	}
	return b.String()
}

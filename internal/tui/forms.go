package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/coffeematch/internal/models"
	"github.com/julianstephens/coffeematch/internal/utils"
)

func slotLabel(s models.TimeSlot, loc *time.Location) string {
	return fmt.Sprintf("#%d %s-%s",
		s.ID,
		utils.FormatDateTime(s.StartTime.Time, loc),
		utils.FormatClock(s.EndTime.Time, loc),
	)
}

func slotOptions(slots []models.TimeSlot, loc *time.Location) []huh.Option[int64] {
	opts := make([]huh.Option[int64], len(slots))
	for i, s := range slots {
		opts[i] = huh.NewOption(slotLabel(s, loc), s.ID)
	}
	return opts
}

func venueOptions(venues []models.Venue) []huh.Option[int64] {
	opts := make([]huh.Option[int64], len(venues))
	for i, v := range venues {
		label := v.Name
		if v.Type != "" {
			label += " (" + v.Type + ")"
		}
		opts[i] = huh.NewOption(label, v.ID)
	}
	return opts
}

func newLoginForm(f *AuthFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&f.Email),
		),
	).WithShowHelp(false)
}

func newRegisterForm(f *AuthFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&f.Name),
			huh.NewInput().
				Title("Email").
				Value(&f.Email),
			huh.NewInput().
				Title("Location").
				Description("Optional").
				Value(&f.Location),
			huh.NewText().
				Title("Bio").
				Description("Optional").
				Value(&f.Bio),
		),
	).WithShowHelp(false)
}

func newInviteForm(f *InviteFormModel, target string, slots []models.TimeSlot, venues []models.Venue, loc *time.Location) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Title("When can you meet " + target + "?").
				Options(slotOptions(slots, loc)...).
				Value(&f.SlotID),
			huh.NewSelect[int64]().
				Title("Where?").
				Options(venueOptions(venues)...).
				Value(&f.VenueID),
			huh.NewText().
				Title("Message").
				Description("Optional").
				Value(&f.Message),
		),
	).WithShowHelp(false)
}

func newRescheduleForm(f *RescheduleFormModel, requester string, slots []models.TimeSlot, venues []models.Venue, loc *time.Location) *huh.Form {
	venueOpts := append([]huh.Option[int64]{huh.NewOption("Keep the original venue", int64(0))}, venueOptions(venues)...)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Title("Pick another of " + requester + "'s open slots").
				Options(slotOptions(slots, loc)...).
				Value(&f.SlotID),
			huh.NewSelect[int64]().
				Title("Venue").
				Options(venueOpts...).
				Value(&f.VenueID),
		),
	).WithShowHelp(false)
}

func newVenueForm(f *VenueFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&f.Name),
			huh.NewSelect[string]().
				Title("Type").
				Options(huh.NewOptions(models.VenueTypes...)...).
				Value(&f.Type),
			huh.NewInput().
				Title("Price range").
				Placeholder("$$").
				Value(&f.PriceRange),
			huh.NewInput().
				Title("Location").
				Value(&f.Location),
			huh.NewText().
				Title("Description").
				Value(&f.Description),
		),
	).WithShowHelp(false)
}

func newProfileForm(f *ProfileFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&f.Name),
			huh.NewInput().
				Title("Location").
				Value(&f.Location),
			huh.NewText().
				Title("Bio").
				Value(&f.Bio),
		),
	).WithShowHelp(false)
}

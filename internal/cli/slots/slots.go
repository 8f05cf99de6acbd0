package slots

import (
	"strings"

	"github.com/julianstephens/coffeematch/internal/cli"
	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/directory"
	"github.com/julianstephens/coffeematch/internal/utils"
)

// SlotsListCmd lists the signed-in user's slots, or another user's with --user.
type SlotsListCmd struct {
	User int64 `help:"Show this user's slots instead of your own." short:"u"`
}

func (cmd *SlotsListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Resume(); err != nil {
		return err
	}
	if cmd.User == 0 || cmd.User == ctx.Session.UserID() {
		ctx.Printf("%s", directory.RenderSlots("Your availability", ctx.Session.Snapshot().Slots, ctx.Location()))
		return nil
	}
	list, err := ctx.API.ListSlots(ctx.Ctx, cmd.User)
	if err != nil {
		return err
	}
	title := "Availability for " + ctx.Session.UserName(cmd.User)
	ctx.Printf("%s", directory.RenderSlots(title, list, ctx.Location()))
	return nil
}

type SlotsAddCmd struct {
	Day  string `arg:"" help:"Day in YYYY-MM-DD, or 'today'/'tomorrow'. See 'slots days'."`
	Time string `arg:"" help:"Start time on a half hour between 09:00 and 17:30."`
}

func (cmd *SlotsAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Resume(); err != nil {
		return err
	}
	sel := ctx.Session.Selector()
	day := strings.ToLower(strings.TrimSpace(cmd.Day))
	days := sel.Days()
	switch {
	case day == "today" && len(days) > 0:
		day = days[0]
	case day == "tomorrow" && len(days) > 1:
		day = days[1]
	}
	if err := sel.SelectDay(day); err != nil {
		return err
	}
	if err := sel.SelectTime(strings.TrimSpace(cmd.Time)); err != nil {
		return err
	}
	slot, err := ctx.Session.SubmitAvailability(ctx.Ctx)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Added slot #%d %s-%s\n",
		slot.ID,
		utils.FormatDateTime(slot.StartTime.Time, ctx.Location()),
		utils.FormatClock(slot.EndTime.Time, ctx.Location()),
	)
	return nil
}

// SlotsDaysCmd prints the selectable days and times.
type SlotsDaysCmd struct{}

func (cmd *SlotsDaysCmd) Run(ctx *cli.Context) error {
	sel := ctx.Session.Selector()
	ctx.Printf("Days:  %s\n", strings.Join(sel.Days(), " "))
	ctx.Printf("Times: %s\n", strings.Join(constants.TimeChoices, " "))
	return nil
}

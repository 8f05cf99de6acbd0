package meetups

import (
	"github.com/julianstephens/coffeematch/internal/cli"
	"github.com/julianstephens/coffeematch/internal/directory"
	"github.com/julianstephens/coffeematch/internal/invite"
	"github.com/julianstephens/coffeematch/internal/matches"
	"github.com/julianstephens/coffeematch/internal/models"
)

// InviteCmd proposes a meetup. Without --slot and --venue it lists what can
// be proposed to the target.
type InviteCmd struct {
	To      int64  `help:"User id to invite." required:""`
	Slot    int64  `help:"One of their time slot ids." short:"s"`
	Venue   int64  `help:"Venue id." short:"v"`
	Message string `help:"A note for the invitation." short:"m"`
}

func (cmd *InviteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Resume(); err != nil {
		return err
	}
	if err := ctx.Workflow.Open(ctx.Ctx, cmd.To); err != nil {
		return err
	}
	defer ctx.Workflow.Close()

	target := ctx.Workflow.Target()
	if ctx.Workflow.State() == invite.StateNoSlots {
		ctx.Printf("%s has not shared any availability yet.\n", target.Name)
		return nil
	}
	if cmd.Slot == 0 || cmd.Venue == 0 {
		snap := ctx.Session.Snapshot()
		ctx.Printf("%s", directory.RenderSlots("Slots offered by "+target.Name, ctx.Workflow.Slots(), ctx.Location()))
		ctx.Printf("%s", directory.RenderVenues(directory.VenueCards(snap.Venues, snap.Users, snap.User.ID)))
		ctx.Printf("\nSend with: coffeematch invite --to %d --slot <id> --venue <id> [--message ...]\n", target.ID)
		return nil
	}

	m, err := ctx.Workflow.Submit(ctx.Ctx, invite.Proposal{
		SlotID:  cmd.Slot,
		VenueID: cmd.Venue,
		Message: cmd.Message,
	})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Invitation #%d sent to %s\n", m.ID, target.Name)
	return nil
}

type MatchesCmd struct {
	Filter string `help:"Only show matches with this status: all, pending, accepted, rejected, rescheduled." short:"f" default:"all"`
}

func (cmd *MatchesCmd) Run(ctx *cli.Context) error {
	f, err := matches.ParseFilter(cmd.Filter)
	if err != nil {
		return err
	}
	if err := ctx.Resume(); err != nil {
		return err
	}
	ctx.Session.SetFilter(f)

	received, sent := matches.BuildCards(ctx.Session.MatchView(), f)
	ctx.Printf("%s", matches.Render("Received", received, "No invitations received."))
	ctx.Println()
	ctx.Printf("%s", matches.Render("Sent", sent, "No invitations sent."))
	return nil
}

type AcceptCmd struct {
	ID int64 `arg:"" help:"Id of a pending invitation you received."`
}

func (cmd *AcceptCmd) Run(ctx *cli.Context) error {
	return respond(ctx, cmd.ID, models.ActionAccept)
}

type RejectCmd struct {
	ID int64 `arg:"" help:"Id of a pending invitation you received."`
}

func (cmd *RejectCmd) Run(ctx *cli.Context) error {
	return respond(ctx, cmd.ID, models.ActionReject)
}

func respond(ctx *cli.Context, id int64, action models.ResponseAction) error {
	if err := ctx.Resume(); err != nil {
		return err
	}
	m, err := ctx.Workflow.Respond(ctx.Ctx, id, action)
	if m == nil {
		return err
	}
	ctx.Printf("✓ Match #%d is now %s\n", m.ID, m.Status)
	return err
}

// RescheduleCmd counters a received invitation with another of the
// requester's slots. Without --slot it lists the open ones.
type RescheduleCmd struct {
	ID    int64 `arg:"" help:"Id of a pending invitation you received."`
	Slot  int64 `help:"The requester's slot to propose instead." short:"s"`
	Venue int64 `help:"A different venue. Defaults to the original one." short:"v"`
}

func (cmd *RescheduleCmd) Run(ctx *cli.Context) error {
	if err := ctx.Resume(); err != nil {
		return err
	}
	if cmd.Slot == 0 {
		open, err := ctx.Workflow.LoadRescheduleSlots(ctx.Ctx, cmd.ID)
		if err != nil {
			return err
		}
		m, _ := ctx.Session.ReceivedMatch(cmd.ID)
		name := ctx.Session.UserName(m.RequesterID)
		ctx.Printf("%s", directory.RenderSlots("Open slots for "+name, open, ctx.Location()))
		if len(open) > 0 {
			ctx.Printf("\nReschedule with: coffeematch reschedule %d --slot <id> [--venue <id>]\n", cmd.ID)
		}
		return nil
	}

	counter, err := ctx.Workflow.Reschedule(ctx.Ctx, cmd.ID, cmd.Slot, cmd.Venue)
	if counter == nil {
		return err
	}
	ctx.Printf("✓ Match #%d rescheduled; counter-proposal #%d sent to %s\n",
		cmd.ID, counter.ID, ctx.Session.UserName(counter.TargetID))
	return err
}

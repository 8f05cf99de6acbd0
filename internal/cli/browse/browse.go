package browse

import (
	"strings"

	"github.com/julianstephens/coffeematch/internal/cli"
	"github.com/julianstephens/coffeematch/internal/directory"
	"github.com/julianstephens/coffeematch/internal/models"
)

type UsersCmd struct{}

func (cmd *UsersCmd) Run(ctx *cli.Context) error {
	if err := ctx.Resume(); err != nil {
		return err
	}
	snap := ctx.Session.Snapshot()
	ctx.Printf("%s", directory.RenderUsers(directory.UserCards(snap.Users, snap.User.ID)))
	return nil
}

type VenuesListCmd struct {
	Type string `help:"Only show venues of this type (coffee, restaurant, bar, other)." short:"t"`
}

func (cmd *VenuesListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Resume(); err != nil {
		return err
	}
	snap := ctx.Session.Snapshot()
	venues := snap.Venues
	if t := strings.TrimSpace(cmd.Type); t != "" {
		var err error
		venues, err = ctx.API.ListVenues(ctx.Ctx, t)
		if err != nil {
			return err
		}
	}
	ctx.Printf("%s", directory.RenderVenues(directory.VenueCards(venues, snap.Users, snap.User.ID)))
	return nil
}

type VenuesAddCmd struct {
	Name        string `arg:"" help:"Venue name."`
	Type        string `help:"Venue type." default:"coffee" enum:"coffee,restaurant,bar,other" short:"t"`
	PriceRange  string `help:"Price range, e.g. $ or $$." name:"price"`
	Location    string `help:"Address or neighbourhood." short:"l"`
	Description string `help:"Why it's a good spot." short:"d"`
}

func (cmd *VenuesAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Resume(); err != nil {
		return err
	}
	v, err := ctx.Session.CreateVenue(ctx.Ctx, models.VenueInput{
		Name:        cmd.Name,
		Type:        cmd.Type,
		PriceRange:  cmd.PriceRange,
		Location:    cmd.Location,
		Description: cmd.Description,
	})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Added venue #%d %s\n", v.ID, v.Name)
	return nil
}

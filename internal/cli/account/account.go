package account

import (
	"github.com/julianstephens/coffeematch/internal/cli"
	"github.com/julianstephens/coffeematch/internal/models"
)

type RegisterCmd struct {
	Name     string `arg:"" help:"Display name."`
	Email    string `arg:"" help:"Email address used to log in."`
	Location string `help:"Neighbourhood or city." short:"l"`
	Bio      string `help:"A short introduction." short:"b"`
}

func (cmd *RegisterCmd) Run(ctx *cli.Context) error {
	in := models.RegisterInput{
		Name:     cmd.Name,
		Email:    cmd.Email,
		Location: cmd.Location,
		Bio:      cmd.Bio,
	}
	if err := ctx.Session.Register(ctx.Ctx, in); err != nil {
		return err
	}
	u := ctx.Session.User()
	ctx.Remember(u.Email)
	ctx.Printf("✓ Welcome, %s! You are user #%d.\n", u.Name, u.ID)
	return nil
}

type LoginCmd struct {
	Email string `arg:"" help:"Email you registered with."`
}

func (cmd *LoginCmd) Run(ctx *cli.Context) error {
	if err := ctx.Session.Login(ctx.Ctx, cmd.Email); err != nil {
		return err
	}
	u := ctx.Session.User()
	ctx.Remember(u.Email)
	snap := ctx.Session.Snapshot()
	ctx.Printf("✓ Logged in as %s (#%d)\n", u.Name, u.ID)
	ctx.Printf("  %d people, %d venues, %d pending invitations\n",
		len(snap.Users), len(snap.Venues), countPending(snap.Received))
	return nil
}

func countPending(list []models.Match) int {
	n := 0
	for _, m := range list {
		if m.Status == models.MatchStatusPending {
			n++
		}
	}
	return n
}

type LogoutCmd struct{}

func (cmd *LogoutCmd) Run(ctx *cli.Context) error {
	ctx.Session.Logout()
	if err := ctx.Forget(); err != nil {
		return err
	}
	ctx.Println("✓ Logged out")
	return nil
}

type WhoamiCmd struct{}

func (cmd *WhoamiCmd) Run(ctx *cli.Context) error {
	if err := ctx.Resume(); err != nil {
		return err
	}
	u := ctx.Session.User()
	ctx.Printf("#%d %s <%s>\n", u.ID, u.Name, u.Email)
	if u.Location != "" {
		ctx.Printf("  location: %s\n", u.Location)
	}
	if u.Bio != "" {
		ctx.Printf("  bio: %s\n", u.Bio)
	}
	return nil
}

// ProfileCmd edits the signed-in user's profile. Omitted flags keep their
// current value.
type ProfileCmd struct {
	Name     *string `help:"New display name."`
	Location *string `help:"New location."`
	Bio      *string `help:"New bio."`
}

func (cmd *ProfileCmd) Run(ctx *cli.Context) error {
	if err := ctx.Resume(); err != nil {
		return err
	}
	u := ctx.Session.User()
	in := models.ProfileUpdate{Name: u.Name, Location: u.Location, Bio: u.Bio}
	if cmd.Name != nil {
		in.Name = *cmd.Name
	}
	if cmd.Location != nil {
		in.Location = *cmd.Location
	}
	if cmd.Bio != nil {
		in.Bio = *cmd.Bio
	}
	if err := ctx.Session.UpdateProfile(ctx.Ctx, in); err != nil {
		return err
	}
	ctx.Println("✓ Profile updated")
	return nil
}

package prefs

import (
	"github.com/julianstephens/coffeematch/internal/cli"
	"github.com/julianstephens/coffeematch/internal/models"
)

type PrefsListCmd struct{}

func (cmd *PrefsListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Resume(); err != nil {
		return err
	}
	list, err := ctx.API.ListPreferences(ctx.Ctx, ctx.Session.UserID())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ctx.Println("No preferences yet.")
		return nil
	}
	for _, p := range list {
		ctx.Printf("#%d %s: %s (confidence %d)\n", p.ID, p.PreferenceType, p.PreferenceValue, p.Confidence)
	}
	return nil
}

type PrefsAddCmd struct {
	Type       string `arg:"" help:"What the preference is about, e.g. venue_type or area."`
	Value      string `arg:"" help:"The preferred value, e.g. coffee."`
	Confidence int    `help:"How strongly you feel, 0-5." default:"1"`
}

func (cmd *PrefsAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Resume(); err != nil {
		return err
	}
	in := models.PreferenceInput{
		UserID:          ctx.Session.UserID(),
		PreferenceType:  cmd.Type,
		PreferenceValue: cmd.Value,
		Confidence:      cmd.Confidence,
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	p, err := ctx.API.CreatePreference(ctx.Ctx, in)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Added preference #%d\n", p.ID)
	return nil
}

type PrefsDeleteCmd struct {
	ID int64 `arg:"" help:"Preference id."`
}

func (cmd *PrefsDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Resume(); err != nil {
		return err
	}
	if err := ctx.API.DeletePreference(ctx.Ctx, ctx.Session.UserID(), cmd.ID); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted preference #%d\n", cmd.ID)
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/coffeematch/internal/cli"
	"github.com/julianstephens/coffeematch/internal/cli/account"
	"github.com/julianstephens/coffeematch/internal/cli/browse"
	"github.com/julianstephens/coffeematch/internal/cli/meetups"
	"github.com/julianstephens/coffeematch/internal/cli/prefs"
	"github.com/julianstephens/coffeematch/internal/cli/slots"
	"github.com/julianstephens/coffeematch/internal/cli/system"
	"github.com/julianstephens/coffeematch/internal/config"
	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/errors"
	"github.com/julianstephens/coffeematch/internal/logger"
	"github.com/julianstephens/coffeematch/internal/utils"
)

var CLI struct {
	Version   kong.VersionFlag
	ConfigDir string `help:"Configuration directory." type:"string" default:"${config_dir}" env:"COFFEEMATCH_CONFIG_DIR"`
	APIURL    string `help:"Backend base URL, e.g. http://localhost:8000/api/v1." name:"api-url" env:"COFFEEMATCH_API_URL"`
	Timezone  string `help:"IANA timezone for displaying and entering times." env:"COFFEEMATCH_TIMEZONE"`
	Days      int    `help:"Number of days offered when adding availability." env:"COFFEEMATCH_DAYS"`
	Debug     bool   `help:"Log debug output to stderr." env:"COFFEEMATCH_DEBUG"`

	Register account.RegisterCmd `cmd:"" help:"Create an account and log in."`
	Login    account.LoginCmd    `cmd:"" help:"Log in with your email."`
	Logout   account.LogoutCmd   `cmd:"" help:"Log out and forget the remembered login."`
	Whoami   account.WhoamiCmd   `cmd:"" help:"Show the logged-in user."`
	Profile  account.ProfileCmd  `cmd:"" help:"Update your profile."`
	Users    browse.UsersCmd     `cmd:"" help:"List everyone in the directory."`
	Venues   struct {
		List browse.VenuesListCmd `cmd:"" help:"List venues." default:"1"`
		Add  browse.VenuesAddCmd  `cmd:"" help:"Suggest a venue."`
	} `cmd:"" help:"Browse and suggest venues."`
	Slots struct {
		List slots.SlotsListCmd `cmd:"" help:"List availability." default:"1"`
		Add  slots.SlotsAddCmd  `cmd:"" help:"Add a 30 minute slot."`
		Days slots.SlotsDaysCmd `cmd:"" help:"Show selectable days and times."`
	} `cmd:"" help:"Manage your availability."`
	Invite     meetups.InviteCmd     `cmd:"" help:"Invite someone to meet."`
	Matches    meetups.MatchesCmd    `cmd:"" help:"Show received and sent invitations."`
	Accept     meetups.AcceptCmd     `cmd:"" help:"Accept an invitation."`
	Reject     meetups.RejectCmd     `cmd:"" help:"Reject an invitation."`
	Reschedule meetups.RescheduleCmd `cmd:"" help:"Propose another time for an invitation."`
	Prefs      struct {
		List   prefs.PrefsListCmd   `cmd:"" help:"List your preferences." default:"1"`
		Add    prefs.PrefsAddCmd    `cmd:"" help:"Add a preference."`
		Delete prefs.PrefsDeleteCmd `cmd:"" help:"Delete a preference."`
	} `cmd:"" help:"Manage meetup preferences."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Init    system.InitCmd    `cmd:"" help:"Write a config file."`
	Serve   system.ServeCmd   `cmd:"" help:"Run the reference backend."`
	Migrate system.MigrateCmd `cmd:"" help:"Run backend database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Backup  system.BackupCmd  `cmd:"" help:"Back up or restore the backend database."`
}

func main() {
	// .env feeds the env-bound flags below.
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Find a time and a place to meet for coffee"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":    constants.Version,
			"config_dir": constants.DefaultConfigDir,
		},
	)

	cfg, err := config.Load(CLI.ConfigDir, config.Overrides{
		APIURL:        CLI.APIURL,
		Timezone:      CLI.Timezone,
		DateRangeDays: CLI.Days,
		Debug:         CLI.Debug,
	})
	if err != nil {
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: utils.ExpandPath(CLI.ConfigDir),
		Console:   kctx.Command() == "serve",
		FileOnly:  kctx.Command() == "tui",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	appCtx, err := cli.New(context.Background(), cfg, CLI.ConfigDir, nil)
	if err != nil {
		errors.Fatal(err)
	}

	if err := kctx.Run(appCtx); err != nil {
		errors.Fatal(err)
	}
}

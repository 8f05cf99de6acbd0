package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/coffeematch/internal/backup"
	"github.com/julianstephens/coffeematch/internal/cli"
	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/keyring"
	"github.com/julianstephens/coffeematch/internal/logger"
	"github.com/julianstephens/coffeematch/internal/storage"
)

type DoctorCmd struct {
	Database string `help:"Also check a backend database (SQLite path or postgres:// URL)."`
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	check := func(name string, err error) bool {
		if err != nil {
			ctx.Printf("❌ %s: FAIL\n", name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			return false
		}
		ctx.Printf("✓ %s: OK\n", name)
		return true
	}

	// Check 1: Config
	check("Configuration", ctx.Config.Validate())

	// Check 2: Backend reachable
	apiOK := check("Backend reachable", checkBackend(ctx))

	// Check 3: Keyring (warning only)
	if !keyring.IsAvailable() {
		ctx.Printf("⚠ OS keyring: WARNING\n")
		ctx.Printf("   %v; logins will not be remembered\n", keyring.ErrKeyringUnavailable)
	} else {
		ctx.Printf("✓ OS keyring: OK\n")
	}

	// Check 4: Remembered login (only if backend is reachable)
	if apiOK {
		if err := ctx.Resume(); err != nil {
			ctx.Printf("⚠ Remembered login: WARNING\n")
			ctx.Printf("   %v\n", err)
		} else {
			ctx.Printf("✓ Remembered login: OK (%s)\n", ctx.Session.User().Email)
		}
	} else {
		ctx.Printf("⊘ Remembered login: SKIPPED (backend not reachable)\n")
	}

	// Check 5: Backend schema and snapshots
	if cmd.Database != "" {
		check("Database schema", checkSchema(ctx.Ctx, cmd.Database))
		reportBackups(ctx, cmd.Database)
	}

	// Check 6: Clock/timezone sanity
	check("Clock/timezone", checkClockTimezone(ctx))

	if path := logger.Path(); path != "" {
		ctx.Printf("   Log file: %s\n", path)
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkBackend(ctx *cli.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx.Ctx, 5*time.Second)
	defer cancel()
	status, err := ctx.API.Health(reqCtx)
	if err != nil {
		return fmt.Errorf("%s: %w", ctx.Config.APIURL, err)
	}
	if status != "ok" {
		return fmt.Errorf("backend reported status %q", status)
	}
	return nil
}

func checkSchema(ctx context.Context, dsn string) error {
	store, err := storage.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}

	current, latest, err := store.SchemaStatus(ctx)
	if err != nil {
		return err
	}
	switch {
	case current > latest:
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	case current < latest:
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

// reportBackups is informational; postgres databases are skipped.
func reportBackups(ctx *cli.Context, dsn string) {
	mgr, err := backup.NewManager(dsn)
	if err != nil {
		return
	}
	list, err := mgr.List()
	switch {
	case err != nil:
		ctx.Printf("⚠ Backups: WARNING\n")
		ctx.Printf("   %v\n", err)
	case len(list) == 0:
		ctx.Printf("⚠ Backups: none yet (run coffeematch backup)\n")
	default:
		ctx.Printf("✓ Backups: %d (newest %s)\n", len(list), list[0].Taken.Format(constants.DisplayDateTimeFormat))
	}
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Location() == time.UTC {
		ctx.Printf("   Note: timezone is UTC\n")
	}
	return nil
}

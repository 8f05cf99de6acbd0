package system

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/coffeematch/internal/cli"
	"github.com/julianstephens/coffeematch/internal/server"
	"github.com/julianstephens/coffeematch/internal/storage"
)

// ServeCmd runs the reference backend.
type ServeCmd struct {
	Addr      string  `help:"Listen address." env:"COFFEEMATCH_ADDR"`
	Database  string  `help:"SQLite path or postgres:// URL." env:"COFFEEMATCH_DATABASE"`
	RateLimit float64 `help:"Requests per second allowed per client (0 uses the config value)."`
	NoLimit   bool    `help:"Disable per-client rate limiting."`
}

func (cmd *ServeCmd) Run(ctx *cli.Context) error {
	cfg := ctx.Config.Server
	if cmd.Addr != "" {
		cfg.Addr = cmd.Addr
	}
	if cmd.Database != "" {
		cfg.Database = cmd.Database
	}
	if cmd.RateLimit > 0 {
		cfg.RateLimit = cmd.RateLimit
	}

	sigCtx, stop := signal.NotifyContext(ctx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(sigCtx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	applied, err := store.Migrate(sigCtx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if applied > 0 {
		ctx.Printf("Applied %d migration(s).\n", applied)
	}

	log := server.NewLogger(cfg.LogLevel, nil)
	opts := server.Options{Logger: &log}
	if !cmd.NoLimit {
		opts.RateLimit = cfg.RateLimit
		opts.RateBurst = cfg.RateBurst
	}
	return server.New(store, opts).ListenAndServe(sigCtx, cfg.Addr)
}

// MigrateCmd applies pending migrations to the backend database.
type MigrateCmd struct {
	Database string `help:"SQLite path or postgres:// URL." env:"COFFEEMATCH_DATABASE"`
	Backup   bool   `help:"Snapshot a SQLite database before migrating."`
}

func (cmd *MigrateCmd) Run(ctx *cli.Context) error {
	dsn := ctx.Config.Server.Database
	if cmd.Database != "" {
		dsn = cmd.Database
	}
	if cmd.Backup {
		if err := backupBeforeMigrate(ctx, dsn); err != nil {
			return fmt.Errorf("pre-migration backup failed: %w", err)
		}
	}

	store, err := storage.Open(ctx.Ctx, dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := store.Migrate(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("Successfully applied %d migration(s).\n", count)
	}
	return nil
}

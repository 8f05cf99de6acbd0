package system

import (
	"os"
	"path/filepath"

	"github.com/julianstephens/coffeematch/internal/backup"
	"github.com/julianstephens/coffeematch/internal/cli"
	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/utils"
)

// BackupCmd manages snapshots of the backend's SQLite database.
type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" default:"1" help:"Snapshot the backend database."`
	List    BackupListCmd    `cmd:"" help:"List database snapshots."`
	Restore BackupRestoreCmd `cmd:"" help:"Restore the backend database from a snapshot."`
}

type BackupCreateCmd struct {
	Database string `help:"SQLite database path." env:"COFFEEMATCH_DATABASE"`
}

func (cmd *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx, cmd.Database)
	if err != nil {
		return err
	}
	info, err := mgr.Create(ctx.Ctx)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Backed up to %s (%d bytes)\n", info.Path, info.Size)
	return nil
}

type BackupListCmd struct {
	Database string `help:"SQLite database path." env:"COFFEEMATCH_DATABASE"`
}

func (cmd *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx, cmd.Database)
	if err != nil {
		return err
	}
	list, err := mgr.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ctx.Printf("No backups in %s.\n", mgr.Dir())
		return nil
	}
	ctx.Printf("Backups in %s:\n", mgr.Dir())
	for _, b := range list {
		ctx.Printf("  %s  %s  %d bytes\n", filepath.Base(b.Path), b.Taken.Format(constants.DisplayDateTimeFormat), b.Size)
	}
	return nil
}

type BackupRestoreCmd struct {
	Database string `help:"SQLite database path." env:"COFFEEMATCH_DATABASE"`
	Path     string `arg:"" optional:"" help:"Snapshot to restore (defaults to the newest)."`
}

func (cmd *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx, cmd.Database)
	if err != nil {
		return err
	}

	path := cmd.Path
	if path == "" {
		list, err := mgr.List()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			ctx.Printf("No backups in %s.\n", mgr.Dir())
			return nil
		}
		path = list[0].Path
	} else if filepath.Base(path) == path {
		path = filepath.Join(mgr.Dir(), path)
	}

	previous, err := mgr.Restore(ctx.Ctx, path)
	if previous != nil {
		ctx.Printf("Saved the current database as %s\n", filepath.Base(previous.Path))
	}
	if err != nil {
		return err
	}
	ctx.Printf("✓ Restored %s\n", filepath.Base(path))
	return nil
}

func manager(ctx *cli.Context, database string) (*backup.Manager, error) {
	if database == "" {
		database = ctx.Config.Server.Database
	}
	return backup.NewManager(database)
}

// backupBeforeMigrate snapshots an existing SQLite database. Postgres and
// missing databases are skipped.
func backupBeforeMigrate(ctx *cli.Context, dsn string) error {
	mgr, err := backup.NewManager(dsn)
	if err != nil {
		return nil
	}
	if _, err := os.Stat(utils.ExpandPath(dsn)); err != nil {
		return nil
	}
	info, err := mgr.Create(ctx.Ctx)
	if err != nil {
		return err
	}
	ctx.Printf("Backed up database to %s\n", info.Path)
	return nil
}

// Package backup snapshots the reference backend's SQLite database next to
// the database file and restores from those snapshots.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/coffeematch/internal/errors"
	"github.com/julianstephens/coffeematch/internal/logger"
	"github.com/julianstephens/coffeematch/internal/storage"
	"github.com/julianstephens/coffeematch/internal/utils"
)

const (
	// Keep is how many snapshots survive rotation.
	Keep    = 10
	DirName = "backups"

	filePrefix  = "coffeematch-"
	fileSuffix  = ".db"
	stampLayout = "20060102-150405"
)

var snapshotName = regexp.MustCompile(`^coffeematch-(\d{8}-\d{6})(?:-(\d+))?\.db$`)

// ErrUnsupported is returned for postgres databases, which are backed up
// with their own tooling.
var ErrUnsupported = errors.Validation("Backups are only supported for SQLite databases; use pg_dump for postgres.")

type Info struct {
	Path  string
	Taken time.Time
	Size  int64
}

type Manager struct {
	dbPath string
	dir    string
	now    func() time.Time
}

func NewManager(dsn string) (*Manager, error) {
	if storage.IsPostgresDSN(dsn) {
		return nil, ErrUnsupported
	}
	if dsn == ":memory:" {
		return nil, errors.Validation("An in-memory database cannot be backed up.")
	}
	path := utils.ExpandPath(dsn)
	return &Manager{
		dbPath: path,
		dir:    filepath.Join(filepath.Dir(path), DirName),
		now:    time.Now,
	}, nil
}

func (m *Manager) Dir() string {
	return m.dir
}

// Create writes a new snapshot and prunes the oldest beyond Keep.
func (m *Manager) Create(ctx context.Context) (Info, error) {
	info, err := m.snapshot(ctx)
	if err != nil {
		return Info{}, err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate old backups", "dir", m.dir, "error", err)
	}
	return info, nil
}

func (m *Manager) snapshot(ctx context.Context) (Info, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		if os.IsNotExist(err) {
			return Info{}, errors.Validationf("Database does not exist: %s", m.dbPath)
		}
		return Info{}, err
	}
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	taken := m.now()
	stamp := taken.Format(stampLayout)
	path := filepath.Join(m.dir, filePrefix+stamp+fileSuffix)
	for n := 1; exists(path); n++ {
		if n > 100 {
			return Info{}, fmt.Errorf("failed to pick a unique backup name for %s", stamp)
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s%s-%d%s", filePrefix, stamp, n, fileSuffix))
	}

	if err := vacuumInto(ctx, m.dbPath, path); err != nil {
		logger.Debug("VACUUM INTO failed, copying file", "error", err)
		if err := copyFile(m.dbPath, path); err != nil {
			return Info{}, fmt.Errorf("failed to back up database: %w", err)
		}
	}

	st, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	logger.Info("Database backed up", "path", path, "bytes", st.Size())
	return Info{Path: path, Taken: taken, Size: st.Size()}, nil
}

func vacuumInto(ctx context.Context, src, dst string) error {
	db, err := sql.Open("sqlite", "file:"+src+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	if err := check(ctx, db); err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, "VACUUM INTO ?", dst)
	return err
}

// List returns the snapshots newest first. Files that do not look like
// snapshots are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	type entry struct {
		Info
		seq int
	}
	var found []entry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match := snapshotName.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		taken, err := time.ParseInLocation(stampLayout, match[1], time.Local)
		if err != nil {
			continue
		}
		seq := 0
		if match[2] != "" {
			seq, _ = strconv.Atoi(match[2])
		}
		st, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, entry{Info{Path: filepath.Join(m.dir, e.Name()), Taken: taken, Size: st.Size()}, seq})
	}

	slices.SortFunc(found, func(a, b entry) int {
		if c := b.Taken.Compare(a.Taken); c != 0 {
			return c
		}
		return b.seq - a.seq
	})

	out := make([]Info, len(found))
	for i, e := range found {
		out[i] = e.Info
	}
	return out, nil
}

func (m *Manager) rotate() error {
	all, err := m.List()
	if err != nil {
		return err
	}
	for _, old := range all[min(len(all), Keep):] {
		if err := os.Remove(old.Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", old.Path, err)
		}
	}
	return nil
}

// Restore replaces the database with the snapshot at path. The current
// database is snapshotted first and that snapshot is returned; it is exempt
// from rotation until the next Create.
func (m *Manager) Restore(ctx context.Context, path string) (*Info, error) {
	if !exists(path) {
		return nil, errors.Validationf("Backup file does not exist: %s", path)
	}
	if err := Verify(ctx, path); err != nil {
		return nil, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var previous *Info
	if exists(m.dbPath) {
		info, err := m.snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to back up current database before restore: %w", err)
		}
		previous = &info
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return previous, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tmp, "error", rmErr)
		}
		return previous, fmt.Errorf("failed to restore database: %w", err)
	}
	logger.Info("Database restored", "from", path)
	return previous, nil
}

// Verify checks that path opens as a SQLite database.
func Verify(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return check(ctx, db)
}

func check(ctx context.Context, db *sql.DB) error {
	var n int
	return db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&n)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}

package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/momentum/internal/backup"
	"github.com/julianstephens/momentum/internal/config"
	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/keyring"
	"github.com/julianstephens/momentum/internal/lockfile"
	"github.com/julianstephens/momentum/internal/logger"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/storage"
	"github.com/julianstephens/momentum/internal/storage/postgres"
	"github.com/julianstephens/momentum/internal/storage/sqlite"
	"github.com/julianstephens/momentum/internal/tracker"
)

type Context struct {
	Config  *config.Config
	Store   storage.Provider
	Tracker *tracker.Tracker
	Lock    *lockfile.Lock
	Now     func() time.Time
}

// NewContext opens the store named by cfg.Database without loading it.
// A database value of "keyring" is swapped for the stored connection string.
func NewContext(cfg *config.Config) (*Context, error) {
	target, err := keyring.Resolve(cfg.Database)
	if err != nil {
		return nil, err
	}
	store, err := OpenStore(target)
	if err != nil {
		return nil, err
	}

	ctx := &Context{Config: cfg, Store: store, Now: time.Now}
	opts := []tracker.Option{tracker.WithClock(func() time.Time { return ctx.Now() })}
	if _, ok := store.(*sqlite.Store); ok && cfg.CrossProcessLock {
		ctx.Lock = lockfile.New(filepath.Dir(store.GetConfigPath()))
		opts = append(opts, tracker.WithLocker(ctx.Lock))
	}
	ctx.Tracker = tracker.New(store, opts...)
	return ctx, nil
}

// OpenStore picks the backend for target: PostgreSQL for connection strings,
// SQLite for anything else.
func OpenStore(target string) (storage.Provider, error) {
	if postgres.IsConnString(target) {
		if err := postgres.ValidateConnString(target); err != nil {
			return nil, err
		}
		return postgres.New(target), nil
	}
	return sqlite.NewStore(config.ExpandPath(target)), nil
}

// IsSQLite reports whether the context is backed by a local database file.
func (c *Context) IsSQLite() bool {
	_, ok := c.Store.(*sqlite.Store)
	return ok
}

// BackupManager returns the backup manager for the SQLite database.
func (c *Context) BackupManager() *backup.Manager {
	maxBackups := constants.MaxBackups
	if c.Config != nil && c.Config.MaxBackups > 0 {
		maxBackups = c.Config.MaxBackups
	}
	return backup.NewManager(c.Store.GetConfigPath(), backup.WithMaxBackups(maxBackups))
}

// PerformAutomaticBackup creates a backup when enabled and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !c.IsSQLite() || c.Config == nil || !c.Config.AutoBackup {
		return
	}
	if _, err := c.BackupManager().Create(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// FindHabit resolves a habit by name, falling back to an id lookup.
func (c *Context) FindHabit(nameOrID string) (models.Habit, error) {
	h, err := c.Store.GetHabitByName(nameOrID)
	if err == nil {
		return h, nil
	}
	if h, idErr := c.Store.GetHabit(nameOrID); idErr == nil {
		return h, nil
	}
	return models.Habit{}, fmt.Errorf("habit %q: %w", nameOrID, err)
}

// FindCategory resolves a category by name, falling back to an id lookup.
func (c *Context) FindCategory(nameOrID string) (models.Category, error) {
	cat, err := c.Store.GetCategoryByName(nameOrID)
	if err == nil {
		return cat, nil
	}
	if cat, idErr := c.Store.GetCategory(nameOrID); idErr == nil {
		return cat, nil
	}
	return models.Category{}, fmt.Errorf("category %q: %w", nameOrID, err)
}

// ParseWhen parses a user-entered date or date-time in local time.
// An empty string means now.
func (c *Context) ParseWhen(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return c.Now(), nil
	}
	for _, layout := range []string{constants.DateTimeFormat, constants.DateFormat} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			if layout == constants.DateFormat {
				// keep the current time of day so same-day entries stay ordered
				now := c.Now()
				t = time.Date(t.Year(), t.Month(), t.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.Local)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD or \"YYYY-MM-DD HH:MM\")", s)
}

// ParseDate parses an optional YYYY-MM-DD bound.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(constants.DateFormat, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	return &t, nil
}

// EndOfDay moves t to the last instant of its date so inclusive end bounds
// cover the whole day.
func EndOfDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
	return &end
}

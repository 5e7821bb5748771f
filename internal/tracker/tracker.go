// Package tracker records completions and keeps each habit's cached streak
// consistent with its ledger.
//
// All writes go through a single critical section per Tracker: the
// duplicate-period check, the append and the streak recompute never
// interleave with another write from the same process. A Locker extends the
// section across processes sharing one database file.
package tracker

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/momentum/internal/analytics"
	apperrors "github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/lifecycle"
	"github.com/julianstephens/momentum/internal/logger"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/period"
	"github.com/julianstephens/momentum/internal/streak"
)

// Store is the slice of storage the tracker reads and writes.
// Lookups of unknown ids must return an error wrapping errors.ErrNotFound.
type Store interface {
	GetHabit(id string) (models.Habit, error)
	SaveHabit(models.Habit) error
	ListCompletions(habitID string) ([]models.Completion, error)
	AppendCompletion(models.Completion) error
	GetGoal(id string) (models.Goal, error)
}

// Locker is an advisory lock shared with other processes.
type Locker interface {
	Lock() error
	Unlock() error
}

// Tracker is the analytics core's write path.
type Tracker struct {
	store  Store
	locker Locker
	now    func() time.Time

	mu sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source used for reactivation epochs and
// default rate reference dates.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLocker holds l for the duration of every write.
func WithLocker(l Locker) Option {
	return func(t *Tracker) { t.locker = l }
}

// New returns a Tracker backed by store.
func New(store Store, opts ...Option) *Tracker {
	t := &Tracker{store: store, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) acquire() (func(), error) {
	t.mu.Lock()
	if t.locker == nil {
		return t.mu.Unlock, nil
	}
	if err := t.locker.Lock(); err != nil {
		t.mu.Unlock()
		return nil, fmt.Errorf("failed to acquire database lock: %w", err)
	}
	return func() {
		if err := t.locker.Unlock(); err != nil {
			logger.Warn("Failed to release database lock", "error", err)
		}
		t.mu.Unlock()
	}, nil
}

// RecordCompletion appends a completion at ts unless the habit already has
// one in the same period of its current epoch.
func (t *Tracker) RecordCompletion(habitID string, ts time.Time) error {
	release, err := t.acquire()
	if err != nil {
		return err
	}
	defer release()

	_, err = t.record(habitID, ts)
	return err
}

func (t *Tracker) record(habitID string, ts time.Time) (models.Habit, error) {
	h, err := t.store.GetHabit(habitID)
	if err != nil {
		return models.Habit{}, err
	}
	completions, err := t.store.ListCompletions(habitID)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to load completions: %w", err)
	}

	for _, prev := range streak.Since(models.Timestamps(completions), h.EpochStart()) {
		if period.SameKey(h.Frequency, prev, ts) {
			logger.Info("Rejected duplicate completion", "habit", h.ID, "frequency", h.Frequency, "at", ts)
			return h, fmt.Errorf("%s habit %q on %s: %w", h.Frequency, h.Name, ts.Format("2006-01-02"), apperrors.ErrDuplicatePeriod)
		}
	}

	c := models.Completion{
		ID:          uuid.New().String(),
		HabitID:     h.ID,
		CompletedAt: ts,
	}
	if err := t.store.AppendCompletion(c); err != nil {
		return h, fmt.Errorf("failed to save completion: %w", err)
	}
	logger.Debug("Recorded completion", "habit", h.ID, "completion", c.ID, "at", ts)
	return h, nil
}

// RecomputeStreak rebuilds the habit's cached streak and last completion
// from its ledger.
func (t *Tracker) RecomputeStreak(habitID string) error {
	release, err := t.acquire()
	if err != nil {
		return err
	}
	defer release()

	h, err := t.store.GetHabit(habitID)
	if err != nil {
		return err
	}
	_, err = t.recompute(h)
	return err
}

func (t *Tracker) recompute(h models.Habit) (models.Habit, error) {
	completions, err := t.store.ListCompletions(h.ID)
	if err != nil {
		return h, fmt.Errorf("failed to load completions: %w", err)
	}

	res := streak.Recompute(h, models.Timestamps(completions))
	h.Streak = res.Streak
	h.LastCompleted = res.LastCompleted
	if err := t.store.SaveHabit(h); err != nil {
		return h, fmt.Errorf("failed to save streak: %w", err)
	}
	logger.Debug("Recomputed streak", "habit", h.ID, "streak", h.Streak)
	return h, nil
}

// UpdateHabit saves the editable fields of h (name, notes, category and
// cadence) over the stored habit. A cadence change recomputes the streak in
// the same critical section.
func (t *Tracker) UpdateHabit(h models.Habit) (models.Habit, error) {
	release, err := t.acquire()
	if err != nil {
		return models.Habit{}, err
	}
	defer release()

	stored, err := t.store.GetHabit(h.ID)
	if err != nil {
		return models.Habit{}, err
	}
	cadenceChanged := stored.Frequency != h.Frequency
	stored.Name = h.Name
	stored.Notes = h.Notes
	stored.CategoryID = h.CategoryID
	stored.Frequency = h.Frequency

	if cadenceChanged {
		return t.recompute(stored)
	}
	if err := t.store.SaveHabit(stored); err != nil {
		return stored, fmt.Errorf("failed to update habit: %w", err)
	}
	logger.Debug("Updated habit", "habit", stored.ID)
	return stored, nil
}

// Complete records a completion and refreshes the streak in one critical
// section, returning the updated habit.
func (t *Tracker) Complete(habitID string, ts time.Time) (models.Habit, error) {
	release, err := t.acquire()
	if err != nil {
		return models.Habit{}, err
	}
	defer release()

	h, err := t.record(habitID, ts)
	if err != nil {
		return h, err
	}
	return t.recompute(h)
}

// LongestStreak returns the longest run over the habit's whole ledger,
// including completions from before a reactivation.
func (t *Tracker) LongestStreak(habitID string) (int, error) {
	h, ts, err := t.load(habitID)
	if err != nil {
		return 0, err
	}
	return streak.Longest(h.Frequency, ts), nil
}

// CompletionRate returns the trailing-window rate at ref, or now when ref is
// nil. The whole ledger counts, not only the current epoch.
func (t *Tracker) CompletionRate(habitID string, ref *time.Time) (float64, error) {
	h, ts, err := t.load(habitID)
	if err != nil {
		return 0, err
	}
	at := t.now()
	if ref != nil {
		at = *ref
	}
	return analytics.CompletionRate(ts, h.Frequency, at), nil
}

// GoalProgress evaluates a goal against its habit's ledger.
func (t *Tracker) GoalProgress(goalID string) (analytics.Progress, error) {
	g, err := t.store.GetGoal(goalID)
	if err != nil {
		return analytics.Progress{}, err
	}
	h, ts, err := t.load(g.HabitID)
	if err != nil {
		return analytics.Progress{}, err
	}
	return analytics.EvaluateGoal(g, h.Frequency, ts), nil
}

func (t *Tracker) load(habitID string) (models.Habit, []time.Time, error) {
	h, err := t.store.GetHabit(habitID)
	if err != nil {
		return models.Habit{}, nil, err
	}
	completions, err := t.store.ListCompletions(habitID)
	if err != nil {
		return h, nil, fmt.Errorf("failed to load completions: %w", err)
	}
	return h, models.Timestamps(completions), nil
}

// SoftDelete marks the habit inactive. Its streak and ledger are kept.
func (t *Tracker) SoftDelete(habitID string) error {
	release, err := t.acquire()
	if err != nil {
		return err
	}
	defer release()

	h, err := t.store.GetHabit(habitID)
	if err != nil {
		return err
	}
	h, err = lifecycle.Apply(h, lifecycle.EventDelete)
	if err != nil {
		return err
	}
	if err := t.store.SaveHabit(h); err != nil {
		return fmt.Errorf("failed to deactivate habit: %w", err)
	}
	logger.Debug("Habit deactivated", "habit", h.ID)
	return nil
}

// Reactivate returns an inactive habit to active and starts a new epoch:
// the streak resets to 0 and completions before now no longer count toward
// it or toward duplicate checks.
func (t *Tracker) Reactivate(habitID string) error {
	release, err := t.acquire()
	if err != nil {
		return err
	}
	defer release()

	h, err := t.store.GetHabit(habitID)
	if err != nil {
		return err
	}
	h, err = lifecycle.Apply(h, lifecycle.EventReactivate)
	if err != nil {
		return err
	}

	now := t.now()
	h.Streak = 0
	h.ReactivatedAt = &now
	if err := t.store.SaveHabit(h); err != nil {
		return fmt.Errorf("failed to reactivate habit: %w", err)
	}
	logger.Debug("Habit reactivated", "habit", h.ID, "epoch", now)
	return nil
}

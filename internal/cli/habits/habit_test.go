package habits

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/config"
	apperrors "github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/storage/sqlite"
	"github.com/julianstephens/momentum/internal/tracker"
)

func setupTestContext(t *testing.T, now time.Time) *cli.Context {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clock := func() time.Time { return now }
	return &cli.Context{
		Config:  &config.Config{Database: dbPath, MaxBackups: 3},
		Store:   store,
		Tracker: tracker.New(store, tracker.WithClock(clock)),
		Now:     clock,
	}
}

func TestAddHabit(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	ctx := setupTestContext(t, now)

	h, err := AddHabit(ctx, "  Read  ", models.FrequencyDaily, "20 pages", "")
	if err != nil {
		t.Fatalf("AddHabit() failed: %v", err)
	}
	if h.Name != "Read" {
		t.Errorf("expected trimmed name, got %q", h.Name)
	}
	if !h.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", h.CreatedAt, now)
	}
	if h.State != models.StateActive {
		t.Errorf("expected new habit to be active, got %s", h.State)
	}

	if _, err := AddHabit(ctx, "READ", models.FrequencyWeekly, "", ""); err == nil {
		t.Error("expected duplicate name to be rejected")
	}
	if _, err := AddHabit(ctx, "", models.FrequencyDaily, "", ""); err == nil {
		t.Error("expected empty name to be rejected")
	}
	if _, err := AddHabit(ctx, "Run", models.Frequency("monthly"), "", ""); err == nil {
		t.Error("expected unsupported frequency to be rejected")
	}
	if _, err := AddHabit(ctx, "Run", models.FrequencyDaily, "", "missing"); err == nil {
		t.Error("expected unknown category to be rejected")
	}
}

func TestAddHabitReusesDeletedName(t *testing.T) {
	ctx := setupTestContext(t, time.Now())

	h, err := AddHabit(ctx, "Stretch", models.FrequencyDaily, "", "")
	if err != nil {
		t.Fatalf("AddHabit() failed: %v", err)
	}
	if err := ctx.Tracker.SoftDelete(h.ID); err != nil {
		t.Fatalf("SoftDelete() failed: %v", err)
	}
	if _, err := AddHabit(ctx, "Stretch", models.FrequencyDaily, "", ""); err != nil {
		t.Errorf("expected name of a deleted habit to be reusable, got %v", err)
	}
}

func TestComplete(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	ctx := setupTestContext(t, now)

	h, err := AddHabit(ctx, "Meditate", models.FrequencyDaily, "", "")
	if err != nil {
		t.Fatalf("AddHabit() failed: %v", err)
	}

	msg, err := Complete(ctx, h, now.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	if !strings.Contains(msg, "Meditate completed") {
		t.Errorf("unexpected message: %q", msg)
	}

	msg, err = Complete(ctx, h, now)
	if err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	if !strings.Contains(msg, "2 days in a row") {
		t.Errorf("expected streak message, got %q", msg)
	}

	msg, err = Complete(ctx, h, now.Add(2*time.Hour))
	if !errors.Is(err, apperrors.ErrDuplicatePeriod) {
		t.Fatalf("expected ErrDuplicatePeriod, got %v", err)
	}
	if msg != "Meditate is already completed today." {
		t.Errorf("unexpected duplicate message: %q", msg)
	}

	msg, _ = Complete(ctx, h, now.AddDate(0, 0, -1).Add(time.Hour))
	if msg != "Meditate is already completed for 2025-03-09." {
		t.Errorf("unexpected backdated duplicate message: %q", msg)
	}

	got, err := ctx.Store.GetHabit(h.ID)
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if got.Streak != 2 {
		t.Errorf("expected streak 2, got %d", got.Streak)
	}
}

func TestCompleteWeeklyDuplicateMessage(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	ctx := setupTestContext(t, now)

	h, err := AddHabit(ctx, "Long run", models.FrequencyWeekly, "", "")
	if err != nil {
		t.Fatalf("AddHabit() failed: %v", err)
	}
	if _, err := Complete(ctx, h, now); err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	msg, err := Complete(ctx, h, now)
	if !errors.Is(err, apperrors.ErrDuplicatePeriod) {
		t.Fatalf("expected ErrDuplicatePeriod, got %v", err)
	}
	if msg != "Long run is already completed this week." {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestUpdateHabitCadenceRecomputesStreak(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	ctx := setupTestContext(t, now)

	h, err := AddHabit(ctx, "Journal", models.FrequencyDaily, "", "")
	if err != nil {
		t.Fatalf("AddHabit() failed: %v", err)
	}
	// Mar 9 to Mar 12: four days, all in the week of Mar 9
	for d := 9; d <= 12; d++ {
		if _, err := ctx.Tracker.Complete(h.ID, time.Date(2025, 3, d, 8, 0, 0, 0, time.UTC)); err != nil {
			t.Fatalf("Complete() failed: %v", err)
		}
	}

	h, err = ctx.Store.GetHabit(h.ID)
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if h.Streak != 4 {
		t.Fatalf("expected daily streak 4, got %d", h.Streak)
	}

	updated, err := UpdateHabit(ctx, h, "", models.FrequencyWeekly, "", "")
	if err != nil {
		t.Fatalf("UpdateHabit() failed: %v", err)
	}
	if updated.Frequency != models.FrequencyWeekly {
		t.Errorf("expected weekly cadence, got %s", updated.Frequency)
	}
	if updated.Streak != 1 {
		t.Errorf("expected weekly streak 1, got %d", updated.Streak)
	}
}

func TestUpdateHabitRenameConflict(t *testing.T) {
	ctx := setupTestContext(t, time.Now())

	if _, err := AddHabit(ctx, "Read", models.FrequencyDaily, "", ""); err != nil {
		t.Fatalf("AddHabit() failed: %v", err)
	}
	h, err := AddHabit(ctx, "Write", models.FrequencyDaily, "", "")
	if err != nil {
		t.Fatalf("AddHabit() failed: %v", err)
	}

	if _, err := UpdateHabit(ctx, h, "read", "", "", ""); err == nil {
		t.Error("expected rename onto an existing habit to fail")
	}
	renamed, err := UpdateHabit(ctx, h, "write", "", "new notes", "")
	if err != nil {
		t.Fatalf("case-only rename failed: %v", err)
	}
	if renamed.Name != "write" || renamed.Notes != "new notes" {
		t.Errorf("unexpected habit after update: %+v", renamed)
	}
}

func TestDeleteAndReactivateCommands(t *testing.T) {
	ctx := setupTestContext(t, time.Now())

	h, err := AddHabit(ctx, "Floss", models.FrequencyDaily, "", "")
	if err != nil {
		t.Fatalf("AddHabit() failed: %v", err)
	}

	if err := (&HabitReactivateCmd{Name: h.ID}).Run(ctx); err == nil {
		t.Error("expected reactivating an active habit to fail")
	}
	if err := (&HabitDeleteCmd{Name: h.ID}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := (&HabitDeleteCmd{Name: h.ID}).Run(ctx); err == nil {
		t.Error("expected deleting an inactive habit to fail")
	}
	if err := (&HabitReactivateCmd{Name: h.ID}).Run(ctx); err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}

	got, err := ctx.Store.GetHabit(h.ID)
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if !got.IsActive() || got.ReactivatedAt == nil {
		t.Errorf("expected active habit with an epoch, got %+v", got)
	}
}

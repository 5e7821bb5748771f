package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/momentum/internal/constants"
	apperrors "github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/storage"
	"github.com/julianstephens/momentum/internal/tracker"
)

var _ storage.Provider = (*Store)(nil)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "momentum.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func addHabit(t *testing.T, s *Store, id, name string, freq models.Frequency) models.Habit {
	t.Helper()
	h := models.Habit{
		ID:        id,
		Name:      name,
		Frequency: freq,
		State:     models.StateActive,
		CreatedAt: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
	}
	if err := s.AddHabit(h); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	return h
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Fatal("expected Load to fail before Init")
	}
}

func TestInitIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "momentum.db")
	for i := 0; i < 2; i++ {
		store := NewStore(path)
		if err := store.Init(); err != nil {
			t.Fatalf("Init #%d failed: %v", i+1, err)
		}
		store.Close()
	}

	store := NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer store.Close()

	st, err := store.SchemaStatus()
	if err != nil {
		t.Fatalf("SchemaStatus failed: %v", err)
	}
	if !st.UpToDate() {
		t.Errorf("expected schema up to date, got %+v", st)
	}
}

func TestBusyTimeoutOnEveryConnection(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// hold several connections at once so the pool has to open new ones
	var conns []*sql.Conn
	for i := 0; i < 4; i++ {
		c, err := store.db.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn %d failed: %v", i, err)
		}
		conns = append(conns, c)
	}
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	want := constants.SQLiteBusyTimeout.Milliseconds()
	for i, c := range conns {
		var got int64
		if err := c.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&got); err != nil {
			t.Fatalf("conn %d: PRAGMA busy_timeout failed: %v", i, err)
		}
		if got != want {
			t.Errorf("conn %d: busy_timeout = %d, want %d", i, got, want)
		}
	}
}

func TestDSN(t *testing.T) {
	if got := DSN("/tmp/m.db"); got != "/tmp/m.db?_pragma=busy_timeout(5000)" {
		t.Errorf("DSN() = %q", got)
	}
	if got := DSN("/tmp/m.db", "mode=ro"); got != "/tmp/m.db?_pragma=busy_timeout(5000)&mode=ro" {
		t.Errorf("DSN(mode=ro) = %q", got)
	}
}

func TestHabitRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	loc := time.FixedZone("UTC-5", -5*60*60)
	last := time.Date(2025, 3, 4, 23, 15, 0, 0, loc)
	cat := "cat-1"
	h := models.Habit{
		ID:            "h1",
		Name:          "Meditate",
		Frequency:     models.FrequencyDaily,
		Notes:         "ten minutes",
		Streak:        4,
		CreatedAt:     time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
		LastCompleted: &last,
		State:         models.StateActive,
		CategoryID:    &cat,
	}
	if err := store.AddHabit(h); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	got, err := store.GetHabit("h1")
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if got.Name != h.Name || got.Frequency != h.Frequency || got.Notes != h.Notes || got.Streak != 4 {
		t.Errorf("unexpected habit: %+v", got)
	}
	if got.LastCompleted == nil || !got.LastCompleted.Equal(last) {
		t.Errorf("expected last completed %v, got %v", last, got.LastCompleted)
	}
	// the recorded wall-clock date must survive storage
	if got.LastCompleted.Day() != 4 {
		t.Errorf("expected wall-clock day 4, got %d", got.LastCompleted.Day())
	}
	if got.CategoryID == nil || *got.CategoryID != cat {
		t.Errorf("expected category %s, got %v", cat, got.CategoryID)
	}
	if !got.IsActive() || got.ReactivatedAt != nil {
		t.Errorf("unexpected lifecycle fields: %+v", got)
	}

	byName, err := store.GetHabitByName("meditate")
	if err != nil {
		t.Fatalf("GetHabitByName failed: %v", err)
	}
	if byName.ID != "h1" {
		t.Errorf("expected h1, got %s", byName.ID)
	}
}

func TestSaveHabit(t *testing.T) {
	store := setupTestStore(t)
	h := addHabit(t, store, "h1", "Read", models.FrequencyWeekly)

	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	h.State = models.StateInactive
	h.Streak = 0
	h.ReactivatedAt = &now
	if err := store.SaveHabit(h); err != nil {
		t.Fatalf("SaveHabit failed: %v", err)
	}

	got, err := store.GetHabit("h1")
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if got.IsActive() {
		t.Error("expected inactive habit")
	}
	if got.ReactivatedAt == nil || !got.ReactivatedAt.Equal(now) {
		t.Errorf("expected reactivated_at %v, got %v", now, got.ReactivatedAt)
	}

	active, err := store.GetAllHabits(false)
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("expected no active habits, got %d", len(active))
	}
	all, err := store.GetAllHabits(true)
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 habit including inactive, got %d", len(all))
	}

	missing := models.Habit{ID: "nope", Frequency: models.FrequencyDaily}
	if err := store.SaveHabit(missing); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNotFound(t *testing.T) {
	store := setupTestStore(t)

	checks := map[string]error{}
	_, checks["habit"] = store.GetHabit("x")
	_, checks["habit by name"] = store.GetHabitByName("x")
	_, checks["goal"] = store.GetGoal("x")
	_, checks["category"] = store.GetCategory("x")
	_, checks["category by name"] = store.GetCategoryByName("x")
	checks["delete goal"] = store.DeleteGoal("x")
	checks["delete category"] = store.DeleteCategory("x")

	for name, err := range checks {
		if !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestCompletionsOrdered(t *testing.T) {
	store := setupTestStore(t)
	addHabit(t, store, "h1", "Run", models.FrequencyDaily)

	east := time.FixedZone("UTC+9", 9*60*60)
	times := []time.Time{
		time.Date(2025, 1, 3, 7, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC),
		// 2025-01-01 22:00 UTC, written with a +09:00 offset
		time.Date(2025, 1, 2, 7, 0, 0, 0, east),
	}
	for i, ts := range times {
		c := models.Completion{ID: string(rune('a' + i)), HabitID: "h1", CompletedAt: ts}
		if err := store.AppendCompletion(c); err != nil {
			t.Fatalf("AppendCompletion failed: %v", err)
		}
	}

	got, err := store.ListCompletions("h1")
	if err != nil {
		t.Fatalf("ListCompletions failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 completions, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].CompletedAt.Before(got[i-1].CompletedAt) {
			t.Errorf("completions out of order at %d: %v", i, got)
		}
	}
	if got[1].ID != "c" {
		t.Errorf("expected offset completion second, got %s", got[1].ID)
	}

	none, err := store.ListCompletions("other")
	if err != nil {
		t.Fatalf("ListCompletions failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no completions, got %d", len(none))
	}
}

func TestGoals(t *testing.T) {
	store := setupTestStore(t)
	addHabit(t, store, "h1", "Run", models.FrequencyDaily)

	target := 12
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	goals := []models.Goal{
		{ID: "g1", HabitID: "h1", TargetPeriodDays: 28, Active: true, CreatedAt: start},
		{ID: "g2", HabitID: "h1", TargetPeriodDays: 14, TargetCompletions: &target, StartDate: &start, Active: true, CreatedAt: start.Add(time.Hour)},
	}
	for _, g := range goals {
		if err := store.AddGoal(g); err != nil {
			t.Fatalf("AddGoal failed: %v", err)
		}
	}

	g, err := store.GetGoal("g2")
	if err != nil {
		t.Fatalf("GetGoal failed: %v", err)
	}
	if g.TargetCompletions == nil || *g.TargetCompletions != 12 {
		t.Errorf("expected target 12, got %v", g.TargetCompletions)
	}
	if g.StartDate == nil || !g.StartDate.Equal(start) || g.EndDate != nil {
		t.Errorf("unexpected bounds: %v %v", g.StartDate, g.EndDate)
	}

	if err := store.DeleteGoal("g1"); err != nil {
		t.Fatalf("DeleteGoal failed: %v", err)
	}
	active, err := store.GetAllGoals(false)
	if err != nil {
		t.Fatalf("GetAllGoals failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != "g2" {
		t.Errorf("expected only g2 active, got %+v", active)
	}
	deleted, err := store.GetGoal("g1")
	if err != nil {
		t.Fatalf("GetGoal on deleted goal failed: %v", err)
	}
	if deleted.Active {
		t.Error("expected deleted goal to be inactive")
	}
}

func TestCategories(t *testing.T) {
	store := setupTestStore(t)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, c := range []models.Category{
		{ID: "c1", Name: "Health", Color: "green", Active: true, CreatedAt: created},
		{ID: "c2", Name: "Art", Description: "making things", Active: true, CreatedAt: created},
	} {
		if err := store.AddCategory(c); err != nil {
			t.Fatalf("AddCategory failed: %v", err)
		}
	}

	all, err := store.GetAllCategories(false)
	if err != nil {
		t.Fatalf("GetAllCategories failed: %v", err)
	}
	if len(all) != 2 || all[0].Name != "Art" {
		t.Errorf("expected categories sorted by name, got %+v", all)
	}

	c, err := store.GetCategoryByName("health")
	if err != nil {
		t.Fatalf("GetCategoryByName failed: %v", err)
	}
	if c.ID != "c1" || c.Color != "green" {
		t.Errorf("unexpected category: %+v", c)
	}

	if err := store.DeleteCategory("c1"); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
	all, err = store.GetAllCategories(false)
	if err != nil {
		t.Fatalf("GetAllCategories failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected 1 active category, got %d", len(all))
	}
}

func TestTrackerOverSQLite(t *testing.T) {
	store := setupTestStore(t)
	addHabit(t, store, "h1", "Journal", models.FrequencyDaily)

	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	tr := tracker.New(store, tracker.WithClock(func() time.Time { return now }))

	for d := 7; d <= 9; d++ {
		if _, err := tr.Complete("h1", time.Date(2025, 1, d, 9, 0, 0, 0, time.UTC)); err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
	}
	_, err := tr.Complete("h1", time.Date(2025, 1, 9, 20, 0, 0, 0, time.UTC))
	if !errors.Is(err, apperrors.ErrDuplicatePeriod) {
		t.Fatalf("expected ErrDuplicatePeriod, got %v", err)
	}

	h, err := store.GetHabit("h1")
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if h.Streak != 3 {
		t.Errorf("expected streak 3, got %d", h.Streak)
	}

	if err := tr.SoftDelete("h1"); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if err := tr.Reactivate("h1"); err != nil {
		t.Fatalf("Reactivate failed: %v", err)
	}
	h, err = store.GetHabit("h1")
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if h.Streak != 0 || h.ReactivatedAt == nil || !h.ReactivatedAt.Equal(now) {
		t.Errorf("unexpected habit after reactivation: %+v", h)
	}
	if h.LastCompleted == nil {
		t.Error("expected last completed to survive reactivation")
	}

	longest, err := tr.LongestStreak("h1")
	if err != nil {
		t.Fatalf("LongestStreak failed: %v", err)
	}
	if longest != 3 {
		t.Errorf("expected longest 3, got %d", longest)
	}
}

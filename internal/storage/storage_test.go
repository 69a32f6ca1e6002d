package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dharmatimer/internal/core/model"
	"dharmatimer/internal/core/timekeeper"
)

func TestAtomicWriteFileReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "state.json")

	require.NoError(t, AtomicWriteFile(path, []byte("first"), 0o600))
	require.NoError(t, AtomicWriteFile(path, []byte("second"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	store := NewSnapshotFile(t.TempDir())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	start := int64(1_700_000_000_000)
	snapshot := timekeeper.Snapshot{
		State:                     timekeeper.StateRunning,
		StartEpochMillis:          &start,
		SelectedDurationSeconds:   1200,
		BaseSeconds:               900,
		PracticeType:              model.PracticeDzogchen,
		IntervalBellPeriodSeconds: 300,
		LastFiredIntervalMark:     300,
	}
	require.NoError(t, store.Save(snapshot))

	loaded, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, snapshot, *loaded)
	assert.NoError(t, loaded.Validate())

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSnapshotFileCorrupt(t *testing.T) {
	store := NewSnapshotFile(t.TempDir())
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))

	loaded, err := store.Load()
	assert.Error(t, err)
	assert.Nil(t, loaded)
}

func TestCorruptSnapshotFileIsClearedOnRestore(t *testing.T) {
	store := NewSnapshotFile(t.TempDir())
	require.NoError(t, os.WriteFile(store.Path(), []byte("garbage"), 0o600))

	keeper := timekeeper.New(model.DefaultTimerSettings(), timekeeper.Config{Snapshots: store})
	t.Cleanup(keeper.Stop)

	assert.False(t, keeper.Restore())
	assert.Equal(t, timekeeper.StateSetup, keeper.Status().State)
	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestSettingsDefaultsWhenMissing(t *testing.T) {
	settings, err := LoadSettings(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTimerSettings(), settings)
}

func TestSettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	saved := model.TimerSettings{
		DurationSeconds:     2700,
		PracticeType:        "metta",
		BellSoundID:         "deep_gong",
		IntervalBellMinutes: 10,
		CustomPracticeTypes: []model.CustomPracticeType{{Name: "Metta", Description: "Loving kindness"}},
	}
	require.NoError(t, SettingsFile{Dir: dir}.SaveTimerSettings(saved))

	loaded, err := SettingsFile{Dir: dir}.LoadTimerSettings()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestSettingsIgnoresInvalidValues(t *testing.T) {
	dir := t.TempDir()
	raw := "default_duration_seconds: 99999\ninterval_bell_minutes: 7\ndefault_practice_type: \"  \"\ncustom_practice_types:\n  - name: \"\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, settingsFileName), []byte(raw), 0o644))

	settings, err := LoadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTimerSettings(), settings)
}

func TestSettingsMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, settingsFileName), []byte("default_duration_seconds: [1"), 0o644))

	settings, err := LoadSettings(dir)
	assert.Error(t, err)
	assert.Equal(t, model.DefaultTimerSettings(), settings)
}

func openTestDB(t *testing.T, now time.Time) *SessionDB {
	t.Helper()
	store, err := OpenSessionDB(SessionDBPath(t.TempDir()))
	require.NoError(t, err)
	store.now = func() time.Time { return now }
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveSessionWithoutNotes(t *testing.T) {
	now := time.Date(2026, time.March, 4, 9, 30, 0, 0, time.UTC)
	store := openTestDB(t, now)
	ctx := context.Background()

	require.NoError(t, store.SaveCompletedSession(ctx, model.CompletedSession{
		DurationSeconds: 1200,
		PracticeType:    model.PracticeShamatha,
	}))

	records, err := store.RecentSessions(ctx, 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	record := records[0]
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, 1200, record.DurationSeconds)
	assert.True(t, record.Completed)
	assert.Empty(t, record.Notes)
	assert.True(t, record.EndedAt.Equal(now))
	assert.True(t, record.StartedAt.Equal(now.Add(-20*time.Minute)))

	totals, err := store.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.PracticeTotals{Sessions: 1, TotalSeconds: 1200}, totals)
}

func TestSaveSessionNotesCreateJournalEntry(t *testing.T) {
	now := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)
	store := openTestDB(t, now)
	store.SetCustomPracticeTypes([]model.CustomPracticeType{{Name: "Metta"}})
	ctx := context.Background()

	require.NoError(t, store.SaveCompletedSession(ctx, model.CompletedSession{
		DurationSeconds: 1250,
		PracticeType:    model.PracticeVipashyana,
		Notes:           "  noticed restlessness  ",
	}))
	require.NoError(t, store.SaveCompletedSession(ctx, model.CompletedSession{
		DurationSeconds: 600,
		PracticeType:    "metta",
		Notes:           "warmth",
	}))

	entries, err := store.JournalEntries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	date := now.Local().Format("Jan 2, 2006")
	titles := []string{entries[0].Title, entries[1].Title}
	assert.ElementsMatch(t, []string{
		"Vipashyana - " + date + " - 20 min",
		"Metta - " + date + " - 10 min",
	}, titles)
	for _, entry := range entries {
		assert.Equal(t, []string{"session notes"}, entry.Tags)
	}

	totals, err := store.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Sessions)
	assert.Equal(t, 1850, totals.TotalSeconds)
	assert.Equal(t, 2, totals.JournalEntries)
}

func TestSessionDBPersistsAcrossOpen(t *testing.T) {
	path := SessionDBPath(t.TempDir())
	store, err := OpenSessionDB(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveCompletedSession(context.Background(), model.CompletedSession{DurationSeconds: 60, PracticeType: model.PracticeOther}))
	require.NoError(t, store.Close())

	reopened, err := OpenSessionDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	records, err := reopened.RecentSessions(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissingEmptyMalformed(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	assert.Empty(t, s.Load("nothing"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.json"), nil, 0o644))
	assert.Empty(t, s.Load("empty"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))
	assert.Empty(t, s.Load("bad"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "null.json"), []byte("null"), 0o644))
	assert.NotNil(t, s.Load("null"))
}

func TestStore_SaveLoadIdentity(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nested", "data"))

	in := Collection{
		"COFFEE": []any{map[string]any{"date": "2025-11-24", "amount": 150.0}},
		"FOOD":   map[string]any{"limit": 2000.0, "spent": 0.0, "tags": []any{"a", "b"}, "ok": true},
	}
	require.NoError(t, s.Save("expense_file", in))
	assert.Equal(t, in, s.Load("expense_file"))

	raw, err := os.ReadFile(s.Path("expense_file"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "\n    \"COFFEE\""), "documents use four space indentation")
}

func TestStore_SaveEmptyName(t *testing.T) {
	s := New(t.TempDir())
	assert.ErrorIs(t, s.Save(" ", Collection{}), ErrEmptyName)
}

func TestStore_LegacyListUpgrade(t *testing.T) {
	dir := t.TempDir()
	legacy := `[
		{"heading": "HW1", "course": "MATH101", "deadline": "2025-12-01", "completed": false},
		{"course": "PHYS", "deadline": "2025-12-05"}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assignments.json"), []byte(legacy), 0o644))

	s := New(dir, func(o *Options) {
		o.LegacyKeys["assignments"] = AssignmentKey
	})

	c := s.Load("assignments")
	require.Len(t, c, 2)

	first, ok := c["HW1_MATH101_0_2025-12-01_0"].(map[string]any)
	require.True(t, ok, "keys: %v", c)
	assert.Equal(t, false, first["completed"])
	assert.Equal(t, "MATH101", first["course"])

	_, ok = c["unknown_PHYS_1_2025-12-05_1"]
	assert.True(t, ok, "missing fields render as unknown: %v", c)

	// upgraded in place on the next write
	require.NoError(t, s.Save("assignments", c))
	raw, err := os.ReadFile(s.Path("assignments"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{"))
	assert.Equal(t, c, s.Load("assignments"))
}

func TestStore_LegacyDefaultKeys(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "projects.json"), []byte(`[{"name":"x"}, 3]`), 0o644))

	c := New(dir).Load("projects")
	assert.Equal(t, Collection{
		"projects_0": map[string]any{"name": "x"},
		"projects_1": map[string]any{"value": 3.0},
	}, c)
}

func TestExamKey(t *testing.T) {
	got := ExamKey(2, map[string]any{"course": "CS", "context": "MIDTERM", "date": "2025-11-30"})
	assert.Equal(t, "CS_MIDTERM_2_2025-11-30_2", got)
}

func TestStore_TypedRoundTrip(t *testing.T) {
	type budget struct {
		Limit float64 `json:"limit"`
		Spent float64 `json:"spent"`
	}
	s := New(t.TempDir())

	in := map[string]budget{"COFFEE": {Limit: 2000, Spent: 150}}
	require.NoError(t, s.SaveFrom("budget_file", in))

	var out map[string]budget
	s.LoadInto("budget_file", &out)
	assert.Equal(t, in, out)

	assert.Error(t, s.SaveFrom("budget_file", []int{1}))
}

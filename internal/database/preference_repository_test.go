package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wcxxx57/bilibili-study-tool/internal/database"
)

func newTestRepo(t *testing.T) *database.PreferenceRepository {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return database.NewPreferenceRepository(db)
}

func TestGetOrCreate_DefaultsOnFirstAccess(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	pref, err := repo.GetOrCreate(ctx, 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), pref.UserID)
	assert.True(t, pref.EnableLearningReminder)
	assert.True(t, pref.EnableContentFilterReminder)
	assert.Empty(t, pref.IgnoredList())
}

func TestGetOrCreate_SecondAccessReturnsSameRow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, 7)
	require.NoError(t, err)
	first.EnableLearningReminder = false
	require.NoError(t, repo.Update(ctx, first))

	second, err := repo.GetOrCreate(ctx, 7)
	require.NoError(t, err)
	assert.False(t, second.EnableLearningReminder)
	assert.True(t, second.EnableContentFilterReminder)
}

func TestUpdate_UnknownUserFails(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Update(context.Background(), &database.UserPreference{UserID: 999})
	assert.Error(t, err)
}

func TestIgnoreKeyword_DeduplicatesCaseInsensitively(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.IgnoreKeyword(ctx, 1, "LOL"))
	require.NoError(t, repo.IgnoreKeyword(ctx, 1, "lol"))
	require.NoError(t, repo.IgnoreKeyword(ctx, 1, "游戏"))

	pref, err := repo.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"LOL", "游戏"}, pref.IgnoredList())
}

func TestIgnoreKeyword_RejectsEmpty(t *testing.T) {
	repo := newTestRepo(t)
	assert.Error(t, repo.IgnoreKeyword(context.Background(), 1, "   "))
}

func TestIsKeywordIgnored(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.IgnoreKeyword(ctx, 5, "王者荣耀"))

	ignored, err := repo.IsKeywordIgnored(ctx, 5, "王者荣耀")
	require.NoError(t, err)
	assert.True(t, ignored)

	ignored, err = repo.IsKeywordIgnored(ctx, 5, "学习")
	require.NoError(t, err)
	assert.False(t, ignored)

	// Other users are unaffected.
	ignored, err = repo.IsKeywordIgnored(ctx, 6, "王者荣耀")
	require.NoError(t, err)
	assert.False(t, ignored)
}

func TestUserPreference_IgnoredListCorruptJSON(t *testing.T) {
	pref := &database.UserPreference{IgnoredKeywords: "{not json"}
	assert.Nil(t, pref.IgnoredList())
}

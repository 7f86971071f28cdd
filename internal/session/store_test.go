package session

import (
	"context"
	"testing"
	"time"

	"admin-console/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLifecycle(t *testing.T) {
	t.Skip("Integration test - requires Redis")

	store, err := NewStore("localhost:6379", "", 0, time.Hour)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	token, err := store.Token(ctx, "sid-test")
	assert.NoError(t, err)
	assert.Empty(t, token, "fresh session has no token")

	require.NoError(t, store.SetToken(ctx, "sid-test", "jwt-abc"))

	token, err = store.Token(ctx, "sid-test")
	assert.NoError(t, err)
	assert.Equal(t, "jwt-abc", token)

	require.NoError(t, store.ClearToken(ctx, "sid-test"))

	token, err = store.Token(ctx, "sid-test")
	assert.NoError(t, err)
	assert.Empty(t, token)
}

func TestThemeSurvivesLogout(t *testing.T) {
	t.Skip("Integration test - requires Redis")

	store, err := NewStore("localhost:6379", "", 0, time.Hour)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	theme, err := store.Theme(ctx, "sid-theme")
	assert.NoError(t, err)
	assert.Equal(t, models.DefaultTheme, theme, "default when nothing stored")

	require.NoError(t, store.SetTheme(ctx, "sid-theme", models.ThemeDark))
	require.NoError(t, store.SetToken(ctx, "sid-theme", "jwt-abc"))
	require.NoError(t, store.ClearToken(ctx, "sid-theme"))

	theme, err = store.Theme(ctx, "sid-theme")
	assert.NoError(t, err)
	assert.Equal(t, models.ThemeDark, theme)
}

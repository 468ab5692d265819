package firebase

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCredentialStore(t *testing.T, store CredentialStore) {
	ctx := context.Background()

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, ErrNoCredentials)

	want := &Credentials{
		UserID:       "uid-1",
		Email:        "alice@example.com",
		IDToken:      "id-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.UnixMilli(time.Now().Add(time.Hour).UnixMilli()),
	}
	require.NoError(t, store.Save(ctx, want))
	want.IDToken = "changed after save"

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.IDToken)
	assert.Equal(t, "refresh-1", got.RefreshToken)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))

	got.RefreshToken = "refresh-2"
	require.NoError(t, store.Save(ctx, got))
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", again.RefreshToken)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, ErrNoCredentials)
}

func TestMemoryCredentialStore(t *testing.T) {
	testCredentialStore(t, NewMemoryCredentialStore())
}

func TestSQLiteCredentialStore(t *testing.T) {
	store, err := NewSQLiteCredentialStore(context.Background(), filepath.Join(t.TempDir(), "credentials.db"))
	require.NoError(t, err)
	defer store.Close()

	testCredentialStore(t, store)
}

func TestCredentials_Expired(t *testing.T) {
	now := time.Now()
	c := &Credentials{ExpiresAt: now.Add(2 * time.Minute)}

	assert.False(t, c.Expired(now, time.Minute))
	assert.True(t, c.Expired(now, 3*time.Minute))
}

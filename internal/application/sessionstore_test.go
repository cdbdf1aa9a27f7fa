package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/signupdesk/internal/application"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSessionStore_OpenLoadsPersistedToken(t *testing.T) {
	creds := newMemCredentialStore()
	require.NoError(t, creds.Set(context.Background(), testOrigin, application.AdminTokenKey, "T1"))

	store := application.NewSessionStore(creds, testOrigin, discardLogger())
	assert.False(t, store.Get().Present(), "nothing is loaded before Open")

	store.Open(context.Background())
	assert.Equal(t, "T1", store.Get().Value)
}

func TestSessionStore_OpenIsScopedToOrigin(t *testing.T) {
	creds := newMemCredentialStore()
	require.NoError(t, creds.Set(context.Background(), "http://other.test", application.AdminTokenKey, "T1"))

	store := application.NewSessionStore(creds, testOrigin, discardLogger())
	store.Open(context.Background())

	assert.False(t, store.Get().Present())
}

func TestSessionStore_OpenReadFailureMeansLoggedOut(t *testing.T) {
	creds := newMemCredentialStore()
	creds.getErr = errors.New("database is locked")

	store := application.NewSessionStore(creds, testOrigin, discardLogger())
	store.Open(context.Background())

	assert.False(t, store.Get().Present())
}

func TestSessionStore_SetEmptyDeletes(t *testing.T) {
	creds := newMemCredentialStore()
	store := application.NewSessionStore(creds, testOrigin, discardLogger())
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "T1"))
	v, ok := creds.Value(testOrigin, application.AdminTokenKey)
	require.True(t, ok)
	assert.Equal(t, "T1", v)

	require.NoError(t, store.Set(ctx, ""))
	_, ok = creds.Value(testOrigin, application.AdminTokenKey)
	assert.False(t, ok)
	assert.False(t, store.Get().Present())
}

func TestSessionStore_SetAcceptsAnyTokenShape(t *testing.T) {
	store := application.NewSessionStore(newMemCredentialStore(), testOrigin, discardLogger())

	require.NoError(t, store.Set(context.Background(), " not a jwt "))
	assert.Equal(t, " not a jwt ", store.Get().Value)
}

func TestSessionStore_SetUpdatesMemoryWhenPersistFails(t *testing.T) {
	creds := newMemCredentialStore()
	creds.setErr = errors.New("read-only file system")
	store := application.NewSessionStore(creds, testOrigin, discardLogger())

	err := store.Set(context.Background(), "T1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist admin token")
	assert.Equal(t, "T1", store.Get().Value)
}

package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(LocalConfig{BasePath: t.TempDir()})
	require.NoError(t, err)
	return store
}

func TestLocalWriteReadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Binary content must come back byte-for-byte.
	payload := make([]byte, 64*1024)
	_, err := rand.Read(payload)
	require.NoError(t, err)

	key := "pdfs/1700000000000-contract.pdf"
	require.NoError(t, store.Write(ctx, key, bytes.NewReader(payload), int64(len(payload)), "application/pdf"))

	rc, err := store.Read(ctx, key)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestLocalWriteOverwritesExistingKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key := "pdfs/1-doc.pdf"
	require.NoError(t, store.Write(ctx, key, strings.NewReader("v1"), 2, "application/pdf"))
	require.NoError(t, store.Write(ctx, key, strings.NewReader("v2"), 2, "application/pdf"))

	rc, err := store.Read(ctx, key)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

func TestLocalExistsAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key := "pdfs/1-doc.pdf"

	ok, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Write(ctx, key, strings.NewReader("data"), 4, "application/pdf"))

	ok, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, key))

	ok, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a missing key is not an error.
	require.NoError(t, store.Delete(ctx, key))
}

func TestLocalReadMissingKey(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Read(context.Background(), "pdfs/absent.pdf")
	assert.Error(t, err)
}

func TestLocalURLRequiresExistingKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.URL(ctx, "pdfs/absent.pdf", time.Hour)
	require.Error(t, err)

	key := "pdfs/1-doc.pdf"
	require.NoError(t, store.Write(ctx, key, strings.NewReader("data"), 4, "application/pdf"))

	url, err := store.URL(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "/"+key, url)
}

func TestLocalTraversalKeysStayInBase(t *testing.T) {
	store := newTestStore(t)

	keys := []string{
		"../escape.pdf",
		"../../etc/passwd",
		"pdfs/../../escape.pdf",
		"..",
	}
	for _, key := range keys {
		path := store.fullPath(key)
		rel, err := filepath.Rel(store.basePath, path)
		require.NoError(t, err)
		assert.False(t, strings.HasPrefix(rel, ".."), "key %q escaped to %q", key, path)
	}
}

package document_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/manual/pkg/adapters/document"
	"github.com/aretw0/manual/pkg/core"
)

func watchRepo(t *testing.T) (*document.Repository, string, <-chan core.Event) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "processes.json")
	repo := document.NewRepository(document.Config{Path: path, Debounce: 20 * time.Millisecond})
	require.NoError(t, repo.Initialize(context.Background(), core.DefaultSeed()))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	events, err := repo.Watch(ctx)
	require.NoError(t, err)
	return repo, path, events
}

func nextEvent(t *testing.T, events <-chan core.Event) core.Event {
	t.Helper()
	select {
	case e, ok := <-events:
		require.True(t, ok, "event channel closed")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
		return core.Event{}
	}
}

func assertQuiet(t *testing.T, events <-chan core.Event, d time.Duration) {
	t.Helper()
	select {
	case e := <-events:
		t.Fatalf("unexpected event %s", e)
	case <-time.After(d):
	}
}

func TestWatch(t *testing.T) {
	t.Run("External Modify", func(t *testing.T) {
		_, path, events := watchRepo(t)

		require.NoError(t, os.WriteFile(path, []byte(`{"Discord":[]}`), 0644))

		e := nextEvent(t, events)
		assert.Equal(t, core.EventModify, e.Type)
		assert.Equal(t, path, e.Path)
		assert.NotZero(t, e.Timestamp)
	})

	t.Run("External Delete", func(t *testing.T) {
		_, path, events := watchRepo(t)

		require.NoError(t, os.Remove(path))

		e := nextEvent(t, events)
		assert.Equal(t, core.EventDelete, e.Type)
	})

	t.Run("Own Writes Are Ignored", func(t *testing.T) {
		repo, _, events := watchRepo(t)

		require.NoError(t, repo.Insert(context.Background(), core.Entry{
			ID: core.NewEntryID(), Section: "Discord", Title: "Mine", Content: "c",
		}))

		assertQuiet(t, events, 300*time.Millisecond)
	})

	t.Run("Sibling Files Are Ignored", func(t *testing.T) {
		_, path, events := watchRepo(t)

		require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.json"), []byte("{}"), 0644))

		assertQuiet(t, events, 300*time.Millisecond)
	})

	t.Run("Closes On Cancel", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "processes.json")
		repo := document.NewRepository(document.Config{Path: path})
		require.NoError(t, repo.Initialize(context.Background(), core.DefaultSeed()))

		ctx, cancel := context.WithCancel(context.Background())
		events, err := repo.Watch(ctx)
		require.NoError(t, err)
		assert.Eventually(t, func() bool {
			return repo.State().(document.RepositoryState).WatcherActive
		}, time.Second, 10*time.Millisecond)

		cancel()
		select {
		case _, ok := <-events:
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("channel not closed after cancel")
		}
		assert.Eventually(t, func() bool {
			return !repo.State().(document.RepositoryState).WatcherActive
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		repo := document.NewRepository(document.Config{Path: filepath.Join(t.TempDir(), "p.json")})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := repo.Watch(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

package platform_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/manual/internal/platform"
	"github.com/aretw0/manual/pkg/adapters/document"
	"github.com/aretw0/manual/pkg/adapters/memory"
	"github.com/aretw0/manual/pkg/adapters/sqlite"
	"github.com/aretw0/manual/pkg/core"
)

func TestInit(t *testing.T) {
	t.Run("Document Creates And Seeds File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data", "processes.json")

		repo, err := platform.Init(path, platform.WithAdapter(platform.AdapterDocument))
		if err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		defer repo.Close()

		docRepo, ok := repo.(*document.Repository)
		if !ok {
			t.Fatalf("Expected document repository, got %T", repo)
		}
		if docRepo.Path != path {
			t.Errorf("Expected path %s, got %s", path, docRepo.Path)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Document not created: %v", err)
		}
	})

	t.Run("SQLite Creates Database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "processes.db")

		repo, err := platform.Init(path, platform.WithAdapter(platform.AdapterSQLite))
		require.NoError(t, err)
		defer repo.Close()

		assert.IsType(t, &sqlite.Repository{}, repo)
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("SQLite In Memory", func(t *testing.T) {
		repo, err := platform.Init(sqlite.MemoryPath, platform.WithAdapter(platform.AdapterSQLite))
		require.NoError(t, err)
		defer repo.Close()

		cat, err := repo.LoadAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, core.DefaultSeed().Len(), cat.Len())
	})

	t.Run("Memory Ignores URI", func(t *testing.T) {
		repo, err := platform.Init("whatever", platform.WithAdapter("MEMORY"))
		require.NoError(t, err)
		assert.IsType(t, &memory.Repository{}, repo)
	})

	t.Run("Custom Seed", func(t *testing.T) {
		seed := core.NewCatalog()
		seed.Append(core.Entry{Section: "Only", Title: "One", Content: "Entry"})

		repo, err := platform.Init("", platform.WithAdapter(platform.AdapterMemory), platform.WithSeed(seed))
		require.NoError(t, err)
		cat, err := repo.LoadAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"Only"}, cat.Sections())
	})

	t.Run("Injected Repository", func(t *testing.T) {
		injected := memory.NewRepository()
		repo, err := platform.Init("ignored", platform.WithRepository(injected), platform.WithAdapter("bogus"))
		require.NoError(t, err)
		assert.Same(t, injected, repo)
	})

	t.Run("Unknown Adapter", func(t *testing.T) {
		_, err := platform.Init("x", platform.WithAdapter("s3"))
		assert.Error(t, err)
	})

	t.Run("Corrupt Document Fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "processes.json")
		require.NoError(t, os.WriteFile(path, []byte("{oops"), 0644))

		_, err := platform.Init(path)
		assert.True(t, errors.Is(err, core.ErrStorageUnavailable), "got %v", err)
	})
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("Lazy Initialization", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "processes.yaml")

		svc, err := platform.New(path)
		require.NoError(t, err)
		defer svc.Close()

		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err), "New must not touch storage")

		_, err = svc.LoadAll(ctx)
		require.NoError(t, err)
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("Metrics Wired", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		svc, err := platform.New("", platform.WithAdapter(platform.AdapterMemory), platform.WithMetrics(reg))
		require.NoError(t, err)

		_, err = svc.LoadAll(ctx)
		require.NoError(t, err)

		families, err := reg.Gather()
		require.NoError(t, err)
		var names []string
		for _, mf := range families {
			names = append(names, mf.GetName())
		}
		assert.Contains(t, names, "manual_operations_total")
		assert.Contains(t, names, "manual_operation_duration_seconds")
	})

	t.Run("Unknown Adapter", func(t *testing.T) {
		_, err := platform.New("", platform.WithAdapter("nope"))
		assert.Error(t, err)
	})
}

func TestDefaultURI(t *testing.T) {
	assert.Equal(t, "data/processes.json", platform.DefaultURI(platform.AdapterDocument))
	assert.Equal(t, "data/processes.db", platform.DefaultURI(platform.AdapterSQLite))
	assert.Empty(t, platform.DefaultURI(platform.AdapterMemory))
}

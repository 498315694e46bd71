package core_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/manual/pkg/adapters/memory"
	"github.com/aretw0/manual/pkg/core"
)

var errDiskGone = errors.New("disk gone")

// flakyRepository wraps the memory adapter and fails on demand.
type flakyRepository struct {
	*memory.Repository
	broken   atomic.Bool
	reads    atomic.Int32
	initRuns atomic.Int32
}

func newFlakyRepository() *flakyRepository {
	return &flakyRepository{Repository: memory.NewRepository()}
}

func (f *flakyRepository) fail() error {
	if f.broken.Load() {
		return core.Unavailable("read", errDiskGone)
	}
	return nil
}

func (f *flakyRepository) Initialize(ctx context.Context, seed core.Catalog) error {
	f.initRuns.Add(1)
	if err := f.fail(); err != nil {
		return err
	}
	return f.Repository.Initialize(ctx, seed)
}

func (f *flakyRepository) LoadAll(ctx context.Context) (core.Catalog, error) {
	f.reads.Add(1)
	if err := f.fail(); err != nil {
		return core.Catalog{}, err
	}
	return f.Repository.LoadAll(ctx)
}

func (f *flakyRepository) Section(ctx context.Context, section core.Section) ([]core.Entry, error) {
	f.reads.Add(1)
	if err := f.fail(); err != nil {
		return nil, err
	}
	return f.Repository.Section(ctx, section)
}

func (f *flakyRepository) Insert(ctx context.Context, e core.Entry) error {
	if err := f.fail(); err != nil {
		return err
	}
	return f.Repository.Insert(ctx, e)
}

func TestNewService(t *testing.T) {
	t.Run("Requires Repository", func(t *testing.T) {
		_, err := core.NewService(nil)
		require.Error(t, err)
	})

	t.Run("Custom Seed", func(t *testing.T) {
		seed := core.NewCatalog()
		seed.Append(core.Entry{Section: "Intro", Title: "Hello", Content: "World"})

		svc, err := core.NewService(memory.NewRepository(), core.WithSeed(seed))
		require.NoError(t, err)

		cat, err := svc.LoadAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"Intro"}, cat.Sections())
		assert.Equal(t, 1, cat.Len())
	})
}

func TestService_Validation(t *testing.T) {
	ctx := context.Background()
	svc, err := core.NewService(memory.NewRepository())
	require.NoError(t, err)

	t.Run("Names The Missing Field", func(t *testing.T) {
		cases := map[string][3]string{
			"section": {" ", "Title", "Content"},
			"title":   {"Discord", "", "Content"},
			"content": {"Discord", "Title", "   "},
		}
		for field, in := range cases {
			_, err := svc.Add(ctx, in[0], in[1], in[2])
			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr, field)
			assert.Equal(t, field, verr.Field)
			assert.ErrorIs(t, err, core.ErrValidation)
		}
	})

	t.Run("Update Validates Before Lookup", func(t *testing.T) {
		err := svc.Update(ctx, "Discord", core.NewEntryID(), "", "Content")
		assert.ErrorIs(t, err, core.ErrValidation)
		assert.NotErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("Empty ID Is Not Found", func(t *testing.T) {
		assert.ErrorIs(t, svc.Update(ctx, "Discord", "", "Title", "Content"), core.ErrNotFound)
		assert.ErrorIs(t, svc.Delete(ctx, "Discord", ""), core.ErrNotFound)
	})

	t.Run("Trims Title And Section", func(t *testing.T) {
		e, err := svc.Add(ctx, "  Discord ", "  Padded  ", "  body kept as is  ")
		require.NoError(t, err)
		assert.Equal(t, "Discord", e.Section)
		assert.Equal(t, "Padded", e.Title)
		assert.Equal(t, "  body kept as is  ", e.Content)
	})
}

func TestService_StorageUnavailable(t *testing.T) {
	ctx := context.Background()
	repo := newFlakyRepository()
	svc, err := core.NewService(repo)
	require.NoError(t, err)

	repo.broken.Store(true)

	_, err = svc.LoadAll(ctx)
	require.ErrorIs(t, err, core.ErrStorageUnavailable)
	assert.ErrorIs(t, err, errDiskGone, "cause must stay inspectable")

	_, err = core.Collect(svc.Search(ctx, "Discord", ""))
	require.ErrorIs(t, err, core.ErrStorageUnavailable)

	_, err = svc.Add(ctx, "Discord", "Title", "Content")
	require.ErrorIs(t, err, core.ErrStorageUnavailable)

	t.Run("Initialization Is Retried", func(t *testing.T) {
		repo.broken.Store(false)
		cat, err := svc.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, core.DefaultSeed().Len(), cat.Len())

		runs := repo.initRuns.Load()
		_, err = svc.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, runs, repo.initRuns.Load(), "a ready store is not initialized again")
	})

	t.Run("Search Yields The Error Once", func(t *testing.T) {
		repo.broken.Store(true)
		defer repo.broken.Store(false)

		var errs int
		for _, err := range svc.Search(ctx, "Discord", "") {
			require.Error(t, err)
			errs++
		}
		assert.Equal(t, 1, errs)
	})
}

func TestService_SearchIsLazy(t *testing.T) {
	ctx := context.Background()
	repo := newFlakyRepository()
	svc, err := core.NewService(repo)
	require.NoError(t, err)

	seq := svc.Search(ctx, "Discord", "process")
	assert.Zero(t, repo.reads.Load(), "building the sequence must not read")

	var n int
	for range seq {
		n++
		break
	}
	assert.Equal(t, 1, n)
	assert.Equal(t, int32(1), repo.reads.Load())
}

func TestService_Metrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	svc, err := core.NewService(memory.NewRepository(), core.WithMetrics(reg))
	require.NoError(t, err)

	_, err = svc.LoadAll(ctx)
	require.NoError(t, err)
	_, _ = svc.Add(ctx, "Discord", "", "x")
	_ = svc.Delete(ctx, "Discord", core.NewEntryID())

	assert.Equal(t, 1.0, counterValue(t, reg, "load_all", "ok"))
	assert.Equal(t, 1.0, counterValue(t, reg, "add", "invalid"))
	assert.Equal(t, 1.0, counterValue(t, reg, "delete", "not_found"))

	t.Run("Shared Registry", func(t *testing.T) {
		other, err := core.NewService(memory.NewRepository(), core.WithMetrics(reg))
		require.NoError(t, err)
		_, err = other.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2.0, counterValue(t, reg, "load_all", "ok"))
	})
}

func counterValue(t *testing.T, reg *prometheus.Registry, op, result string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "manual_operations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["op"] == op && labels["result"] == result {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestService_State(t *testing.T) {
	svc, err := core.NewService(memory.NewRepository())
	require.NoError(t, err)
	assert.Equal(t, "service", svc.ComponentType())

	state := svc.State().(core.ServiceState)
	assert.False(t, state.Ready)
	assert.Equal(t, "memory", state.RepositoryType)

	_, err = svc.LoadAll(context.Background())
	require.NoError(t, err)

	state = svc.State().(core.ServiceState)
	assert.True(t, state.Ready)
	assert.Equal(t, memory.RepositoryState{Sections: 4, Entries: 8}, state.Repository)
}

func TestService_WatchUnsupported(t *testing.T) {
	svc, err := core.NewService(memory.NewRepository())
	require.NoError(t, err)

	_, err = svc.Watch(context.Background())
	assert.Error(t, err)
}

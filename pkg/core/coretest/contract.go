// Package coretest provides a behavioural test suite that every
// core.Repository implementation must pass.
package coretest

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/manual/pkg/core"
)

// Factory returns a fresh, never-written repository.
// The suite closes it.
type Factory func(t *testing.T) core.Repository

// Run exercises the repository contract through core.Service.
func Run(t *testing.T, newRepo Factory) {
	t.Helper()

	setup := func(t *testing.T) *core.Service {
		t.Helper()
		repo := newRepo(t)
		svc, err := core.NewService(repo)
		require.NoError(t, err)
		t.Cleanup(func() { _ = svc.Close() })
		return svc
	}

	ctx := context.Background()

	t.Run("Fresh Store Returns Seed", func(t *testing.T) {
		svc := setup(t)

		cat, err := svc.LoadAll(ctx)
		require.NoError(t, err)

		seed := core.DefaultSeed()
		assert.Equal(t, seed.Sections(), cat.Sections())
		for _, section := range seed.Sections() {
			want := Titles(seed.Entries(section))
			assert.Equal(t, want, Titles(cat.Entries(section)), "section %s", section)
		}
		for _, section := range cat.Sections() {
			for _, e := range cat.Entries(section) {
				assert.NotEmpty(t, e.ID, "seed entries must be given an identity")
				assert.Equal(t, section, e.Section)
			}
		}
	})

	t.Run("Seed Identities Are Stable", func(t *testing.T) {
		svc := setup(t)

		first, err := svc.LoadAll(ctx)
		require.NoError(t, err)
		second, err := svc.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, IDs(first.Entries("Discord")), IDs(second.Entries("Discord")))
	})

	t.Run("Write Then Read", func(t *testing.T) {
		svc := setup(t)

		e, err := svc.Add(ctx, "Program Proper", "Weekly sync", "Every Monday")
		require.NoError(t, err)
		assert.NotEmpty(t, e.ID)

		cat, err := svc.LoadAll(ctx)
		require.NoError(t, err)
		entries := cat.Entries("Program Proper")
		require.NotEmpty(t, entries)
		last := entries[len(entries)-1]
		assert.Equal(t, e, last)
	})

	t.Run("Add To New Section", func(t *testing.T) {
		svc := setup(t)

		_, err := svc.Add(ctx, "Alumni", "Newsletter", "Monthly")
		require.NoError(t, err)

		cat, err := svc.LoadAll(ctx)
		require.NoError(t, err)
		assert.Contains(t, cat.Sections(), "Alumni")
		assert.Equal(t, []string{"Newsletter"}, Titles(cat.Entries("Alumni")))
	})

	t.Run("Add Rejects Missing Fields", func(t *testing.T) {
		svc := setup(t)

		before, err := svc.LoadAll(ctx)
		require.NoError(t, err)

		cases := []struct {
			name           string
			title, content string
			section        string
		}{
			{"empty title", "", "x", "Discord"},
			{"empty content", "x", "", "Discord"},
			{"blank title", "   ", "x", "Discord"},
			{"blank content", "x", " \n\t", "Discord"},
			{"empty section", "x", "x", ""},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Add(ctx, tc.section, tc.title, tc.content)
				require.ErrorIs(t, err, core.ErrValidation)
			})
		}

		after, err := svc.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, before.Len(), after.Len(), "failed adds must not create entries")
	})

	t.Run("Search", func(t *testing.T) {
		svc := setup(t)

		_, err := svc.Add(ctx, "Discord", "Moderation RULES", "Be kind")
		require.NoError(t, err)

		all, err := core.Collect(svc.Search(ctx, "Discord", ""))
		require.NoError(t, err)
		assert.Equal(t, []string{"Process 1", "Process 2", "Process 3", "Moderation RULES"}, Titles(all))

		hits, err := core.Collect(svc.Search(ctx, "Discord", "rUlEs"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Moderation RULES"}, Titles(hits))

		hits, err = core.Collect(svc.Search(ctx, "Discord", "process"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Process 1", "Process 2", "Process 3"}, Titles(hits))

		hits, err = core.Collect(svc.Search(ctx, "Discord", "kind"))
		require.NoError(t, err)
		assert.Empty(t, hits, "content must not be searched")

		hits, err = core.Collect(svc.Search(ctx, "Nowhere", ""))
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("Blank Query Yields All", func(t *testing.T) {
		svc := setup(t)

		hits, err := core.Collect(svc.Search(ctx, "Discord", "   "))
		require.NoError(t, err)
		assert.Equal(t, []string{"Process 1", "Process 2", "Process 3"}, Titles(hits))

		hits, err = core.Collect(svc.Search(ctx, "Discord", " 2"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Process 2"}, Titles(hits), "a non-blank query is matched as given")
	})

	t.Run("Search Trims Section", func(t *testing.T) {
		svc := setup(t)

		e, err := svc.Add(ctx, " Discord ", "Onboarding call", "Join at 10am")
		require.NoError(t, err)

		_, err = svc.Get(ctx, " Discord ", e.ID)
		require.NoError(t, err)

		hits, err := core.Collect(svc.Search(ctx, " Discord ", "call"))
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, e.ID, hits[0].ID)
	})

	t.Run("Search Is Restartable", func(t *testing.T) {
		svc := setup(t)

		seq := svc.Search(ctx, "Post-Program", "")
		first, err := core.Collect(seq)
		require.NoError(t, err)
		require.Len(t, first, 2)

		_, err = svc.Add(ctx, "Post-Program", "Process 3", "Content for process 3")
		require.NoError(t, err)

		second, err := core.Collect(seq)
		require.NoError(t, err)
		assert.Len(t, second, 3, "each range must re-read the store")

		for range seq {
			break // early stop must not panic
		}
	})

	t.Run("Update Missing Fails Without Mutation", func(t *testing.T) {
		svc := setup(t)

		before, err := svc.LoadAll(ctx)
		require.NoError(t, err)

		err = svc.Update(ctx, "Discord", core.NewEntryID(), "Title", "Content")
		require.ErrorIs(t, err, core.ErrNotFound)

		after, err := svc.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, before.Entries("Discord"), after.Entries("Discord"))
	})

	t.Run("Update Wrong Section Fails", func(t *testing.T) {
		svc := setup(t)

		e, err := svc.Add(ctx, "Discord", "Roles", "Assign roles")
		require.NoError(t, err)

		err = svc.Update(ctx, "Post-Program", e.ID, "Roles", "Changed")
		require.ErrorIs(t, err, core.ErrNotFound)

		got, err := svc.Get(ctx, "Discord", e.ID)
		require.NoError(t, err)
		assert.Equal(t, "Assign roles", got.Content)
	})

	t.Run("Identity Survives Rename", func(t *testing.T) {
		svc := setup(t)

		e, err := svc.Add(ctx, "Pre-Onboarding", "Welcome mail", "Send on day 1")
		require.NoError(t, err)

		require.NoError(t, svc.Update(ctx, "Pre-Onboarding", e.ID, "Welcome email", "Send on day 0"))
		require.NoError(t, svc.Update(ctx, "Pre-Onboarding", e.ID, "Welcome email", "Send on day 2"))

		got, err := svc.Get(ctx, "Pre-Onboarding", e.ID)
		require.NoError(t, err)
		assert.Equal(t, "Welcome email", got.Title)
		assert.Equal(t, "Send on day 2", got.Content)

		cat, err := svc.LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Process 1", "Process 2", "Welcome email"}, Titles(cat.Entries("Pre-Onboarding")))
	})

	t.Run("Duplicate Titles Are Addressed Independently", func(t *testing.T) {
		svc := setup(t)

		a, err := svc.Add(ctx, "Discord", "Same", "first")
		require.NoError(t, err)
		b, err := svc.Add(ctx, "Discord", "Same", "second")
		require.NoError(t, err)

		require.NoError(t, svc.Update(ctx, "Discord", b.ID, "Same", "second, edited"))
		require.NoError(t, svc.Delete(ctx, "Discord", a.ID))

		hits, err := core.Collect(svc.Search(ctx, "Discord", "same"))
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, b.ID, hits[0].ID)
		assert.Equal(t, "second, edited", hits[0].Content)
	})

	t.Run("Delete", func(t *testing.T) {
		svc := setup(t)

		cat, err := svc.LoadAll(ctx)
		require.NoError(t, err)
		entries := cat.Entries("Discord")
		require.Len(t, entries, 3)
		victim, survivor := entries[0], entries[2]

		require.NoError(t, svc.Delete(ctx, "Discord", victim.ID))

		cat, err = svc.LoadAll(ctx)
		require.NoError(t, err)
		assert.NotContains(t, IDs(cat.Entries("Discord")), victim.ID)

		// Deleting a preceding sibling must not shift identities.
		require.NoError(t, svc.Update(ctx, "Discord", survivor.ID, survivor.Title, "still addressable"))
		got, err := svc.Get(ctx, "Discord", survivor.ID)
		require.NoError(t, err)
		assert.Equal(t, "still addressable", got.Content)

		err = svc.Delete(ctx, "Discord", victim.ID)
		require.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("Discord Onboarding Scenario", func(t *testing.T) {
		svc := setup(t)

		_, err := svc.LoadAll(ctx)
		require.NoError(t, err)

		_, err = svc.Add(ctx, "Discord", "Onboarding call", "Join at 10am")
		require.NoError(t, err)

		hits, err := core.Collect(svc.Search(ctx, "Discord", "call"))
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "Onboarding call", hits[0].Title)

		require.NoError(t, svc.Update(ctx, "Discord", hits[0].ID, "Onboarding call", "Join at 11am"))

		cat, err := svc.LoadAll(ctx)
		require.NoError(t, err)
		var matches []core.Entry
		for _, e := range cat.Entries("Discord") {
			if e.Title == "Onboarding call" {
				matches = append(matches, e)
			}
		}
		require.Len(t, matches, 1, "no duplicate entries")
		assert.Equal(t, "Join at 11am", matches[0].Content)
		assert.Equal(t, hits[0].ID, matches[0].ID)
	})

	t.Run("Emptied Store Is Not Reseeded", func(t *testing.T) {
		svc := setup(t)

		cat, err := svc.LoadAll(ctx)
		require.NoError(t, err)
		for _, section := range cat.Sections() {
			for _, e := range cat.Entries(section) {
				require.NoError(t, svc.Delete(ctx, section, e.ID))
			}
		}

		cat, err = svc.LoadAll(ctx)
		require.NoError(t, err)
		assert.Zero(t, cat.Len())
	})
}

// Titles returns the titles of entries, in order.
func Titles(entries []core.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Title)
	}
	return out
}

// IDs returns the identities of entries, in order.
func IDs(entries []core.Entry) []core.EntryID {
	out := make([]core.EntryID, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return slices.Clip(out)
}

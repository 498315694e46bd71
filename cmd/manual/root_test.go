package main

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/manual"
	"github.com/aretw0/manual/pkg/core"
)

func TestResolvePath(t *testing.T) {
	saved := projectRoot
	t.Cleanup(func() { projectRoot = saved })

	root := t.TempDir()
	projectRoot = root

	assert.Equal(t, filepath.Join(root, "data", "processes.json"), resolvePath("data/processes.json"))
	assert.Equal(t, "/abs/processes.db", resolvePath("/abs/processes.db"))
	assert.Equal(t, ":memory:", resolvePath(":memory:"))
	assert.Equal(t, "", resolvePath(""))

	projectRoot = ""
	assert.Equal(t, "data/processes.json", resolvePath("data/processes.json"))
}

func TestPrintMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc, err := manual.New("", manual.WithAdapter(manual.AdapterMemory), manual.WithMetrics(reg))
	require.NoError(t, err)
	_, err = svc.LoadAll(t.Context())
	require.NoError(t, err)

	// Output goes to stderr; this guards against panics on real families.
	printMetrics(reg)
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"list", "search", "add", "update", "delete", "logo", "status", "watch", "version"}
	var got []string
	for _, c := range rootCmd.Commands() {
		got = append(got, c.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name)
	}
}

func TestFailedCommandReturnsError(t *testing.T) {
	savedRegistry := registry
	t.Cleanup(func() {
		registry = savedRegistry
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"delete", "Discord", "no-such-id", "--adapter", "memory", "--metrics"})
	err := rootCmd.Execute()
	require.ErrorIs(t, err, core.ErrNotFound)

	// The failed delete is still counted, so Execute can report it.
	require.NotNil(t, registry)
	families, err := registry.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != "manual_operations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["op"] == "delete" && labels["result"] == "not_found" {
				found = m.GetCounter().GetValue() == 1
			}
		}
	}
	assert.True(t, found, "delete/not_found counter should be 1")
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/manual/pkg/adapters/document"
	"github.com/aretw0/manual/pkg/adapters/memory"
	"github.com/aretw0/manual/pkg/adapters/sqlite"
	"github.com/aretw0/manual/pkg/core"
)

var statusDiagram bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the service and storage state as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := openService()
		if err != nil {
			return err
		}
		defer service.Close()

		// Touch the store so the state reflects an initialized adapter.
		if _, err := service.LoadAll(context.Background()); err != nil {
			return fmt.Errorf("failed to load manual: %w", err)
		}

		state, _ := service.State().(core.ServiceState)

		if statusDiagram {
			config := introspection.DefaultDiagramConfig()
			config.SecondaryID = "manual"
			config.SecondaryLabel = "Manual Topology"
			fmt.Println(introspection.TreeDiagram(buildStatusTree(state), config))
			return nil
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(map[string]any{
			"component": service.ComponentType(),
			"state":     state,
		}); err != nil {
			return fmt.Errorf("failed to encode state: %w", err)
		}
		return nil
	},
}

type statusNode struct {
	Name     string
	Status   string
	Metadata map[string]string
	Children []statusNode
}

// buildStatusTree maps the service state onto introspection's tree shape.
// Status values must match the classes of introspection.DefaultStyles().
func buildStatusTree(state core.ServiceState) statusNode {
	repo := statusNode{
		Name:     "Repository",
		Status:   "suspended",
		Metadata: map[string]string{"type": state.RepositoryType},
	}
	if state.Ready {
		repo.Status = "running"
	}

	switch s := state.Repository.(type) {
	case memory.RepositoryState:
		repo.Metadata["sections"] = strconv.Itoa(s.Sections)
		repo.Metadata["entries"] = strconv.Itoa(s.Entries)
	case document.RepositoryState:
		repo.Metadata["path"] = s.Path
		repo.Metadata["format"] = s.Format
		repo.Metadata["writes"] = strconv.Itoa(s.Writes)
		watcher := statusNode{
			Name:     "Watcher",
			Status:   "suspended",
			Metadata: map[string]string{"type": "goroutine"},
		}
		if s.WatcherActive {
			watcher.Status = "running"
		}
		repo.Children = append(repo.Children, watcher)
	case sqlite.RepositoryState:
		repo.Metadata["path"] = s.Path
		repo.Metadata["connections"] = strconv.Itoa(s.OpenConns)
	}

	return statusNode{
		Name:   "Service",
		Status: "running",
		Metadata: map[string]string{
			"type":    "process",
			"metrics": strconv.FormatBool(state.Metrics),
		},
		Children: []statusNode{repo},
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusDiagram, "diagram", false, "Print a Mermaid diagram instead of JSON")
}

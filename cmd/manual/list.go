package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/aretw0/manual/pkg/core"
)

var (
	listJSON     bool
	listSection  string
	listPattern  string
	listContents bool
)

// sectionView is the JSON shape of one listed section.
type sectionView struct {
	Section core.Section `json:"section"`
	Entries []core.Entry `json:"entries"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sections and their processes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listPattern != "" && !doublestar.ValidatePattern(listPattern) {
			return fmt.Errorf("invalid --sections pattern %q", listPattern)
		}

		service, err := openService()
		if err != nil {
			return err
		}
		defer service.Close()

		cat, err := service.LoadAll(context.Background())
		if err != nil {
			return fmt.Errorf("failed to load manual: %w", err)
		}

		var views []sectionView
		for _, section := range cat.Sections() {
			if listSection != "" && section != listSection {
				continue
			}
			if listPattern != "" {
				if ok, _ := doublestar.Match(listPattern, section); !ok {
					continue
				}
			}
			views = append(views, sectionView{Section: section, Entries: cat.Entries(section)})
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(views); err != nil {
				return fmt.Errorf("failed to encode JSON: %w", err)
			}
			return nil
		}

		for i, v := range views {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("## %s (%d)\n", v.Section, len(v.Entries))
			for _, e := range v.Entries {
				printEntry(e, listContents)
			}
		}
		return nil
	},
}

func printEntry(e core.Entry, withContent bool) {
	fmt.Printf("%s  %s\n", e.ID, e.Title)
	if withContent {
		fmt.Printf("    %s\n", e.Content)
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listSection, "section", "", "Only list this section")
	listCmd.Flags().StringVar(&listPattern, "sections", "", "Only list sections matching a glob (e.g. 'Pre-*')")
	listCmd.Flags().BoolVarP(&listContents, "long", "l", false, "Include process contents")
}

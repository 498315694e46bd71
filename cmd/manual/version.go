package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/manual"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of manual",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("manual version %s\n", strings.TrimSpace(manual.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

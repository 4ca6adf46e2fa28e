package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ownergen/internal/version"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionJSON {
			return printJSON(os.Stdout, version.Get())
		}
		fmt.Println(version.Full())
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Output JSON")
	rootCmd.AddCommand(versionCmd)
}

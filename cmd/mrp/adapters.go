// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mrp-cli/internal/runtime"
)

var adaptersCmd = &cobra.Command{
	Use:   "adapters",
	Short: "List available runtime adapters",
	Long: `List the runtime adapters a run config can name in runtime.spec,
marking the configured default.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := runtime.NewDefaultRegistry()

		fmt.Fprintln(os.Stdout, TitleStyle.Render("Runtime adapters"))
		for _, typ := range registry.Types() {
			line := "  " + ValueStyle.Render(string(typ))
			if string(typ) == toolSettings.DefaultAdapter {
				line += SubtitleStyle.Render(" (default)")
			}
			fmt.Fprintln(os.Stdout, line)
		}
		return nil
	},
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openaudit/auditengine/internal/output"
	"github.com/openaudit/auditengine/internal/update"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var flagCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "auditengine %s (commit: %s)\n", Version, Commit)
		if !flagCheck {
			return nil
		}

		r, err := update.CheckLatest(cmd.Context(), Version)
		if err != nil {
			return fmt.Errorf("checking for updates: %w", err)
		}
		switch {
		case r == nil:
			fmt.Fprintln(w, "development build, update check skipped")
		case r.NeedsUpdate():
			fmt.Fprintf(w, "update available: %s\n  %s\n", r.Latest, r.InstallCmd)
		default:
			fmt.Fprintln(w, "up to date")
		}
		return nil
	},
}

func init() {
	output.ToolVersion = Version
	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}

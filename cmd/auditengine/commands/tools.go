package commands

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openaudit/auditengine"
)

// defaultBinaries maps slots to the executable their built-in adapter runs.
var defaultBinaries = map[string]string{
	"slither": "slither",
	"mythril": "myth",
	"echidna": "echidna",
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List adapter slots and whether their tools are installed",
	RunE:  runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

type toolInfo struct {
	Slot      string `json:"slot"`
	Kind      string `json:"kind"`
	Binary    string `json:"binary,omitempty"`
	Installed bool   `json:"installed"`
}

func runTools(cmd *cobra.Command, args []string) error {
	var infos []toolInfo
	for _, slot := range auditengine.Slots() {
		info := toolInfo{Slot: slot, Kind: auditengine.SlotKind(slot), Binary: defaultBinaries[slot]}
		if info.Binary == "" {
			// Built in, or configured per run.
			info.Installed = true
		} else if _, err := exec.LookPath(info.Binary); err == nil {
			info.Installed = true
		}
		infos = append(infos, info)
	}

	w := cmd.OutOrStdout()

	if strings.ToLower(viper.GetString("format")) == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "SLOT\tKIND\tBINARY\tINSTALLED\n")
	fmt.Fprintf(tw, "----\t----\t------\t---------\n")
	for _, info := range infos {
		bin := info.Binary
		if bin == "" {
			bin = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", info.Slot, info.Kind, bin, info.Installed)
	}
	return tw.Flush()
}

package commands

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "auditengine",
	Short: "Orchestrates smart-contract vulnerability tools",
	Long: `auditengine runs static analyzers, a property tester and a fuzzer against a
contract, scores the static findings, and prints one combined report. A tool
that fails is reported in the errors section; the audit still completes.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "auditengine.yaml", "Engine configuration file (YAML or JSON)")
	pf.String("format", "json", "Output format (json, terminal, markdown, sarif)")
	pf.StringP("output", "o", "", "Output file path (default: stdout)")
	pf.Bool("no-color", false, "Disable colored output")
	pf.Bool("debug", false, "Enable debug logging")

	for _, name := range []string{"config", "format", "output", "no-color", "debug"} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}

	// Environment variable support (AUDITENGINE_CONFIG, AUDITENGINE_TIMEOUT, etc.)
	viper.SetEnvPrefix("AUDITENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the CLI's text logger. Warnings only, unless --debug.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if viper.GetBool("debug") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

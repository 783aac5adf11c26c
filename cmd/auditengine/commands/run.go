package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openaudit/auditengine"
	"github.com/openaudit/auditengine/internal/output"
)

// ErrToolFailures is returned by "run --strict" when any tool failed.
var ErrToolFailures = errors.New("one or more tools failed")

var runCmd = &cobra.Command{
	Use:   "run <target>",
	Short: "Audit a contract file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudit,
}

func init() {
	runCmd.Flags().Duration("timeout", 0, "Per-tool timeout, overrides the configuration (e.g. 90s, 10m)")
	runCmd.Flags().Bool("strict", false, "Exit with code 1 when any tool reports an error")
	runCmd.Flags().Bool("no-progress", false, "Do not show the progress spinner")
	for _, name := range []string{"timeout", "strict", "no-progress"} {
		_ = viper.BindPFlag(name, runCmd.Flags().Lookup(name))
	}
	rootCmd.AddCommand(runCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	target := args[0]
	stderr := cmd.ErrOrStderr()

	opts := []auditengine.Option{auditengine.WithLogger(newLogger(stderr))}
	if d := viper.GetDuration("timeout"); d > 0 {
		opts = append(opts, auditengine.WithTimeout(d))
	}

	var sp *output.Spinner
	if !viper.GetBool("no-progress") && isTerminal(stderr) {
		sp = output.NewSpinner(stderr, len(auditengine.Slots()))
		opts = append(opts, auditengine.WithProgress(sp.Observe))
	}

	eng, err := auditengine.New(viper.GetString("config"), opts...)
	if err != nil {
		return err
	}

	ctx, cancel := contextWithInterrupt(cmd.Context())
	defer cancel()

	if sp != nil {
		sp.Start("Starting audit...")
	}
	rep, err := eng.Run(ctx, target)
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return err
	}

	if err := writeOutput(cmd.OutOrStdout(), rep); err != nil {
		return err
	}

	if viper.GetBool("strict") && rep.HasErrors() {
		return fmt.Errorf("%w: %v", ErrToolFailures, rep.FailedTools())
	}
	return nil
}

func contextWithInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt)
}

func writeOutput(stdout io.Writer, rep *auditengine.Report) error {
	formatter := output.ForName(viper.GetString("format"), viper.GetBool("no-color") || os.Getenv("NO_COLOR") != "")

	w := stdout
	if path := viper.GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	return formatter.Format(w, rep)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

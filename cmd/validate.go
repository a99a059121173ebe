package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var validateJob string

// validateCmd checks a job file without reading any source.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a job definition",
	Long: `Parse a job file strictly and check its configuration (sources, policy,
cardinality, rules, exceptions and output) without opening any source.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateJob, "job", "", "Job file or job name in the jobs directory")
	_ = validateCmd.MarkFlagRequired("job")

	RootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	def, err := a.loadJob(validateJob)
	if err != nil {
		return err
	}

	// Jobs over database tables are checked without connecting.
	if !def.NeedsDatabase(a.cfg.Reconcile) {
		runCfg, err := def.RunConfig(a.env())
		if err != nil {
			return err
		}
		if err := runCfg.Validate(); err != nil {
			return err
		}
	}
	if _, err := def.Destination(a.cfg.Reconcile, def.Output); err != nil {
		return err
	}

	a.log.Info("Job is valid",
		zap.String("job", def.Name),
		zap.String("file", def.File),
		zap.Bool("needs_database", def.NeedsDatabase(a.cfg.Reconcile)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", def.Name)
	return nil
}

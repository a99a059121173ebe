package cmd

import (
	"context"
	"fmt"
	"os"

	"sheet-reconciler/core/job"
	"sheet-reconciler/core/reconcile"
	"sheet-reconciler/core/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the reconcile command
	reconcileJob    string
	reconcileFormat string
	reconcileOut    string
	reconcileUpload string
	reconcileStrict bool
)

// reconcileCmd runs one job and writes its report.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run a reconciliation job and write its report",
	Long: `Run a reconciliation job: read both sources, melt them into facts, compare them
attribute by attribute and apply the exception table.

The report goes to the job's output section, overridden by --out and --upload.
Without any destination it is written to stdout.

Examples:
  # Run a job file, print a console table
  reconcile --job jobs/regions.yaml

  # Run a job from the jobs directory by name, write an xlsx report
  reconcile --job regions --out reports/regions.xlsx

  # Upload a csv report and fail when discrepancies remain
  reconcile --job regions --format csv --upload s3://reports/regions.csv --strict`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileJob, "job", "", "Job file or job name in the jobs directory")
	reconcileCmd.Flags().StringVar(&reconcileFormat, "format", "", "Report format (table, csv, json, yaml, xlsx)")
	reconcileCmd.Flags().StringVar(&reconcileOut, "out", "", "Write the report to this file")
	reconcileCmd.Flags().StringVar(&reconcileUpload, "upload", "", "Upload the report to this s3:// location")
	reconcileCmd.Flags().BoolVar(&reconcileStrict, "strict", false, "Exit with an error when discrepancies remain")
	_ = reconcileCmd.MarkFlagRequired("job")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	def, err := a.loadJob(reconcileJob)
	if err != nil {
		return err
	}
	if def.NeedsDatabase(a.cfg.Reconcile) {
		if _, err := a.connect(); err != nil {
			return err
		}
	}

	l := a.log.With(zap.String("job", def.Name))
	l.Info("Starting reconciliation", zap.String("file", def.File))

	res, err := def.Execute(ctx, a.env(), l)
	if err != nil {
		return fmt.Errorf("failed to run job: %w", err)
	}
	printReconcileReport(l, res)

	dst, err := def.Destination(a.cfg.Reconcile, job.Output{
		Format: reconcileFormat,
		Path:   reconcileOut,
		Upload: reconcileUpload,
	})
	if err != nil {
		return err
	}

	if dst.Path == "" && dst.Upload == "" {
		if err := report.New(dst.Format, dst.PageSize).Write(os.Stdout, res); err != nil {
			return err
		}
	} else {
		written, err := job.Publish(ctx, res, dst, a.client, a.cfg.Storage.Bucket)
		for _, w := range written {
			l.Info("Report written", zap.String("location", w))
		}
		if err != nil {
			return fmt.Errorf("failed to publish report: %w", err)
		}
	}

	if reconcileStrict && res.Summary.Records > 0 {
		return fmt.Errorf("%d discrepancies remain", res.Summary.Records)
	}
	return nil
}

// printReconcileReport logs the summary, the issues and a sample of the records.
func printReconcileReport(l *zap.Logger, res *reconcile.Result) {
	s := res.Summary

	l.Info("Reconciliation report",
		zap.String("run_id", res.RunID),
		zap.Int("entities_a", s.EntitiesA),
		zap.Int("entities_b", s.EntitiesB),
		zap.Int("shared_entities", s.SharedEntities),
		zap.Int("records", s.Records),
		zap.Int("missing_in_a", s.MissingInA),
		zap.Int("missing_in_b", s.MissingInB),
		zap.Int("suppressed", s.Suppressed),
		zap.Duration("took", res.FinishedAt.Sub(res.StartedAt)),
	)

	for _, issue := range res.Issues {
		issue.Log(l)
	}

	maxShow := min(5, len(res.Records))
	for _, r := range res.Records[:maxShow] {
		l.Debug("Sample discrepancy",
			zap.String("key", r.Key),
			zap.String("missing_in", string(r.MissingIn)),
		)
	}
	if len(res.Records) > maxShow {
		l.Debug("Additional discrepancies not shown", zap.Int("count", len(res.Records)-maxShow))
	}
}

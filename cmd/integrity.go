package cmd

import (
	"context"
	"fmt"

	"sheet-reconciler/core/job"
	"sheet-reconciler/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check what the jobs depend on",
	Long: `Checks that the storage buckets exist, that every job's locations, tables and
columns resolve, and that the exception table matches its model. No source is read.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true, true)
	},
}

// storageCmd represents the integrity storage command
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix storage buckets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false, false)
	},
}

// jobsCmd represents the integrity jobs command
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Check job files and the locations they read",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true, false)
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the exception table schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(storageCmd, jobsCmd, schemaCmd)

	storageCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing buckets")
}

func runIntegrityChecks(ctx context.Context, runStorage, runJobs, runSchema bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	logg := a.log
	defer logg.Sync() //nolint:errcheck

	// Connect to Database (Optional)
	if _, err := a.connect(); err != nil {
		logg.Warn("Optional database connection failed", zap.Error(err))
	}

	svc := integrity.NewService(a.client, a.cfg.Storage.Bucket, logg, a.db, job.NewCatalog(a.cfg.Reconcile.JobsDir))
	failed := false

	if runStorage {
		logg.Info("Checking storage buckets...")
		missing, err := svc.CheckStorage(ctx)
		if err != nil {
			return fmt.Errorf("storage check failed: %w", err)
		}

		if len(missing) == 0 {
			logg.Info("Storage is intact.")
		} else {
			logg.Warn("Missing buckets detected", zap.Strings("missing", missing))

			if fixFlag {
				logg.Info("Creating missing buckets...")
				if err := svc.FixStorage(ctx, missing); err != nil {
					return fmt.Errorf("failed to fix storage: %w", err)
				}
				logg.Info("Storage fixed successfully.")
			} else {
				failed = true
				logg.Info("Run 'integrity storage --fix' to create missing buckets.")
			}
		}
	}

	if runJobs {
		logg.Info("Checking jobs...", zap.String("jobs_dir", a.cfg.Reconcile.JobsDir))
		reports, err := svc.CheckJobs(ctx)
		if err != nil {
			return fmt.Errorf("jobs check failed: %w", err)
		}
		for _, r := range reports {
			if r.Status == "ok" {
				logg.Info("Job is ready", zap.String("job", r.Name))
				continue
			}
			failed = true
			logg.Warn("Job has problems", zap.String("job", r.Name), zap.String("file", r.File), zap.Strings("errors", r.Errors))
		}
	}

	if runSchema {
		logg.Info("Checking database schema...")
		report, err := svc.CheckSchema()
		if err != nil {
			logg.Error("Schema check failed", zap.Error(err))
			failed = true
		} else if report.Matched {
			logg.Info("Database schema matches expected definition.", zap.String("driver", report.Driver))
		} else {
			failed = true
			logg.Warn("Database schema mismatches found", zap.String("driver", report.Driver))
			for table, tblReport := range report.Tables {
				if tblReport.Status == "missing" {
					logg.Warn("Missing table", zap.String("table", table))
				}
				if len(tblReport.MissingColumns) > 0 {
					logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tblReport.MissingColumns))
				}
				if len(tblReport.TypeMismatches) > 0 {
					logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tblReport.TypeMismatches))
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}
	}

	if failed {
		return fmt.Errorf("integrity checks failed")
	}
	return nil
}

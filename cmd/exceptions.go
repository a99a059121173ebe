package cmd

import (
	"context"
	"fmt"
	"os"

	"sheet-reconciler/core/exception"
	"sheet-reconciler/core/job"
	"sheet-reconciler/core/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the exceptions import command
	importFile     string
	importSheets   []string
	importKind     string
	importKeyCol   string
	importHideCol  string
	importComments []string
)

// exceptionsCmd is the parent command for the stored exception table.
var exceptionsCmd = &cobra.Command{
	Use:   "exceptions",
	Short: "Manage the exception table stored in the database",
}

// exceptionsImportCmd loads an exception sheet into the database.
var exceptionsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import exceptions from a workbook or csv file",
	Long: `Read exception rows (key, hide, comments) from a workbook, csv file or archive
and upsert them into the exceptions table. Rows are matched by key; the first of a
repeated key wins.

Examples:
  exceptions import --file exceptions.xlsx --sheet Exceptions
  exceptions import --file s3://reference/exceptions.csv --key "Exception Key"`,
	RunE: runExceptionsImport,
}

// exceptionsListCmd prints the stored exception table.
var exceptionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored exceptions",
	RunE:  runExceptionsList,
}

func init() {
	exceptionsImportCmd.Flags().StringVar(&importFile, "file", "", "Exception file (local path or s3:// location)")
	exceptionsImportCmd.Flags().StringSliceVar(&importSheets, "sheet", nil, "Workbook sheets to read (default: all)")
	exceptionsImportCmd.Flags().StringVar(&importKind, "kind", "", "Source kind when it cannot be inferred (xlsx, csv, zip)")
	exceptionsImportCmd.Flags().StringVar(&importKeyCol, "key", "", "Key column (default \"Key\")")
	exceptionsImportCmd.Flags().StringVar(&importHideCol, "hide", "", "Hide column (default \"Hide\")")
	exceptionsImportCmd.Flags().StringSliceVar(&importComments, "comments", nil, "Comment columns (default \"Comments\")")
	_ = exceptionsImportCmd.MarkFlagRequired("file")

	exceptionsCmd.AddCommand(exceptionsImportCmd)
	exceptionsCmd.AddCommand(exceptionsListCmd)
	RootCmd.AddCommand(exceptionsCmd)
}

func runExceptionsImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	db, err := a.connect()
	if err != nil {
		return err
	}

	src, err := job.OpenExceptions(job.Exceptions{
		Kind:     job.Kind(importKind),
		Location: importFile,
		Sheets:   importSheets,
	}, a.env())
	if err != nil {
		return err
	}

	cols := exception.Columns{Key: importKeyCol, Hide: importHideCol, Comments: importComments}
	entries, issues := exception.Entries(ctx, src, cols, a.log)
	if len(entries) == 0 && len(issues) > 0 {
		return fmt.Errorf("no exceptions imported: %w", issues[0].Err())
	}

	store := exception.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	n, err := store.Upsert(ctx, entries)
	if err != nil {
		return err
	}

	a.log.Info("Exceptions imported",
		zap.String("file", importFile),
		zap.Int("rows", len(entries)),
		zap.Int("saved", n),
		zap.Int("issues", len(issues)),
	)
	return nil
}

func runExceptionsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.log.Sync() //nolint:errcheck

	db, err := a.connect()
	if err != nil {
		return err
	}

	entries, err := exception.NewStore(db).All(ctx)
	if err != nil {
		return err
	}
	return report.WriteExceptions(os.Stdout, entries)
}

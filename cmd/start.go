package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"sheet-reconciler/core/database"
	"sheet-reconciler/core/job"
	"sheet-reconciler/core/loader"
	"sheet-reconciler/core/logger"
	"sheet-reconciler/core/middleware/auth"
	"sheet-reconciler/core/middleware/rayid"
	"sheet-reconciler/core/source"

	"sheet-reconciler/feature/exceptions"
	"sheet-reconciler/feature/integrity"
	"sheet-reconciler/feature/reconciliation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "sheet-reconciler/docs/swagger"
)

// @title Sheet Reconciler API
// @version 1.0
// @description API for running reconciliation jobs, managing the exception table and checking job dependencies.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the reconciliation server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Configuration, logger and storage
		a, err := bootstrap()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := a.log
		defer logg.Sync() //nolint:errcheck
		zap.ReplaceGlobals(logg)

		// 2. Connect to Database (Optional)
		// Table sources and the exception store need it; csv and workbook jobs do not.
		if conn, err := database.Connect(a.cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			a.db = conn
			logg.Info("Connected to database", zap.String("driver", a.cfg.Database.Driver))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             a.cfg.Server.BodyLimit(),
		})

		// 3. Register Features
		mgr := loader.NewManager()
		env := job.Env{
			Fetcher: source.NewFetcher(a.client, a.cfg.Storage.Bucket),
			DB:      a.db,
			Config:  a.cfg.Reconcile,
		}
		catalog := job.NewCatalog(a.cfg.Reconcile.JobsDir)
		mgr.Register(reconciliation.NewFeature(catalog, env, a.client, a.cfg.Storage.Bucket, logg))
		mgr.Register(exceptions.NewFeature(a.db, logg))
		mgr.Register(integrity.NewFeature(a.client, a.cfg.Storage.Bucket, logg, a.db, catalog))

		// 4. Middleware
		// RayID first so every log line of a request can be traced.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger documentation is public.
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))

		// 5. Load Features
		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded), zap.String("jobs_dir", catalog.Dir()))

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("address", a.cfg.Server.Address()))
			if err := app.Listen(a.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}

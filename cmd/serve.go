package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Journera/glutil/core/catalog"
	"github.com/Journera/glutil/core/config"
	"github.com/Journera/glutil/core/loader"
	"github.com/Journera/glutil/core/logger"
	"github.com/Journera/glutil/core/middleware/auth"
	"github.com/Journera/glutil/core/middleware/requestid"
	"github.com/Journera/glutil/core/storage"
	"github.com/Journera/glutil/feature/trigger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/Journera/glutil/docs/swagger"
)

// @title glutil trigger API
// @version 1.0
// @description Creates Glue partitions for the data found in S3.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP trigger",
	Long:  `Starts an HTTP server that creates partitions on request, e.g. from a scheduler.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return err
		}
		if profile != "" {
			cfg.AWS.Profile = profile
		}
		if region != "" {
			cfg.AWS.Region = region
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return err
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Open the journal (optional)
		applier := newApplier(cfg, logg)

		svc := trigger.NewService(
			func(ctx context.Context, p string) (catalog.API, storage.Lister, error) {
				return clientFactory(ctx, cfg, p)
			},
			applier,
			logg,
			cfg.Server.Timeout(),
			cfg.Server.ResultTTL(),
		)

		// 4. Build the app and load features
		app, err := newServer(cfg, logg, svc)
		if err != nil {
			return err
		}

		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 5. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		select {
		case <-c:
		case <-cmd.Context().Done():
		}
		logg.Info("Shutting down server...")
		return app.Shutdown()
	},
}

// newServer creates the fiber app with its middleware chain and features.
func newServer(cfg *config.Config, logg *zap.Logger, svc *trigger.Service) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Request id first so every log line can carry it.
	app.Use(requestid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRequestID(logg, c)
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

	// Swagger documentation (public)
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Use(auth.New(auth.Config{
		ApiKey: cfg.Server.ApiKey,
		Skip:   []string{trigger.HealthPath},
	}))

	mgr := loader.NewManager()
	mgr.Register(trigger.NewFeature(svc))

	loaded, err := mgr.LoadAll(app)
	if err != nil {
		return nil, err
	}
	logg.Info("Features loaded", zap.Strings("features", loaded))

	return app, nil
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	submissionstore "github.com/dalemusser/stratatools/internal/app/store/submissions"
	"github.com/dalemusser/stratatools/internal/app/system/seeding"
	"github.com/dalemusser/stratatools/internal/app/system/tasks"
	"github.com/dalemusser/stratatools/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// It applies timeout overrides from the environment, seeds an empty catalog
// from seed_file, and starts the background task runner. Returning an error
// aborts startup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts configured from environment",
			zap.Int("overrides", n),
			zap.Any("timeouts", timeouts.Current()))
	}

	if appCfg.SeedFile != "" {
		logger.Info("applying seed file", zap.String("path", appCfg.SeedFile))
		if err := seeding.SeedAll(ctx, deps.MongoDatabase, appCfg.SeedFile, logger); err != nil {
			logger.Error("failed to seed catalog", zap.Error(err))
			return err
		}
	}

	startTaskRunner(appCfg, deps, logger)

	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger, deps.Metrics)

	taskRunner.Register(tasks.SubmissionArchiveJob(
		submissionstore.New(deps.MongoDatabase),
		appCfg.SubmissionRetention,
		logger,
	))

	taskRunner.Start()
}

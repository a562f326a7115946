// Package wire provides dependency injection for the VintageVoice application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"

	cliadapter "github.com/example/vintagevoice/internal/adapters/cli"
	"github.com/example/vintagevoice/internal/adapters/filesystem"
	"github.com/example/vintagevoice/internal/adapters/persistence"
	"github.com/example/vintagevoice/internal/adapters/sqlite"
	"github.com/example/vintagevoice/internal/app"
	"github.com/example/vintagevoice/internal/clock"
	"github.com/example/vintagevoice/internal/config"
	"github.com/example/vintagevoice/internal/db"
	"github.com/example/vintagevoice/internal/logging"
	"github.com/example/vintagevoice/internal/ports/primary"
	"github.com/example/vintagevoice/internal/ports/secondary"
)

var (
	cfg      *config.Config
	logger   *slog.Logger
	database *sql.DB
	blobs    secondary.BlobStore
	identity secondary.IdentityProvider

	letterService       primary.LetterService
	promptService       primary.PromptService
	ledgerService       primary.LedgerService
	profileService      primary.ProfileService
	notificationService primary.NotificationService

	once sync.Once
)

// Config returns the process configuration, loaded from the working directory.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	once.Do(initServices)
	return logger
}

// Database returns the open database handle.
func Database() *sql.DB {
	once.Do(initServices)
	return database
}

// BlobStore returns the audio blob store.
func BlobStore() secondary.BlobStore {
	once.Do(initServices)
	return blobs
}

// Identity returns the identity provider used to resolve the acting user.
func Identity() secondary.IdentityProvider {
	once.Do(initServices)
	return identity
}

// LetterService returns the singleton LetterService instance.
func LetterService() primary.LetterService {
	once.Do(initServices)
	return letterService
}

// PromptService returns the singleton PromptService instance.
func PromptService() primary.PromptService {
	once.Do(initServices)
	return promptService
}

// LedgerService returns the singleton LedgerService instance.
func LedgerService() primary.LedgerService {
	once.Do(initServices)
	return ledgerService
}

// ProfileService returns the singleton ProfileService instance.
func ProfileService() primary.ProfileService {
	once.Do(initServices)
	return profileService
}

// NotificationService returns the singleton NotificationService instance.
func NotificationService() primary.NotificationService {
	once.Do(initServices)
	return notificationService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	dir, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to get working directory: %v", err)
	}

	cfg, err = config.Load(dir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger = logging.New(cfg, os.Stderr)

	catalog := config.DefaultPromptCatalog()
	if cfg.PromptCatalog != "" {
		if catalog, err = config.LoadPromptCatalog(cfg.PromptCatalog); err != nil {
			log.Fatalf("failed to load prompt catalog: %v", err)
		}
	}

	dbPath, err := cfg.ResolvedDBPath()
	if err != nil {
		log.Fatalf("failed to resolve database path: %v", err)
	}
	database, err = db.Open(cfg.DBDriver, dbPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	blobDir, err := cfg.ResolvedBlobDir()
	if err != nil {
		log.Fatalf("failed to resolve blob directory: %v", err)
	}
	store, err := filesystem.NewBlobStore(blobDir)
	if err != nil {
		log.Fatalf("failed to initialize blob store: %v", err)
	}
	blobs = store

	clk := clock.System{}
	locks := app.NewLocks()

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	tx := sqlite.NewTransactor(database)
	letterRepo := sqlite.NewLetterRepository(database)
	profileRepo := sqlite.NewProfileRepository(database)
	stampRepo := sqlite.NewStampRepository(database)
	promptRepo := sqlite.NewPromptRepository(database)
	outbox := sqlite.NewNotificationOutbox(database, clk)
	identity = persistence.NewIdentityProvider(profileRepo, cfg.UserID)

	var notifier secondary.Notifier
	if cfg.NotificationsEnabled {
		notifier = outbox
	}

	// Create services (primary ports implementation)
	ledger := app.NewLedgerService(tx, profileRepo, stampRepo, clk, locks, logger)
	letters := app.NewLetterService(tx, letterRepo, identity, ledger, notifier, blobs, clk, locks, logger)
	ledgerService = ledger
	letterService = letters
	promptService = app.NewPromptService(tx, promptRepo, profileRepo, letterRepo, letters, ledger, notifier, clk, locks, catalog, logger)
	profileService = app.NewProfileService(tx, profileRepo, clk, locks, logger)
	notificationService = app.NewNotificationService(outbox, clk)
}

// Close releases the database connection if it was opened.
func Close() error {
	if database == nil {
		return nil
	}
	return database.Close()
}

// DeliverySweeper returns a new sweeper on the configured interval.
func DeliverySweeper() *app.PeriodicRunner {
	once.Do(initServices)
	return app.NewDeliverySweeper(letterService, cfg.SweepInterval.Std(), logger)
}

// PromptCron returns a new prompt cron on the configured interval.
func PromptCron() *app.PeriodicRunner {
	once.Do(initServices)
	return app.NewPromptCron(promptService, cfg.PromptInterval.Std(), logger)
}

// PlaybackPump returns a new playback event pump.
func PlaybackPump() *app.PlaybackPump {
	once.Do(initServices)
	return app.NewPlaybackPump(letterService, 64, logger)
}

// LetterAdapter returns a new LetterAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func LetterAdapter() *cliadapter.LetterAdapter {
	return LetterAdapterWithOutput(os.Stdout)
}

// LetterAdapterWithOutput returns a new LetterAdapter writing to the given output.
func LetterAdapterWithOutput(out io.Writer) *cliadapter.LetterAdapter {
	once.Do(initServices)
	return cliadapter.NewLetterAdapter(letterService, out)
}

// PromptAdapter returns a new PromptAdapter writing to stdout.
func PromptAdapter() *cliadapter.PromptAdapter {
	once.Do(initServices)
	return cliadapter.NewPromptAdapter(promptService, os.Stdout)
}

// ProfileAdapter returns a new ProfileAdapter writing to stdout.
func ProfileAdapter() *cliadapter.ProfileAdapter {
	once.Do(initServices)
	return cliadapter.NewProfileAdapter(profileService, ledgerService, os.Stdout)
}

// NotificationAdapter returns a new NotificationAdapter writing to stdout.
func NotificationAdapter() *cliadapter.NotificationAdapter {
	once.Do(initServices)
	return cliadapter.NewNotificationAdapter(notificationService, os.Stdout)
}

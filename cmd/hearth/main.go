// Hearth Core - Home Automation Hub
//
// This is the main entry point for the Hearth Core application.
// Hearth is a local-first home automation hub designed around:
//   - Coordinated polling with shared refresh cycles per data source
//   - Push updates over MQTT for event-driven devices
//   - Offline-first operation with a local SQLite state store
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/hearthhome/hearth-core/migrations"

	"github.com/hearthhome/hearth-core/internal/api"
	"github.com/hearthhome/hearth-core/internal/entity"
	"github.com/hearthhome/hearth-core/internal/infrastructure/config"
	"github.com/hearthhome/hearth-core/internal/infrastructure/database"
	"github.com/hearthhome/hearth-core/internal/infrastructure/logging"
	"github.com/hearthhome/hearth-core/internal/infrastructure/metrics"
	"github.com/hearthhome/hearth-core/internal/infrastructure/mqtt"
	"github.com/hearthhome/hearth-core/internal/integration"
	"github.com/hearthhome/hearth-core/internal/integrations/mqttsensor"
	"github.com/hearthhome/hearth-core/internal/integrations/sysmon"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// historyPruneInterval is how often expired state history rows are removed.
const historyPruneInterval = time.Hour

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // Startup wiring is sequential and clearest in one place
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Hearth Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Initialise entity registry with SQLite-backed state history
	historyRepo := entity.NewSQLiteStateHistoryRepository(db.DB)
	registry := entity.NewRegistry()
	registry.SetLogger(log)
	registry.SetHistory(historyRepo)

	// Prune old history rows in the background
	go pruneHistoryLoop(ctx, historyRepo, cfg.GetHistoryRetention(), log)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled; push integrations and commands unavailable")
	}

	// Connect to InfluxDB for refresh metrics (optional)
	var metricsClient *metrics.Client
	if cfg.InfluxDB.Enabled {
		metricsClient, err = metrics.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to metrics store: %w", err)
		}
		defer func() {
			log.Info("closing metrics connection")
			if closeErr := metricsClient.Close(); closeErr != nil {
				log.Error("error closing metrics client", "error", closeErr)
			}
		}()
		metricsClient.SetOnError(func(err error) {
			log.Error("metrics write error", "error", err)
		})
		log.Info("metrics store connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("metrics store disabled")
	}

	// Integration manager owns coordinator lifecycles
	manager := integration.NewManager()
	manager.SetLogger(log)
	defer func() {
		log.Info("shutting down integrations")
		manager.Shutdown()
	}()

	// Built-in host monitor integration
	if cfg.Integrations.Sysmon.Enabled {
		inst, sysErr := sysmon.New(registry, sysmon.Options{
			Interval: cfg.GetSysmonInterval(),
			Logger:   log,
		})
		if sysErr != nil {
			return fmt.Errorf("creating host monitor: %w", sysErr)
		}
		if setupErr := manager.Setup(ctx, inst); setupErr != nil {
			return fmt.Errorf("starting host monitor: %w", setupErr)
		}
		log.Info("host monitor started", "id", inst.ID, "interval", cfg.GetSysmonInterval())
	}

	// MQTT sensor integration (push)
	if cfg.Integrations.MQTTSensor.Enabled {
		if mqttClient == nil {
			return fmt.Errorf("mqtt_sensor integration requires MQTT to be enabled")
		}
		inst, sensErr := mqttsensor.New(registry, mqttClient, mqttsensor.Options{
			QoS:     byte(cfg.MQTT.QoS),
			Sensors: cfg.Integrations.MQTTSensor.Sensors,
			Logger:  log,
		})
		if sensErr != nil {
			return fmt.Errorf("creating mqtt sensors: %w", sensErr)
		}
		if setupErr := manager.Setup(ctx, inst); setupErr != nil {
			return fmt.Errorf("starting mqtt sensors: %w", setupErr)
		}
		log.Info("mqtt sensors started", "id", inst.ID, "sensors", len(cfg.Integrations.MQTTSensor.Sensors))

		// Broker connectivity drives sensor availability: a dropped broker
		// means push updates have stopped, even though the process is fine.
		sensorID := inst.ID
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
			registry.SetAvailability(sensorID, true)
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
			registry.SetAvailability(sensorID, false)
		})
	} else if mqttClient != nil {
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	}

	// Commander executes entity commands over MQTT with poll-back confirmation
	var commander *entity.Commander
	if mqttClient != nil {
		commander = entity.NewCommander(registry, mqttClient, manager, mqtt.Topics{}.EntityCommand, byte(cfg.MQTT.QoS))
		commander.SetLogger(log)
	}

	// Sample coordinator health into the metrics store
	if metricsClient != nil {
		sampler := metrics.NewSampler(metricsClient, func() []metrics.RefreshObservation {
			statuses := manager.List()
			observations := make([]metrics.RefreshObservation, 0, len(statuses))
			for _, status := range statuses {
				inst, instErr := manager.Get(status.ID)
				if instErr != nil {
					continue
				}
				observations = append(observations, metrics.RefreshObservation{
					Integration:   status.Name,
					Kind:          status.Kind,
					Success:       status.Healthy,
					CycleDuration: inst.Coordinator().LastCycleDuration(),
					Error:         status.LastError,
				})
			}
			return observations
		}, 0)
		go sampler.Run(ctx)
		log.Info("refresh metrics sampler started")
	}

	// Start API server
	server, err := api.New(api.Deps{
		Config:    cfg.API,
		WS:        cfg.WebSocket,
		Security:  cfg.Security,
		Logger:    log,
		Manager:   manager,
		Registry:  registry,
		Commander: commander,
		History:   historyRepo,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Entity state changes fan out to WebSocket clients through the hub
	registry.SetNotifier(server.Hub())

	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, metricsClient, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. Integrations
	// 3. Metrics (if enabled)
	// 4. MQTT (if enabled)
	// 5. Database

	log.Info("Hearth Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses HEARTH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HEARTH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - metricsClient: Metrics client to check (may be nil if disabled)
//   - server: API server to check
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, metricsClient *metrics.Client, server *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if metricsClient != nil {
		if err := metricsClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	return nil
}

// pruneHistoryLoop removes state history rows older than the retention
// window, once per hour until the context is cancelled.
func pruneHistoryLoop(ctx context.Context, repo entity.StateHistoryRepository, retention time.Duration, log *logging.Logger) {
	if retention <= 0 {
		return
	}

	ticker := time.NewTicker(historyPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := repo.PruneHistory(ctx, retention)
			if err != nil {
				log.Error("history prune failed", "error", err)
				continue
			}
			if removed > 0 {
				log.Info("pruned state history", "rows", removed)
			}
		}
	}
}

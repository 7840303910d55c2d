package cli

import (
	"context"

	"github.com/patlytics/patscope/internal/application/export"
	"github.com/patlytics/patscope/internal/application/insight"
	"github.com/patlytics/patscope/internal/domain/citation"
	"github.com/patlytics/patscope/internal/domain/dataset"
	"github.com/patlytics/patscope/internal/domain/geography"
	"github.com/patlytics/patscope/internal/infrastructure/database/postgres"
	"github.com/patlytics/patscope/internal/infrastructure/database/postgres/repositories"
	"github.com/patlytics/patscope/internal/infrastructure/database/redis"
	"github.com/patlytics/patscope/internal/infrastructure/messaging/kafka"
	"github.com/patlytics/patscope/internal/infrastructure/storage/minio"
)

// appDeps holds the infrastructure handles a command wires together.  close
// releases them in reverse construction order.
type appDeps struct {
	conn     *postgres.Connection
	runs     *repositories.RunRepository
	pipeline *insight.Pipeline

	redisClient *redis.Client
	producer    *kafka.Producer
}

func (d *appDeps) close() {
	if d.producer != nil {
		_ = d.producer.Close()
	}
	if d.redisClient != nil {
		_ = d.redisClient.Close()
	}
	if d.conn != nil {
		d.conn.Close()
	}
}

// openDatabase connects to PostgreSQL and builds the run repository.
func openDatabase(ctx context.Context, cliCtx *CLIContext) (*postgres.Connection, *repositories.RunRepository, error) {
	conn, err := postgres.NewConnection(ctx, cliCtx.Config.Database, cliCtx.Logger)
	if err != nil {
		return nil, nil, err
	}
	runs := repositories.NewRunRepository(conn.Pool(), cliCtx.Config.Database.QueryTimeout, cliCtx.Logger)
	return conn, runs, nil
}

// buildPipeline wires the full analysis pipeline from configuration.
// Optional backends (redis, kafka, minio) are attached only when enabled;
// a failure to reach an optional backend is fatal here because the operator
// explicitly asked for it.
func buildPipeline(ctx context.Context, cliCtx *CLIContext, progress bool) (*appDeps, error) {
	cfg := cliCtx.Config
	log := cliCtx.Logger

	conn, runs, err := openDatabase(ctx, cliCtx)
	if err != nil {
		return nil, err
	}
	deps := &appDeps{conn: conn, runs: runs}

	timeout := cfg.Database.QueryTimeout
	pipelineDeps := insight.Deps{
		Builder: dataset.NewBuilder(
			repositories.NewApplicationRepository(conn.Pool(), timeout, log), log),
		Fetcher: citation.NewFetcher(
			repositories.NewCitationRepository(conn.Pool(), timeout, log), log),
		Enricher: geography.NewEnricher(
			repositories.NewApplicantRepository(conn.Pool(), timeout, log), cfg.Geo.Regions, log),
		Thresholds: cfg.Scoring,
		Runs:       runs,
		Exporter:   export.NewExporter(cfg.Export, log),
		Logger:     log,
		Progress:   progress,
	}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			deps.close()
			return nil, err
		}
		deps.redisClient = client
		var opts []redis.CacheOption
		if cfg.Redis.KeyPrefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.KeyPrefix))
		}
		if cfg.Redis.DefaultTTL > 0 {
			opts = append(opts, redis.WithDefaultTTL(cfg.Redis.DefaultTTL))
		}
		pipelineDeps.Cache = redis.NewCache(client, log, opts...)
	}

	if cfg.Kafka.Enabled {
		deps.producer = kafka.NewProducer(cfg.Kafka, log)
		pipelineDeps.Events = deps.producer
	}

	if cfg.MinIO.Enabled {
		archive, err := minio.NewArchive(ctx, cfg.MinIO, log)
		if err != nil {
			deps.close()
			return nil, err
		}
		pipelineDeps.Archive = archive
	}

	pipeline, err := insight.NewPipeline(pipelineDeps)
	if err != nil {
		deps.close()
		return nil, err
	}
	deps.pipeline = pipeline
	return deps, nil
}

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"sumoflow/internal/config"
	"sumoflow/internal/domain"
	"sumoflow/internal/extract"
	"sumoflow/internal/inference"
	"sumoflow/internal/sink"
	"sumoflow/internal/sumologic"
)

type runOptions struct {
	configPath string
	outputPath string
	sqlitePath string
	schedule   string
	logLevel   string
	discover   bool
}

func run(ctx context.Context, opts runOptions) error {
	_ = config.LoadDotEnv(".env")

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	if err := promptCredentials(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	tables, err := cfg.TableConfigs()
	if err != nil {
		return err
	}

	client, err := sumologic.NewClient(ctx, cfg.AccessID, cfg.AccessKey, sumologic.Options{
		Endpoint:  cfg.RootURL,
		RateLimit: rate.Limit(cfg.RateLimit),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(opts.outputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	sinks := sink.Multi{sink.NewSinger(out)}
	if opts.sqlitePath != "" {
		sqliteSink, err := sink.NewSQLite(opts.sqlitePath)
		if err != nil {
			return err
		}
		sinks = append(sinks, sqliteSink)
	}
	defer sinks.Close() //nolint:errcheck

	runner := &runner{
		api:      client,
		tables:   tables,
		sink:     sinks,
		logger:   logger,
		discover: opts.discover,
	}

	if opts.schedule != "" {
		return runScheduled(ctx, runner, opts.schedule, logger)
	}
	return runner.run(ctx)
}

// runScheduled runs the extraction on the given cron schedule until the
// context is cancelled. A failed run is logged, not fatal: the next tick
// gets a fresh chance.
func runScheduled(ctx context.Context, r *runner, schedule string, logger *slog.Logger) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := r.run(ctx); err != nil {
			logger.Error("scheduled extraction failed", "error", err)
		}
	})
	if err != nil {
		return domain.ErrConfiguration("invalid cron schedule %q: %v", schedule, err)
	}
	logger.Info("running on schedule", "schedule", schedule)
	c.Start()
	defer c.Stop()
	<-ctx.Done()
	return nil
}

// runner executes one full extraction pass: tables run strictly one after
// another, each draining completely before the next begins.
type runner struct {
	api      extract.API
	tables   []*domain.TableConfig
	sink     sink.Sink
	logger   *slog.Logger
	discover bool
}

func (r *runner) run(ctx context.Context) error {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)
	poller := extract.NewPoller(r.api, logger)
	resolver := inference.New(r.api, poller, logger)

	var completed []string
	for _, table := range r.tables {
		stream := extract.NewStream(r.api, poller, resolver, table, logger)

		schema, err := stream.ResolveSchema(ctx)
		if err != nil {
			return fmt.Errorf("resolve schema for table %q: %w", table.TableName, err)
		}
		keys, err := stream.KeyProperties(ctx)
		if err != nil {
			return err
		}
		if err := r.sink.WriteSchema(table.TableName, schema, keys); err != nil {
			return fmt.Errorf("emit schema for table %q: %w", table.TableName, err)
		}
		if r.discover {
			continue
		}

		records, err := stream.Records(ctx)
		if err != nil {
			return fmt.Errorf("extract table %q: %w", table.TableName, err)
		}
		count := 0
		for records.Next() {
			if err := r.sink.WriteRecord(table.TableName, records.Record()); err != nil {
				return fmt.Errorf("emit record for table %q: %w", table.TableName, err)
			}
			count++
		}
		if err := records.Err(); err != nil {
			return fmt.Errorf("extract table %q: %w", table.TableName, err)
		}
		logger.Info("table extracted", "table", table.TableName, "records", count)
		completed = append(completed, table.TableName)
	}

	if !r.discover {
		state := map[string]interface{}{
			"run_id":           runID,
			"completed_tables": completed,
			"completed_at":     time.Now().UTC().Format(time.RFC3339),
		}
		if err := r.sink.WriteState(state); err != nil {
			return fmt.Errorf("emit state: %w", err)
		}
	}
	return nil
}

// openOutput resolves the --output flag to a writer.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, nil, fmt.Errorf("open output %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

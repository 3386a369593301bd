package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/Ilyes4CODE/Market-place-live/internal/config"
)

// Task types for the periodic auction sweeps.
const (
	TypeAuctionSweep   = "auction:sweep"
	TypeAuctionArchive = "auction:archive"
)

func redisOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

// NewClient returns an asynq client for enqueuing tasks on demand.
func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisOpt(rdb))
}

// AuctionSweeper is the slice of the auction service the processor needs.
type AuctionSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
	ArchiveExpiredHistory(ctx context.Context, retention time.Duration) (int64, error)
}

// TaskProcessor handles the processing of tasks.
type TaskProcessor struct {
	cfg      *config.Config
	auctions AuctionSweeper
}

func NewTaskProcessor(cfg *config.Config, auctions AuctionSweeper) *TaskProcessor {
	return &TaskProcessor{cfg: cfg, auctions: auctions}
}

// HandleAuctionSweepTask closes every expired auction. Errors are returned
// so asynq retries, but an overlapping run is harmless: the close transition
// is compare-and-set guarded.
func (p *TaskProcessor) HandleAuctionSweepTask(ctx context.Context, _ *asynq.Task) error {
	closed, err := p.auctions.SweepExpired(ctx)
	if err != nil {
		return fmt.Errorf("auction sweep failed: %w", err)
	}
	if closed > 0 {
		log.Printf("Auction sweep closed %d auctions", closed)
	}
	return nil
}

// HandleAuctionArchiveTask flips long-closed auctions into the archive.
func (p *TaskProcessor) HandleAuctionArchiveTask(ctx context.Context, _ *asynq.Task) error {
	if _, err := p.auctions.ArchiveExpiredHistory(ctx, p.cfg.ArchiveRetention); err != nil {
		return fmt.Errorf("auction archive failed: %w", err)
	}
	return nil
}

// SetupServer configures the asynq server with the sweep handlers. The
// caller runs it and shuts it down.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		redisOpt(rdb),
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Error: %v", task.Type(), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAuctionSweep, processor.HandleAuctionSweepTask)
	mux.HandleFunc(TypeAuctionArchive, processor.HandleAuctionArchiveTask)
	return srv, mux
}

// SetupScheduler registers the periodic sweep entries at the configured
// intervals. A failed run is retried on the next tick.
func SetupScheduler(rdb *redis.Client, cfg *config.Config) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt(rdb), &asynq.SchedulerOpts{
		Location: time.UTC,
	})

	entries := []struct {
		spec string
		task *asynq.Task
	}{
		{fmt.Sprintf("@every %s", cfg.AuctionSweepInterval), asynq.NewTask(TypeAuctionSweep, nil)},
		{fmt.Sprintf("@every %s", cfg.ArchiveSweepInterval), asynq.NewTask(TypeAuctionArchive, nil)},
	}
	for _, e := range entries {
		if _, err := scheduler.Register(e.spec, e.task); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", e.task.Type(), err)
		}
	}
	return scheduler, nil
}

// EnqueueSweep triggers an immediate sweep, used at startup so a restart
// does not wait a full interval to catch up on expired auctions.
func EnqueueSweep(client *asynq.Client) error {
	if _, err := client.Enqueue(asynq.NewTask(TypeAuctionSweep, nil)); err != nil {
		return fmt.Errorf("failed to enqueue sweep: %w", err)
	}
	return nil
}

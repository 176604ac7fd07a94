package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
	"github.com/yungbote/futureofgaming-backend/internal/temporalx"
	"github.com/yungbote/futureofgaming-backend/internal/temporalx/workflows"
)

// startMaxWait bounds how long Start keeps retrying a worker that cannot
// reach its namespace.
const startMaxWait = time.Minute

// Runner polls the task queue for the publish and newsletter workflows.
type Runner struct {
	log  *logger.Logger
	tc   temporalsdkclient.Client
	cfg  temporalx.Config
	acts *workflows.Activities
}

func NewRunner(log *logger.Logger, tc temporalsdkclient.Client, cfg temporalx.Config, acts *workflows.Activities) (*Runner, error) {
	if tc == nil {
		return nil, errors.New("temporal client is not configured")
	}
	if acts == nil || acts.Publish == nil || acts.Newsletter == nil {
		return nil, errors.New("temporal worker needs publish and newsletter activities")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{log: log.With("component", "temporal_worker"), tc: tc, cfg: cfg, acts: acts}, nil
}

// Start begins polling, then makes sure the publish cron exists. It returns
// once both are in place; polling stops when ctx is done.
func (r *Runner) Start(ctx context.Context) error {
	cfg := r.cfg
	r.log.Info("Starting Temporal worker", "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue)

	startCtx, cancel := context.WithTimeout(ctx, startMaxWait)
	defer cancel()
	var w worker.Worker
	err := temporalx.Retry(startCtx, r.log, "start worker", func(context.Context) error {
		// A stopped worker cannot be restarted, so each attempt builds a new one.
		w = r.newWorker()
		if err := w.Start(); err != nil {
			w.Stop()
			var missing *serviceerror.NamespaceNotFound
			if errors.As(err, &missing) && cfg.AutoRegisterNamespace {
				_ = temporalx.EnsureNamespace(startCtx, r.log, cfg)
			}
			return err
		}
		return nil
	}, func(error) bool { return true })
	if err != nil {
		return fmt.Errorf("start temporal worker (namespace=%s queue=%s): %w", cfg.Namespace, cfg.TaskQueue, err)
	}
	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	if err := workflows.EnsurePublishSchedule(ctx, r.tc, cfg.TaskQueue, cfg.PublishCron); err != nil {
		return err
	}
	r.log.Info("Publish schedule active", "workflow_id", workflows.PublishWorkflowID, "cron", cfg.PublishCron)
	return nil
}

func (r *Runner) newWorker() worker.Worker {
	// Sticky execution needs at least two workflow task slots.
	slots := max(r.cfg.WorkerConcurrency, 2)
	w := worker.New(r.tc, r.cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     slots,
		MaxConcurrentWorkflowTaskExecutionSize: slots,
	})
	workflows.Register(w, r.acts)
	return w
}

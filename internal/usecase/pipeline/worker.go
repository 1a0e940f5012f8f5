package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LakshmanTurlapati/LinkLess/internal/infrastructure/queue"
	"github.com/LakshmanTurlapati/LinkLess/pkg/jobcontext"
)

// Consumer is the queue surface the worker pool needs. Implemented by
// queue.RedisQueue.
type Consumer interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, error)
	Ack(ctx context.Context, job queue.Job) error
	EnqueueIn(ctx context.Context, job queue.Job, delay time.Duration) error
}

const dequeueTimeout = 5 * time.Second

// Worker runs a pool of goroutines pulling pipeline jobs and dispatching
// them to the stages. Jobs are not cancelled mid-flight; each runs to its
// Decision under a per-job timeout.
type Worker struct {
	deps     *Deps
	consumer Consumer

	workerCount int
	jobTimeout  time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool

	logger *zap.Logger
}

// NewWorker creates a worker pool
func NewWorker(deps *Deps, consumer Consumer, workerCount int, jobTimeout time.Duration, logger *zap.Logger) *Worker {
	return &Worker{
		deps:        deps,
		consumer:    consumer,
		workerCount: workerCount,
		jobTimeout:  jobTimeout,
		stopChan:    make(chan struct{}),
		logger:      logger,
	}
}

// Start launches the pool. Safe to call once; further calls are no-ops.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("starting pipeline workers", zap.Int("count", w.workerCount))
	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.run(ctx, i)
	}
}

// Stop signals the pool and waits for in-flight jobs to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("pipeline workers stopped")
}

func (w *Worker) run(ctx context.Context, id int) {
	defer w.wg.Done()
	log := w.logger.With(zap.Int("worker", id))

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.consumer.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("failed to dequeue job", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}
		w.handle(ctx, id, log, *job)
	}
}

func (w *Worker) handle(ctx context.Context, workerID int, log *zap.Logger, job queue.Job) {
	jctx, cancel := jobcontext.Begin(ctx, w.jobTimeout, jobcontext.Metadata{
		JobID:          job.ID,
		Stage:          string(job.Stage),
		ConversationID: job.ConversationID.String(),
		WorkerID:       workerID,
		Attempt:        job.Attempt,
	})
	defer cancel()

	var decision Decision
	switch job.Stage {
	case queue.StageTranscription:
		decision = w.deps.RunTranscription(jctx, job.ConversationID, job.Attempt)
	case queue.StageSummarization:
		decision = w.deps.RunSummarization(jctx, job.ConversationID, job.Attempt)
	default:
		log.Error("unknown job stage, dropping",
			zap.String("stage", string(job.Stage)),
			zap.String("conversation_id", job.ConversationID.String()))
		w.ack(ctx, log, job)
		return
	}

	log.Debug("job handled",
		zap.String("stage", string(job.Stage)),
		zap.String("conversation_id", job.ConversationID.String()),
		zap.Duration("elapsed", jobcontext.Elapsed(jctx)))

	switch decision.Outcome {
	case OutcomeRetry:
		// The in-flight reservation is deliberately kept so an explicit
		// job ID stays deduplicated across attempts.
		retry := job
		retry.Attempt = job.Attempt + 1
		if err := w.consumer.EnqueueIn(ctx, retry, decision.Delay); err != nil {
			log.Error("failed to schedule retry",
				zap.String("conversation_id", job.ConversationID.String()),
				zap.Error(err))
			w.ack(ctx, log, job)
		}
	case OutcomeTerminal:
		log.Warn("job failed permanently",
			zap.String("stage", string(job.Stage)),
			zap.String("conversation_id", job.ConversationID.String()),
			zap.Error(decision.Err))
		w.ack(ctx, log, job)
	default:
		w.ack(ctx, log, job)
	}
}

func (w *Worker) ack(ctx context.Context, log *zap.Logger, job queue.Job) {
	if err := w.consumer.Ack(context.WithoutCancel(ctx), job); err != nil {
		log.Error("failed to ack job", zap.Error(err))
	}
}

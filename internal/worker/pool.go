package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	JobInvoiceEmail = "invoice_email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// InvoiceEmailPayload asks for an invoice PDF to be mailed to ToEmail.
type InvoiceEmailPayload struct {
	InvoiceID string `json:"invoice_id"`
	ToEmail   string `json:"to_email"`
}

// Processor handles the payload of one job type.
type Processor interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// PermanentError marks a failure that retrying cannot fix.
type PermanentError struct{ Err error }

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func permanent(err error) error { return &PermanentError{Err: err} }

// store is the slice of Redis the pool writes to.
type store interface {
	Push(ctx context.Context, key string, data []byte) error
}

type redisStore struct{ rdb *redis.Client }

func (s redisStore) Push(ctx context.Context, key string, data []byte) error {
	return s.rdb.LPush(ctx, key, data).Err()
}

// ── Dispatcher ────────────────────────────────────────────────────────────────

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	store store
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{store: redisStore{rdb: rdb}}
}

// EnqueueInvoiceEmail pushes an invoice delivery job.
func (d *Dispatcher) EnqueueInvoiceEmail(ctx context.Context, invoiceID uuid.UUID, to string) error {
	payload, err := json.Marshal(InvoiceEmailPayload{InvoiceID: invoiceID.String(), ToEmail: to})
	if err != nil {
		return err
	}
	return enqueue(ctx, d.store, QueueEmail, Job{Type: JobInvoiceEmail, Payload: payload})
}

func enqueue(ctx context.Context, s store, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.Push(ctx, queue, encoded)
}

// ── Pool ──────────────────────────────────────────────────────────────────────

// Pool runs a fixed number of goroutines blocking on BRPOP.
// A failed job is pushed back to its queue until maxAttempts is reached,
// then moved to the dead-letter list.
type Pool struct {
	rdb         *redis.Client
	store       store
	size        int
	maxAttempts int
	handlers    map[string]Processor
	wg          sync.WaitGroup
}

func NewPool(rdb *redis.Client, size, maxAttempts int) *Pool {
	if size <= 0 {
		size = 1
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Pool{
		rdb:         rdb,
		store:       redisStore{rdb: rdb},
		size:        size,
		maxAttempts: maxAttempts,
		handlers:    make(map[string]Processor),
	}
}

// Handle registers the processor for a job type. Call before Start.
func (p *Pool) Handle(jobType string, proc Processor) { p.handlers[jobType] = proc }

// Start launches the workers; they stop when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Int("workers", p.size).Msg("worker pool started")
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
		}
		// Waits up to 5s then loops to check ctx.
		result, err := p.rdb.BRPop(ctx, 5*time.Second, QueueEmail).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("brpop failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.handle(ctx, result[0], result[1])
	}
}

func (p *Pool) handle(ctx context.Context, queue, raw string) {
	// The job is already popped: pushing it back must survive shutdown.
	pushCtx := context.WithoutCancel(ctx)

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(pushCtx, p.store, queue, Job{Type: "unknown", Payload: json.RawMessage(fmt.Sprintf("%q", raw))}, err.Error())
		return
	}

	proc, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(pushCtx, p.store, queue, job, "no handler for job type")
		return
	}

	err := proc.Process(ctx, job.Payload)
	if err == nil {
		return
	}

	// Interrupted by shutdown: put it back without spending an attempt.
	if ctx.Err() != nil {
		log.Info().Str("queue", queue).Str("type", job.Type).Msg("job interrupted by shutdown, re-enqueueing")
		if qerr := enqueue(pushCtx, p.store, queue, job); qerr != nil {
			log.Error().Err(qerr).Str("queue", queue).Msg("re-enqueue failed")
		}
		return
	}
	job.Attempts++

	var perm *PermanentError
	if errors.As(err, &perm) || job.Attempts >= p.maxAttempts {
		SendToDLQ(pushCtx, p.store, queue, job, err.Error())
		return
	}
	log.Warn().
		Err(err).
		Str("queue", queue).
		Str("type", job.Type).
		Int("attempt", job.Attempts).
		Msg("job failed, re-enqueueing")
	if qerr := enqueue(pushCtx, p.store, queue, job); qerr != nil {
		log.Error().Err(qerr).Str("queue", queue).Msg("re-enqueue failed")
	}
}

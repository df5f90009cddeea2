package worker

// monitor.go
// Background goroutine that periodically reports dead-lettered e-mails and the
// state of the SMTP circuit breaker, so stuck deliveries show up in the logs
// without anyone polling /health.

import (
	"context"
	"time"

	"github.com/CuasDev/fel/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const monitorTickInterval = time.Minute

// MonitorConfig holds the dependencies of the monitor goroutine.
type MonitorConfig struct {
	DeadLetters func(ctx context.Context) (int64, error)
	Breaker     *infra.CircuitBreaker
	Interval    time.Duration
}

// NewMonitorConfig builds the monitor for the e-mail queue on rdb.
func NewMonitorConfig(rdb *redis.Client, breaker *infra.CircuitBreaker) MonitorConfig {
	return MonitorConfig{
		DeadLetters: func(ctx context.Context) (int64, error) { return DLQLength(ctx, rdb, QueueEmail) },
		Breaker:     breaker,
		Interval:    monitorTickInterval,
	}
}

// StartMonitor ticks until ctx is cancelled.
func StartMonitor(ctx context.Context, cfg MonitorConfig) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = monitorTickInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var last int64
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("monitor: shutting down")
				return
			case <-ticker.C:
				last = checkQueue(ctx, cfg, last)
			}
		}
	}()
}

// checkQueue logs the current dead-letter count and breaker state. It warns
// only when the count grew since the previous tick, and returns the new count.
func checkQueue(ctx context.Context, cfg MonitorConfig, last int64) int64 {
	n, err := cfg.DeadLetters(ctx)
	if err != nil {
		log.Error().Err(err).Msg("monitor: failed to read dead letter queue")
		return last
	}

	state := infra.CBClosed
	if cfg.Breaker != nil {
		state = cfg.Breaker.State()
	}

	evt := log.Debug()
	if n > last || state == infra.CBOpen {
		evt = log.Warn()
	}
	evt.
		Int64("dead_letters", n).
		Str("smtp_breaker", state.String()).
		Msg("monitor: e-mail queue status")
	return n
}

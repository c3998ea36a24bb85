package messaging

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SimulatedSender fakes a messaging gateway for development: it logs the
// rendered message, sleeps to mimic gateway latency, and fails a small
// fraction of sends so failure paths get exercised before production.
type SimulatedSender struct {
	logger      *zap.Logger
	latency     time.Duration
	failureRate float64

	// rand.Rand is not safe for concurrent use; Send may be called from the
	// scanner job and a handler at the same time.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedSender creates a simulated sender. A failureRate of 0.05
// matches the roughly one-in-twenty delivery failures seen with the real
// gateway.
func NewSimulatedSender(logger *zap.Logger, latency time.Duration, failureRate float64) *SimulatedSender {
	return &SimulatedSender{
		logger:      logger,
		latency:     latency,
		failureRate: failureRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Send implements Sender
func (s *SimulatedSender) Send(ctx context.Context, msg Message) error {
	select {
	case <-time.After(s.latency):
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()

	if roll < s.failureRate {
		s.logger.Warn("simulated message delivery failure",
			zap.String("to", msg.To),
			zap.String("template", msg.Template))
		return fmt.Errorf("simulated delivery failure to %s", msg.To)
	}

	s.logger.Info("simulated message sent",
		zap.String("to", msg.To),
		zap.String("template", msg.Template),
		zap.String("preview", RenderPreview(msg)))
	return nil
}

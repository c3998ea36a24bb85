package messaging_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gulfassure/quoting-api/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSimulatedSender_AlwaysDelivers(t *testing.T) {
	sender := messaging.NewSimulatedSender(zap.NewNop(), 0, 0)

	err := sender.Send(context.Background(), messaging.Message{
		To:       "+97336001234",
		Template: messaging.TemplatePaymentLink,
		Params:   map[string]string{"provider": "Gulf Takaful", "reference": "GA-20260101-0001", "link": "https://pay.test/q/GA-20260101-0001"},
	})
	require.NoError(t, err)
}

func TestSimulatedSender_AlwaysFails(t *testing.T) {
	sender := messaging.NewSimulatedSender(zap.NewNop(), 0, 1)

	err := sender.Send(context.Background(), messaging.Message{
		To:       "+97336001234",
		Template: messaging.TemplatePaymentLink,
	})
	assert.Error(t, err)
}

func TestSimulatedSender_CancelledContext(t *testing.T) {
	sender := messaging.NewSimulatedSender(zap.NewNop(), time.Minute, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sender.Send(ctx, messaging.Message{To: "+97336001234", Template: messaging.TemplatePaymentLink})
	assert.ErrorIs(t, err, context.Canceled)
}

// The scanner job and request handlers share one sender, so Send has to be
// safe to call from multiple goroutines. Run with -race.
func TestSimulatedSender_ConcurrentSends(t *testing.T) {
	sender := messaging.NewSimulatedSender(zap.NewNop(), 0, 0.5)
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = sender.Send(ctx, messaging.Message{
					To:       "+97336001234",
					Template: messaging.TemplateRenewalReminder30,
				})
			}
		}()
	}
	wg.Wait()
}

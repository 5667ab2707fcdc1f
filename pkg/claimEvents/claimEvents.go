package claimEvents

import (
	"context"

	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/metrics"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

// DefaultChannelCapacity bounds how many Claimed events can wait for the listener
const DefaultChannelCapacity = 100

// IClaimEventHandler receives a Claimed event once per committed claim.
type IClaimEventHandler interface {
	HandleClaimed(ctx context.Context, event *types.ClaimedEvent) error
}

// IClaimEventPublisher delivers Claimed events to an external sink.
type IClaimEventPublisher interface {
	Name() string
	Publish(ctx context.Context, event *types.ClaimedEvent) error
	Close() error
}

type ClaimEventHandler struct {
	EventChannel chan *types.ClaimedEvent
	logger       *zap.Logger
}

func NewClaimEventHandler(logger *zap.Logger, capacity int) *ClaimEventHandler {
	if capacity <= 0 {
		capacity = DefaultChannelCapacity
	}
	return &ClaimEventHandler{
		EventChannel: make(chan *types.ClaimedEvent, capacity),
		logger:       logger,
	}
}

// ListenToChannel reads events from the channel and calls handleFunc for each
// until ctx is done.
func (h *ClaimEventHandler) ListenToChannel(ctx context.Context, handleFunc func(*types.ClaimedEvent)) {
	for {
		select {
		case event := <-h.EventChannel:
			h.logger.Sugar().Debugw("ClaimEventHandler received event from channel",
				"claimId", event.ClaimID,
				"account", event.Account.Hex(),
			)
			handleFunc(event)
		case <-ctx.Done():
			h.logger.Sugar().Info("ClaimEventHandler channel listener exiting due to context done")
			return
		}
	}
}

// HandleClaimed queues the event. Unlike a block feed, claim events are never
// dropped when the channel is full: the call blocks until there is room or ctx is done.
func (h *ClaimEventHandler) HandleClaimed(ctx context.Context, event *types.ClaimedEvent) error {
	select {
	case h.EventChannel <- event:
		h.logger.Sugar().Debugw("Claimed event sent to channel", "claimId", event.ClaimID)
		return nil
	case <-ctx.Done():
		h.logger.Sugar().Warnw("Context done before sending Claimed event to channel",
			"claimId", event.ClaimID,
			"account", event.Account.Hex(),
		)
		return ctx.Err()
	}
}

// PublishTo returns a handleFunc for ListenToChannel that forwards each event
// to every publisher. Publisher failures are logged and counted, never retried.
func (h *ClaimEventHandler) PublishTo(ctx context.Context, publishers ...IClaimEventPublisher) func(*types.ClaimedEvent) {
	return func(event *types.ClaimedEvent) {
		for _, p := range publishers {
			if err := p.Publish(ctx, event); err != nil {
				metrics.EventsFailed.WithLabelValues(p.Name()).Inc()
				h.logger.Sugar().Errorw("Failed to publish Claimed event",
					"publisher", p.Name(),
					"claimId", event.ClaimID,
					"error", err,
				)
				continue
			}
			metrics.EventsPublished.WithLabelValues(p.Name()).Inc()
		}
	}
}

// LogPublisher writes Claimed events to the structured log.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Name() string {
	return "log"
}

func (p *LogPublisher) Publish(_ context.Context, event *types.ClaimedEvent) error {
	p.logger.Sugar().Infow("Claimed",
		"claimId", event.ClaimID,
		"account", event.Account.Hex(),
		"amount", event.Amount.String(),
		"timestamp", event.Timestamp,
	)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}

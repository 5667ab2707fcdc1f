package natsEventPublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/metrics"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

const (
	DefaultSubject        = "airdrop.claimed"
	DefaultConnectTimeout = 10 * time.Second
)

type NatsEventPublisherConfig struct {
	URL            string
	Subject        string
	ConnectTimeout time.Duration
}

// ClaimedMessage is the JSON body published for each Claimed event.
// Amount is a decimal string so 256-bit values survive any consumer.
type ClaimedMessage struct {
	ClaimID   string `json:"claimId"`
	Account   string `json:"account"`
	Amount    string `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}

type NatsEventPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

func NewNatsEventPublisher(cfg *NatsEventPublisherConfig, logger *zap.Logger) (*NatsEventPublisher, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("nats url is required")
	}

	subject := cfg.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = DefaultConnectTimeout
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("merkle-airdrop"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Sugar().Warnw("NATS disconnected", "error", err)
			metrics.NATSConnectionStatus.Set(0)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Sugar().Infow("NATS reconnected", "url", nc.ConnectedUrl())
			metrics.NATSConnectionStatus.Set(1)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}
	metrics.NATSConnectionStatus.Set(1)

	logger.Sugar().Infow("NATS event publisher initialized", "url", cfg.URL, "subject", subject)

	return &NatsEventPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger,
	}, nil
}

func (p *NatsEventPublisher) Name() string {
	return "nats"
}

// Publish sends the event and flushes so a nil error means the server has it.
func (p *NatsEventPublisher) Publish(ctx context.Context, event *types.ClaimedEvent) error {
	data, err := EncodeClaimedMessage(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.subject, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush publish to %s: %w", p.subject, err)
	}

	return nil
}

func (p *NatsEventPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	metrics.NATSConnectionStatus.Set(0)
	return nil
}

// EncodeClaimedMessage renders event as the published JSON body.
func EncodeClaimedMessage(event *types.ClaimedEvent) ([]byte, error) {
	if event == nil || event.Amount == nil {
		return nil, fmt.Errorf("cannot encode incomplete Claimed event")
	}
	return json.Marshal(&ClaimedMessage{
		ClaimID:   event.ClaimID,
		Account:   event.Account.Hex(),
		Amount:    event.Amount.String(),
		Timestamp: event.Timestamp,
	})
}

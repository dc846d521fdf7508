package bigscreeneventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	bigscreenservice "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/application"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

// Topics carrying display snapshots.
const (
	TopicBoardUpdated = "bigscreen.board.updated"
	TopicLiveUpdated  = "bigscreen.live.updated"
	TopicBoardPage    = "bigscreen.board.page"
)

// PageChanged is published whenever the visible board page moves.
type PageChanged struct {
	ActivePage     int    `json:"active_page"`
	PageCount      int    `json:"page_count"`
	TrackTransform string `json:"track_transform"`
}

// EventBus fans snapshots out to in-process subscribers and, when configured, to NATS.
type EventBus struct {
	local  *gochannel.GoChannel
	remote message.Publisher
	logger *slog.Logger

	mu       sync.Mutex
	lastPage int
}

// NewEventBus creates the in-process bus. A non-empty natsURL adds a core NATS
// publisher so remote kiosks receive the same topics.
func NewEventBus(natsURL string, logger *slog.Logger) (*EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	bus := &EventBus{
		local: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, wmLogger),
		logger:   logger,
		lastPage: -1,
	}

	if natsURL == "" {
		return bus, nil
	}

	remote, err := NewNATSPublisher(natsURL, wmLogger)
	if err != nil {
		_ = bus.local.Close()
		return nil, err
	}
	bus.remote = remote
	logger.Info("Publishing snapshots to NATS", "url", natsURL)
	return bus, nil
}

// NewNATSPublisher creates a core NATS publisher; snapshots are transient so JetStream is off.
func NewNATSPublisher(natsURL string, logger watermill.LoggerAdapter) (message.Publisher, error) {
	options := []nc.Option{
		nc.Name("arcade-bigscreen"),
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
		nc.MaxReconnects(-1),
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:               natsURL,
			NatsOptions:       options,
			Marshaler:         &nats.NATSMarshaler{},
			JetStream:         nats.JetStreamConfig{Disabled: true},
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}
	return publisher, nil
}

// PublishBoard publishes a board snapshot, plus a page event when the active page moved.
func (b *EventBus) PublishBoard(ctx context.Context, snapshot bigscreenservice.BoardSnapshot) error {
	if err := b.publishJSON(ctx, TopicBoardUpdated, snapshot); err != nil {
		return err
	}

	b.mu.Lock()
	moved := snapshot.ActivePage != b.lastPage
	b.lastPage = snapshot.ActivePage
	b.mu.Unlock()

	if !moved {
		return nil
	}
	return b.publishJSON(ctx, TopicBoardPage, PageChanged{
		ActivePage:     snapshot.ActivePage,
		PageCount:      len(snapshot.Pages),
		TrackTransform: snapshot.TrackTransform,
	})
}

func (b *EventBus) PublishLive(ctx context.Context, snapshot bigscreenservice.LiveSnapshot) error {
	return b.publishJSON(ctx, TopicLiveUpdated, snapshot)
}

// Subscribe returns the in-process stream of a topic. Every message must be acked.
func (b *EventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.local.Subscribe(ctx, topic)
}

func (b *EventBus) Close() error {
	var errs []error

	if err := b.local.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close local pubsub: %w", err))
	}
	if b.remote != nil {
		if err := b.remote.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close NATS publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during close: %v", errs)
	}
	return nil
}

func (b *EventBus) publishJSON(ctx context.Context, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}

	if err := b.local.Publish(topic, newMessage(ctx, topic, payload)); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}

	if b.remote != nil {
		// NATS errors are logged and never fail the local publish.
		if err := b.remote.Publish(topic, newMessage(ctx, topic, payload)); err != nil {
			b.logger.WarnContext(ctx, "Failed to publish snapshot to NATS",
				"topic", topic,
				"error", err,
			)
		}
	}
	return nil
}

func newMessage(ctx context.Context, topic string, payload []byte) *message.Message {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("topic", topic)
	msg.Metadata.Set("content_type", "application/json")
	msg.SetContext(ctx)
	return msg
}

package analytics

import (
	"context"
	"log/slog"

	"github.com/arefin-labs/clir-engine/pkg/kafka"
)

// Collector forwards query events to the query-events Kafka topic without
// blocking the search path. Tracking is fire-and-forget: when the buffer is
// full the event is dropped, never the search.
type Collector struct {
	producer *kafka.Producer
	eventCh  chan QueryEvent
	logger   *slog.Logger
	done     chan struct{}
}

func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		eventCh:  make(chan QueryEvent, bufferSize),
		logger:   slog.Default().With("component", "analytics-collector"),
		done:     make(chan struct{}),
	}
}

func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues an event for publication.
func (c *Collector) Track(event QueryEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("query event dropped (buffer full)")
	}
}

func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

// publish keys events by language pair so one pair's stream stays ordered
// within a partition.
func (c *Collector) publish(ctx context.Context, event QueryEvent) {
	if err := c.producer.Publish(ctx, kafka.Event{
		Key:   event.LangPair,
		Value: event,
	}); err != nil {
		c.logger.Error("failed to publish query event", "error", err)
	}
}

func (c *Collector) drainRemaining() {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}

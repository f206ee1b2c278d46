package usecase

import (
	"context"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	"FinCast/pkg/logger"
)

// QuoteCollector reads live observations from the quote stream and
// forwards them to the configured backend publisher.
type QuoteCollector struct {
	stream    drepo.QuoteStream
	publisher drepo.Publisher
	metrics   drepo.Metrics
	logger    *logger.Logger
}

// NewQuoteCollector creates a new QuoteCollector instance.
func NewQuoteCollector(stream drepo.QuoteStream, publisher drepo.Publisher, metrics drepo.Metrics, log *logger.Logger) *QuoteCollector {
	return &QuoteCollector{
		stream:    stream,
		publisher: publisher,
		metrics:   metrics,
		logger:    log,
	}
}

// IsConnected returns true if the quote stream is connected.
func (c *QuoteCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *QuoteCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	obsCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, obsCh, errCh)
	return nil
}

func (c *QuoteCollector) consume(ctx context.Context, obsCh <-chan *models.Observation, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				c.logger.Warn("quote stream error, reconnecting", logger.Error(err))
				if rerr := c.stream.Reconnect(ctx); rerr != nil {
					c.logger.Error("quote stream reconnect failed", logger.Error(rerr))
				} else {
					obsCh, errCh = c.stream.Read(ctx)
				}
			}
		case o := <-obsCh:
			if o == nil {
				continue
			}
			if err := c.publisher.Publish(ctx, o); err != nil {
				c.logger.Warn("publish observation failed",
					logger.String("symbol", o.Symbol),
					logger.Error(err),
				)
				continue
			}
			c.metrics.RecordLastPrice(o.Symbol, o.Price)
		}
	}
}

// Shutdown closes the stream and the publisher.
func (c *QuoteCollector) Shutdown(ctx context.Context) error {
	err := c.stream.Close()
	if cerr := c.publisher.Close(); err == nil {
		err = cerr
	}
	return err
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"climate-dashboard/internal/models"
	"climate-dashboard/pkg/logging"
	"climate-dashboard/pkg/metrics"
)

// ErrWarehouseUnavailable is returned while the warehouse circuit is open.
var ErrWarehouseUnavailable = errors.New("warehouse unavailable")

// GenerationWriter persists a generated dataset and returns its generation id.
type GenerationWriter interface {
	SaveGeneration(ctx context.Context, ds *models.Dataset) (string, error)
	HealthCheck(ctx context.Context) error
}

// PublisherOptions tunes the circuit breaker around warehouse writes
type PublisherOptions struct {
	Timeout     time.Duration
	MaxFailures uint32
	OpenTimeout time.Duration
}

// Publisher copies generated datasets to the warehouse. Repeated failures open
// the circuit so a down database does not stall regeneration.
type Publisher struct {
	writer  GenerationWriter
	circuit *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *logging.ContextLogger
	metrics *metrics.Collector
}

// NewPublisher creates a new warehouse publisher
func NewPublisher(writer GenerationWriter, opts PublisherOptions, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Publisher {
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	p := &Publisher{
		writer:  writer,
		timeout: opts.Timeout,
		logger:  logger.WithFields(logging.Fields{"component": "publisher"}),
		metrics: metricsCollector,
	}
	p.circuit = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "warehouse",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Warn(context.Background(), "[PUBLISH_CIRCUIT] Circuit state changed", logging.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})
	return p
}

// Publish writes ds to the warehouse and returns the generation id.
func (p *Publisher) Publish(ctx context.Context, ds *models.Dataset) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	result, err := p.circuit.Execute(func() (interface{}, error) {
		return p.writer.SaveGeneration(ctx, ds)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			p.metrics.RecordPublish("rejected")
			p.logger.Warn(ctx, "[PUBLISH_REJECTED] Warehouse circuit open, skipping publish", logging.Fields{
				"upper_bound": ds.UpperBound,
			})
			return "", fmt.Errorf("%w: %v", ErrWarehouseUnavailable, err)
		}

		p.metrics.RecordPublish("failure")
		p.logger.Error(ctx, "[PUBLISH_ERROR] Failed to publish dataset", logging.Fields{
			"upper_bound": ds.UpperBound,
		}, err)
		return "", fmt.Errorf("failed to publish dataset: %w", err)
	}

	id, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected result type from circuit breaker")
	}

	p.metrics.RecordPublish("success")
	p.logger.Info(ctx, "[PUBLISH] Dataset published to warehouse", logging.Fields{
		"generation_id": id,
		"upper_bound":   ds.UpperBound,
		"seed":          ds.Seed,
	})
	return id, nil
}

// State reports the circuit state: closed, half-open or open.
func (p *Publisher) State() string {
	return p.circuit.State().String()
}

// HealthCheck pings the warehouse.
func (p *Publisher) HealthCheck(ctx context.Context) error {
	return p.writer.HealthCheck(ctx)
}

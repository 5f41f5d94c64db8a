package domain

import (
	"context"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pendergraft/mintfactory/internal/observability/metrics"
)

// EventType names a pipeline checkpoint.
type EventType string

const (
	EventChainResolved        EventType = "chain.resolved"
	EventSwitchRequested      EventType = "switch.requested"
	EventSwitchConfirmed      EventType = "switch.confirmed"
	EventTxSubmitted          EventType = "tx.submitted"
	EventTxMined              EventType = "tx.mined"
	EventVerificationPassed   EventType = "verification.passed"
	EventVerificationFailed   EventType = "verification.failed"
	EventPostDeployConfigured EventType = "postdeploy.configured"
	EventPostDeployFailed     EventType = "postdeploy.failed"
	EventStepFinished         EventType = "step.finished"
	EventDeployFinished       EventType = "deploy.finished"
)

// Event is emitted at each checkpoint. Fields irrelevant to the event type
// are zero.
type Event struct {
	Type      EventType
	Step      string
	ChainID   int64
	ChainName string
	Standard  string
	TxHash    common.Hash
	Address   common.Address
	Err       error
	Duration  time.Duration
}

// Observer receives pipeline events. Observe must not block.
type Observer interface {
	Observe(ctx context.Context, e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, e Event)

func (f ObserverFunc) Observe(ctx context.Context, e Event) { f(ctx, e) }

// Observers fans events out in order.
type Observers []Observer

func (o Observers) Observe(ctx context.Context, e Event) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(ctx, e)
		}
	}
}

type nopObserver struct{}

func (nopObserver) Observe(context.Context, Event) {}

// NewLogObserver logs events with slog.
func NewLogObserver(logger *slog.Logger) Observer {
	return &logObserver{logger: logger}
}

type logObserver struct {
	logger *slog.Logger
}

func (o *logObserver) Observe(ctx context.Context, e Event) {
	attrs := []any{"event", string(e.Type)}
	if e.Step != "" {
		attrs = append(attrs, "step", e.Step)
	}
	if e.ChainID != 0 {
		attrs = append(attrs, "chain_id", e.ChainID)
	}
	if e.TxHash != (common.Hash{}) {
		attrs = append(attrs, "tx_hash", e.TxHash.Hex())
	}
	if e.Address != (common.Address{}) {
		attrs = append(attrs, "address", e.Address.Hex())
	}
	if e.Duration > 0 {
		attrs = append(attrs, "duration", e.Duration)
	}
	if e.Err != nil {
		attrs = append(attrs, "error", e.Err)
	}

	switch e.Type {
	case EventStepFinished:
		o.logger.DebugContext(ctx, "deploy step finished", attrs...)
	case EventVerificationFailed, EventPostDeployFailed:
		o.logger.WarnContext(ctx, "deploy checkpoint", attrs...)
	default:
		o.logger.InfoContext(ctx, "deploy checkpoint", attrs...)
	}
}

// NewMetricsObserver records step and deployment outcomes in Prometheus.
func NewMetricsObserver() Observer {
	return metricsObserver{}
}

type metricsObserver struct{}

func (metricsObserver) Observe(_ context.Context, e Event) {
	switch e.Type {
	case EventStepFinished:
		metrics.CollectionDeployStep(e.Step, resultLabel(e.Err))
	case EventDeployFinished:
		metrics.CollectionDeploy(e.ChainName, e.Standard, resultLabel(e.Err), e.Duration)
	}
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

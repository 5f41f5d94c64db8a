package domain

import (
	"context"
	"log/slog"
	"time"
)

// LoggingMiddleware returns a service middleware that logs deployments.
func LoggingMiddleware(logger *slog.Logger) func(Service) Service {
	return func(next Service) Service {
		return &loggingMiddleware{
			next:   next,
			logger: logger,
		}
	}
}

type loggingMiddleware struct {
	next   Service
	logger *slog.Logger
}

func (m *loggingMiddleware) Deploy(ctx context.Context, params DeploymentParams) (*DeploymentResult, error) {
	start := time.Now()
	result, err := m.next.Deploy(ctx, params)

	attrs := []any{
		"name", params.Name,
		"symbol", params.Symbol,
		"standard", params.Standard,
		"chain", params.Chain,
		"duration", time.Since(start),
	}
	if result != nil {
		attrs = append(attrs,
			"chain_id", result.ChainID,
			"address", result.ContractAddress.Hex(),
			"tx_hash", result.TransactionHash.Hex(),
			"warnings", len(result.Warnings),
		)
	}
	if err != nil {
		m.logger.ErrorContext(ctx, "Deploy", append(attrs, "error", err)...)
		return result, err
	}
	m.logger.InfoContext(ctx, "Deploy", attrs...)
	return result, nil
}

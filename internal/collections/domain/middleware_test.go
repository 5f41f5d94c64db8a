package domain_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendergraft/mintfactory/internal/collections/domain"
	"github.com/pendergraft/mintfactory/internal/wallet/wallettest"
)

func mustHex(s string) []byte {
	return hexutil.MustDecode(s)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	p := wallettest.NewProvider(deployer, 56)
	svc := domain.LoggingMiddleware(logger)(newService(p))

	result, err := svc.Deploy(context.Background(), validParams())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "chain_id=56")
	assert.Contains(t, out, result.ContractAddress.Hex())

	buf.Reset()
	p.Wallet.Code = nil
	_, err = svc.Deploy(context.Background(), validParams())
	require.Error(t, err)
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := wallettest.NewProvider(deployer, 1)
	svc := newService(p, func(c *domain.Config) {
		c.Observer = domain.Observers{domain.NewLogObserver(logger), domain.NewMetricsObserver()}
	})

	_, err := svc.Deploy(context.Background(), validParams())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "event=switch.requested")
	assert.Contains(t, out, "event=tx.submitted")
	assert.Contains(t, out, "step=verify")
}

package domain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pendergraft/mintfactory/internal/artifacts"
	"github.com/pendergraft/mintfactory/internal/chains"
	"github.com/pendergraft/mintfactory/internal/observability/metrics"
	"github.com/pendergraft/mintfactory/internal/storage"
	"github.com/pendergraft/mintfactory/internal/validation"
)

// Common errors returned by the deployment service.
var (
	ErrNotFound        = errors.New("deployment not found")
	ErrAlreadyRecorded = errors.New("deployment already recorded")
	ErrInvalidRequest  = errors.New("invalid deployment record")
	ErrInvalidAddress  = errors.New("invalid address")
	ErrInvalidChainID  = errors.New("invalid chain ID")
	ErrInvalidCursor   = errors.New("invalid cursor")
)

// Service defines the deployment records service interface.
type Service interface {
	// Record records a new deployment.
	Record(ctx context.Context, req RecordRequest) (*Deployment, error)

	// Get retrieves a deployment by chain and address.
	Get(ctx context.Context, chainID int64, address string) (*Deployment, error)

	// List lists deployments with filtering and pagination.
	List(ctx context.Context, filter ListFilter, pagination PaginationParams) (*ListResult, error)
}

// Store is the storage the service needs.
type Store interface {
	RecordDeployment(ctx context.Context, d *storage.Deployment) error
	GetDeployment(ctx context.Context, chainID int64, address string) (*storage.Deployment, error)
	ListDeployments(ctx context.Context, filter storage.DeploymentFilter, pagination storage.PaginationParams) (*storage.PaginatedResult[storage.Deployment], error)
}

// service implements the Service interface.
type service struct {
	store    Store
	registry *chains.Registry
}

// NewService creates a new deployment records service. A nil registry uses
// the built-in chains to fill in missing chain names.
func NewService(store Store, registry *chains.Registry) Service {
	if registry == nil {
		registry = chains.DefaultRegistry()
	}
	return &service{store: store, registry: registry}
}

// Record records a new deployment.
func (s *service) Record(ctx context.Context, req RecordRequest) (*Deployment, error) {
	d, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	if err := s.store.RecordDeployment(ctx, d); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			metrics.DeploymentRecord(d.ChainName, "duplicate")
			return nil, ErrAlreadyRecorded
		}
		metrics.DeploymentRecord(d.ChainName, "error")
		return nil, fmt.Errorf("recording deployment: %w", err)
	}

	metrics.DeploymentRecord(d.ChainName, "success")
	return toDeployment(d), nil
}

func (s *service) validate(req RecordRequest) (*storage.Deployment, error) {
	if err := validation.ValidateChainID(req.ChainID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChainID, err)
	}
	if err := validation.ValidateAddress(req.Address); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if err := validation.ValidateAddress(req.DeployerAddress); err != nil {
		return nil, fmt.Errorf("%w: deployer: %v", ErrInvalidAddress, err)
	}
	if err := validation.ValidateTxHash(req.TxHash); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := validation.ValidateCollectionName(req.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := validation.ValidateSymbol(req.Symbol); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	std, err := artifacts.ParseStandard(req.Standard)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	cost := req.CostWei
	if cost == "" {
		cost = "0"
	}
	if n, ok := new(big.Int).SetString(cost, 10); !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("%w: costWei must be a non-negative integer", ErrInvalidRequest)
	}

	chainName := req.ChainName
	if chainName == "" {
		chainName = s.registry.DisplayName(req.ChainID)
	}

	return &storage.Deployment{
		Name:            req.Name,
		Symbol:          req.Symbol,
		Standard:        string(std),
		ChainID:         req.ChainID,
		ChainName:       chainName,
		Address:         common.HexToAddress(req.Address).Hex(),
		TxHash:          common.HexToHash(req.TxHash).Hex(),
		DeployerAddress: common.HexToAddress(req.DeployerAddress).Hex(),
		BlockNumber:     req.BlockNumber,
		GasUsed:         req.GasUsed,
		CostWei:         cost,
		BytecodeMatch:   req.BytecodeMatch,
		Warnings:        req.Warnings,
	}, nil
}

// Get retrieves a deployment by chain and address.
func (s *service) Get(ctx context.Context, chainID int64, address string) (*Deployment, error) {
	if err := validation.ValidateAddress(address); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	d, err := s.store.GetDeployment(ctx, chainID, address)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting deployment: %w", err)
	}

	return toDeployment(d), nil
}

// List lists deployments with filtering and pagination.
func (s *service) List(ctx context.Context, filter ListFilter, pagination PaginationParams) (*ListResult, error) {
	result, err := s.store.ListDeployments(ctx, storage.DeploymentFilter{
		ChainID:  filter.ChainID,
		Deployer: filter.Deployer,
		Standard: filter.Standard,
	}, storage.PaginationParams{
		Limit:  pagination.Limit,
		Cursor: pagination.Cursor,
	})
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCursor) {
			return nil, ErrInvalidCursor
		}
		return nil, fmt.Errorf("listing deployments: %w", err)
	}

	deployments := make([]Deployment, len(result.Data))
	for i := range result.Data {
		deployments[i] = *toDeployment(&result.Data[i])
	}

	return &ListResult{
		Deployments: deployments,
		HasMore:     result.HasMore,
		NextCursor:  result.NextCursor,
	}, nil
}

// ParseChainID parses a chain ID path or query parameter.
func ParseChainID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChainID, s)
	}
	if err := validation.ValidateChainID(id); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidChainID, err)
	}
	return id, nil
}

func toDeployment(d *storage.Deployment) *Deployment {
	return &Deployment{
		ID:              d.ID,
		Name:            d.Name,
		Symbol:          d.Symbol,
		Standard:        d.Standard,
		ChainID:         d.ChainID,
		ChainName:       d.ChainName,
		Address:         d.Address,
		TxHash:          d.TxHash,
		DeployerAddress: d.DeployerAddress,
		BlockNumber:     d.BlockNumber,
		GasUsed:         d.GasUsed,
		CostWei:         d.CostWei,
		BytecodeMatch:   d.BytecodeMatch,
		Warnings:        d.Warnings,
		CreatedAt:       d.CreatedAt,
	}
}

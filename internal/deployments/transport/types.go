// Package transport provides HTTP request/response types for the deployments domain.
package transport

import (
	"time"

	"github.com/pendergraft/mintfactory/internal/deployments/domain"
)

// DeploymentListResponse is the response for listing deployments.
type DeploymentListResponse struct {
	Data       []DeploymentResponse `json:"data"`
	Pagination Pagination           `json:"pagination"`
}

// Pagination provides pagination metadata.
type Pagination struct {
	Limit      int    `json:"limit"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// DeploymentResponse is a recorded deployment.
type DeploymentResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Symbol          string   `json:"symbol"`
	Standard        string   `json:"standard"`
	ChainID         int64    `json:"chainId"`
	ChainName       string   `json:"chainName"`
	Address         string   `json:"address"`
	TxHash          string   `json:"txHash"`
	DeployerAddress string   `json:"deployerAddress"`
	BlockNumber     uint64   `json:"blockNumber"`
	GasUsed         uint64   `json:"gasUsed"`
	CostWei         string   `json:"costWei"`
	BytecodeMatch   string   `json:"bytecodeMatch,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	CreatedAt       string   `json:"createdAt"`
}

// FromDomain converts a domain deployment.
func FromDomain(d *domain.Deployment) DeploymentResponse {
	return DeploymentResponse{
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
		CreatedAt:       d.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

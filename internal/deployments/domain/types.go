// Package domain contains the business logic for collection deployment records.
package domain

import (
	"time"
)

// Deployment is a recorded collection deployment.
type Deployment struct {
	ID              string
	Name            string
	Symbol          string
	Standard        string
	ChainID         int64
	ChainName       string
	Address         string
	TxHash          string
	DeployerAddress string
	BlockNumber     uint64
	GasUsed         uint64
	CostWei         string
	BytecodeMatch   string
	Warnings        []string
	CreatedAt       time.Time
}

// RecordRequest is the request to record a new deployment.
type RecordRequest struct {
	Name            string   `json:"name"`
	Symbol          string   `json:"symbol"`
	Standard        string   `json:"standard"`
	ChainID         int64    `json:"chainId"`
	ChainName       string   `json:"chainName,omitempty"`
	Address         string   `json:"address"`
	TxHash          string   `json:"txHash"`
	DeployerAddress string   `json:"deployerAddress"`
	BlockNumber     uint64   `json:"blockNumber"`
	GasUsed         uint64   `json:"gasUsed"`
	CostWei         string   `json:"costWei"`
	BytecodeMatch   string   `json:"bytecodeMatch,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// ListFilter contains filter options for listing deployments.
type ListFilter struct {
	ChainID  int64
	Deployer string
	Standard string
}

// PaginationParams contains pagination options.
type PaginationParams struct {
	Limit  int
	Cursor string
}

// ListResult contains paginated list results.
type ListResult struct {
	Deployments []Deployment
	HasMore     bool
	NextCursor  string
}

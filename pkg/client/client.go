// Package client provides a Go client for the mintfactory records API and
// for artifact registries that serve contract ABI and bytecode.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a mintfactory API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// New creates a new client. baseURL may carry a trailing slash.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Deployment is a recorded collection deployment
type Deployment struct {
	ID              string   `json:"id"`
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
	CreatedAt       string   `json:"createdAt"`
}

// DeploymentRequest is the request for recording a deployment
type DeploymentRequest struct {
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

// ListOptions filters ListDeployments
type ListOptions struct {
	ChainID  int64
	Deployer string
	Standard string
	Limit    int
	Cursor   string
}

// ListDeploymentsResponse is the response for listing deployments
type ListDeploymentsResponse struct {
	Data       []Deployment `json:"data"`
	Pagination Pagination   `json:"pagination"`
}

// Pagination contains pagination info
type Pagination struct {
	Limit      int    `json:"limit"`
	HasMore    bool   `json:"hasMore"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// APIError represents an API error response
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// RecordDeployment records a deployment
func (c *Client) RecordDeployment(ctx context.Context, req DeploymentRequest) (*Deployment, error) {
	var resp Deployment
	if err := c.post(ctx, "/api/v1/deployments", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetDeployment gets a deployment by chain ID and address
func (c *Client) GetDeployment(ctx context.Context, chainID int64, address string) (*Deployment, error) {
	var resp Deployment
	path := fmt.Sprintf("/api/v1/deployments/%d/%s", chainID, url.PathEscape(address))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListDeployments lists recorded deployments
func (c *Client) ListDeployments(ctx context.Context, opts ListOptions) (*ListDeploymentsResponse, error) {
	q := url.Values{}
	if opts.ChainID != 0 {
		q.Set("chain_id", strconv.FormatInt(opts.ChainID, 10))
	}
	if opts.Deployer != "" {
		q.Set("deployer", opts.Deployer)
	}
	if opts.Standard != "" {
		q.Set("standard", opts.Standard)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		q.Set("cursor", opts.Cursor)
	}

	path := "/api/v1/deployments"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListDeploymentsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetABI gets the ABI for a contract in an artifact registry
func (c *Client) GetABI(ctx context.Context, name, version, contract string) (json.RawMessage, error) {
	return c.getRaw(ctx, artifactPath(name, version, contract, "abi"))
}

// GetBytecode gets the creation bytecode for a contract, as served (hex text)
func (c *Client) GetBytecode(ctx context.Context, name, version, contract string) ([]byte, error) {
	return c.getRaw(ctx, artifactPath(name, version, contract, "bytecode"))
}

// GetDeployedBytecode gets the runtime bytecode for a contract
func (c *Client) GetDeployedBytecode(ctx context.Context, name, version, contract string) ([]byte, error) {
	return c.getRaw(ctx, artifactPath(name, version, contract, "deployed-bytecode"))
}

func artifactPath(name, version, contract, kind string) string {
	return fmt.Sprintf("/api/v1/packages/%s/%s/contracts/%s/%s",
		url.PathEscape(name), url.PathEscape(version), url.PathEscape(contract), kind)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	return c.do(req, result)
}

func (c *Client) getRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, c.parseError(resp)
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.parseError(resp)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}

func (c *Client) parseError(resp *http.Response) error {
	var errResp struct {
		Error APIError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error.Code == "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       "HTTP_" + strconv.Itoa(resp.StatusCode),
			Message:    http.StatusText(resp.StatusCode),
		}
	}
	errResp.Error.StatusCode = resp.StatusCode
	return &errResp.Error
}

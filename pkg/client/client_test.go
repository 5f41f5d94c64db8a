package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testAddress = "0x1234567890abcdef1234567890abcdef12345678"

func TestClient_RecordDeployment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/deployments" {
			t.Errorf("Expected path /api/v1/deployments, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST method, got %s", r.Method)
		}
		if r.Header.Get("X-API-Key") != "my-api-key" {
			t.Errorf("Expected X-API-Key header, got %s", r.Header.Get("X-API-Key"))
		}

		var req DeploymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.ChainID != 56 {
			t.Errorf("Expected chainId 56, got %d", req.ChainID)
		}
		if req.Standard != "ERC721" {
			t.Errorf("Expected standard ERC721, got %s", req.Standard)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "deploy-123",
			"chainId": 56,
			"address": req.Address,
		})
	}))
	defer server.Close()

	client := New(server.URL+"/", "my-api-key")
	d, err := client.RecordDeployment(context.Background(), DeploymentRequest{
		Name:     "Apes",
		Symbol:   "APE",
		Standard: "ERC721",
		ChainID:  56,
		Address:  testAddress,
		CostWei:  "1000",
	})
	if err != nil {
		t.Fatalf("RecordDeployment() error = %v", err)
	}
	if d.ID != "deploy-123" {
		t.Errorf("RecordDeployment().ID = %s, want deploy-123", d.ID)
	}
}

func TestClient_GetDeployment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/deployments/97/"+testAddress {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"id":          "deploy-123",
			"name":        "Apes",
			"chainId":     97,
			"address":     testAddress,
			"blockNumber": 12345,
			"warnings":    []string{"enable public minting manually"},
			"createdAt":   "2024-01-15T10:30:00Z",
		})
	}))
	defer server.Close()

	client := New(server.URL, "")
	d, err := client.GetDeployment(context.Background(), 97, testAddress)
	if err != nil {
		t.Fatalf("GetDeployment() error = %v", err)
	}
	if d.Name != "Apes" {
		t.Errorf("GetDeployment().Name = %s, want Apes", d.Name)
	}
	if d.BlockNumber != 12345 {
		t.Errorf("GetDeployment().BlockNumber = %d, want 12345", d.BlockNumber)
	}
	if len(d.Warnings) != 1 {
		t.Errorf("GetDeployment().Warnings has %d items, want 1", len(d.Warnings))
	}
}

func TestClient_ListDeployments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("chain_id") != "56" {
			t.Errorf("Expected chain_id 56, got %s", q.Get("chain_id"))
		}
		if q.Get("limit") != "5" {
			t.Errorf("Expected limit 5, got %s", q.Get("limit"))
		}

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "a", "chainId": 56, "address": testAddress},
			},
			"pagination": map[string]any{
				"limit":      5,
				"hasMore":    true,
				"nextCursor": "abc",
			},
		})
	}))
	defer server.Close()

	client := New(server.URL, "")
	resp, err := client.ListDeployments(context.Background(), ListOptions{ChainID: 56, Limit: 5})
	if err != nil {
		t.Fatalf("ListDeployments() error = %v", err)
	}
	if len(resp.Data) != 1 {
		t.Errorf("ListDeployments() returned %d deployments, want 1", len(resp.Data))
	}
	if !resp.Pagination.HasMore || resp.Pagination.NextCursor != "abc" {
		t.Errorf("unexpected pagination %+v", resp.Pagination)
	}
}

func TestClient_GetArtifact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/packages/nft-collections/1.0.0/contracts/NFTCollection721/abi":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
		case "/api/v1/packages/nft-collections/1.0.0/contracts/NFTCollection721/bytecode":
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("0x6080"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := New(server.URL, "")
	abiJSON, err := client.GetABI(context.Background(), "nft-collections", "1.0.0", "NFTCollection721")
	if err != nil {
		t.Fatalf("GetABI() error = %v", err)
	}
	if string(abiJSON) != "[]" {
		t.Errorf("GetABI() = %s, want []", abiJSON)
	}

	code, err := client.GetBytecode(context.Background(), "nft-collections", "1.0.0", "NFTCollection721")
	if err != nil {
		t.Fatalf("GetBytecode() error = %v", err)
	}
	if string(code) != "0x6080" {
		t.Errorf("GetBytecode() = %s, want 0x6080", code)
	}

	_, err = client.GetDeployedBytecode(context.Background(), "nft-collections", "1.0.0", "NFTCollection721")
	if !IsNotFound(err) {
		t.Errorf("GetDeployedBytecode() error = %v, want not found", err)
	}
}

func TestClient_ErrorHandling(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{
				"code":    "NOT_FOUND",
				"message": "Deployment not found",
			},
		})
	}))
	defer server.Close()

	client := New(server.URL, "")
	_, err := client.GetDeployment(context.Background(), 1, testAddress)
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("Expected APIError, got %T", err)
	}
	if apiErr.Code != "NOT_FOUND" {
		t.Errorf("Expected code NOT_FOUND, got %s", apiErr.Code)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", apiErr.StatusCode)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound() = false, want true")
	}
}

package validation

import (
	"math/big"
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "nft-collections", false},
		{"valid with numbers", "nft-collections-v2", false},
		{"valid min length", "ab", false},
		{"too short", "a", true},
		{"starts with number", "1package", true},
		{"contains uppercase", "NftCollections", true},
		{"consecutive hyphens", "nft--collections", true},
		{"ends with hyphen", "nft-", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid semver", "1.0.0", false},
		{"valid with v prefix", "v1.0.0", false},
		{"valid prerelease", "1.0.0-beta.1", false},
		{"valid with build metadata", "1.0.0+build.123", false},
		{"invalid no minor", "1", true},
		{"invalid no patch", "1.0", true},
		{"invalid characters", "1.0.0-beta!", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVersion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVersion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestParseMintPrice(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "0", false},
		{"0", "0", false},
		{"1", "1000000000000000000", false},
		{"0.01", "10000000000000000", false},
		{" 2.5 ", "2500000000000000000", false},
		{"0.000000000000000001", "1", false},
		{"0.0000000000000000001", "", true},
		{"-1", "", true},
		{"1e18", "", true},
		{"1.", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMintPrice(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMintPrice(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			want, _ := new(big.Int).SetString(tt.want, 10)
			if got.Cmp(want) != 0 {
				t.Errorf("ParseMintPrice(%q) = %s, want %s", tt.input, got, want)
			}
		})
	}
}

func TestCollectionFields(t *testing.T) {
	if err := ValidateCollectionName("  "); err == nil {
		t.Error("ValidateCollectionName(blank) should fail")
	}
	if err := ValidateCollectionName("Bored Apes"); err != nil {
		t.Errorf("ValidateCollectionName() error = %v", err)
	}
	if err := ValidateSymbol("B APE"); err == nil {
		t.Error("ValidateSymbol with space should fail")
	}
	if err := ValidateSymbol("BAYC"); err != nil {
		t.Errorf("ValidateSymbol() error = %v", err)
	}
	if err := ValidateMaxSupply(0); err == nil {
		t.Error("ValidateMaxSupply(0) should fail")
	}
	if err := ValidateRoyaltyBps(10_000); err != nil {
		t.Errorf("ValidateRoyaltyBps(10000) error = %v", err)
	}
	if err := ValidateRoyaltyBps(10_001); err == nil {
		t.Error("ValidateRoyaltyBps(10001) should fail")
	}
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid lowercase", "0x1234567890abcdef1234567890abcdef12345678", false},
		{"valid checksum", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", false},
		{"missing prefix", "1234567890abcdef1234567890abcdef1234567890", true},
		{"too short", "0x1234", true},
		{"non-hex", "0x1234567890abcdef1234567890abcdef1234567g", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAddress(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateChainID(t *testing.T) {
	if err := ValidateChainID(0); err == nil {
		t.Error("ValidateChainID(0) should fail")
	}
	if err := ValidateChainID(56); err != nil {
		t.Errorf("ValidateChainID(56) error = %v", err)
	}
}

// Package validation provides input validation for mintfactory.
package validation

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/mod/semver"
)

// MaxRoyaltyBps is 100% in basis points.
const MaxRoyaltyBps = 10_000

// Registry package names: lowercase alphanumeric with hyphens, 2-64 chars
var packageNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]{0,62}[a-z0-9]$`)

// Unsigned decimal with an optional fractional part
var decimalRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ValidatePackageName validates an artifact registry package name
func ValidatePackageName(name string) error {
	if len(name) < 2 {
		return errors.New("package name too short (min 2 chars)")
	}
	if len(name) > 64 {
		return errors.New("package name too long (max 64 chars)")
	}
	if !packageNameRegex.MatchString(name) {
		return errors.New("invalid package name: must be lowercase alphanumeric with hyphens, starting with a letter")
	}
	if strings.Contains(name, "--") {
		return errors.New("invalid characters in package name")
	}
	return nil
}

// ValidateVersion validates a semantic version string
func ValidateVersion(v string) error {
	normalized := NormalizeVersion(v)
	if normalized == "" {
		return errors.New("version cannot be empty")
	}

	// semver library expects a leading 'v'
	if !semver.IsValid("v" + normalized) {
		return errors.New("invalid semver version: must be in format X.Y.Z or X.Y.Z-prerelease")
	}

	// semver accepts "v1" and "v1.2"; require all three parts
	mainPart := strings.SplitN(strings.SplitN(normalized, "+", 2)[0], "-", 2)[0]
	if strings.Count(mainPart, ".") < 2 {
		return errors.New("invalid semver version: must be in format X.Y.Z (major.minor.patch)")
	}

	return nil
}

// NormalizeVersion normalizes a version string (strips leading 'v')
func NormalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// ValidateCollectionName validates a collection name
func ValidateCollectionName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(name) > 128 {
		return errors.New("name too long (max 128 chars)")
	}
	return nil
}

// ValidateSymbol validates a collection ticker symbol
func ValidateSymbol(symbol string) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return errors.New("symbol is required")
	}
	if utf8.RuneCountInString(symbol) > 32 {
		return errors.New("symbol too long (max 32 chars)")
	}
	if strings.ContainsAny(symbol, " \t\n") {
		return errors.New("symbol must not contain whitespace")
	}
	return nil
}

// ValidateMaxSupply validates a collection's maximum supply
func ValidateMaxSupply(n uint64) error {
	if n == 0 {
		return errors.New("max supply must be positive")
	}
	return nil
}

// ValidateRoyaltyBps validates a royalty in basis points
func ValidateRoyaltyBps(bps uint16) error {
	if bps > MaxRoyaltyBps {
		return fmt.Errorf("royalty must be at most %d basis points", MaxRoyaltyBps)
	}
	return nil
}

// ParseMintPrice converts a decimal amount of the native token to wei.
// An empty price is free minting.
func ParseMintPrice(price string) (*big.Int, error) {
	price = strings.TrimSpace(price)
	if price == "" {
		return new(big.Int), nil
	}
	if !decimalRegex.MatchString(price) {
		return nil, fmt.Errorf("invalid mint price %q: must be a non-negative decimal", price)
	}

	whole, frac, _ := strings.Cut(price, ".")
	if len(frac) > 18 {
		return nil, fmt.Errorf("invalid mint price %q: at most 18 decimal places", price)
	}

	wei, ok := new(big.Int).SetString(whole+frac+strings.Repeat("0", 18-len(frac)), 10)
	if !ok {
		return nil, fmt.Errorf("invalid mint price %q", price)
	}
	return wei, nil
}

// ValidateAddress validates an Ethereum address
func ValidateAddress(addr string) error {
	if len(addr) != 42 {
		return errors.New("invalid address length: must be 42 characters (0x + 40 hex)")
	}
	if !strings.HasPrefix(addr, "0x") {
		return errors.New("invalid address: must start with 0x")
	}
	for _, c := range addr[2:] {
		isDigit := c >= '0' && c <= '9'
		isLowerHex := c >= 'a' && c <= 'f'
		isUpperHex := c >= 'A' && c <= 'F'
		if !isDigit && !isLowerHex && !isUpperHex {
			return errors.New("invalid address: contains non-hex characters")
		}
	}
	return nil
}

// ValidateTxHash validates a transaction hash
func ValidateTxHash(hash string) error {
	if len(hash) != 66 || !strings.HasPrefix(hash, "0x") {
		return errors.New("invalid transaction hash: must be 0x + 64 hex")
	}
	return nil
}

// ValidateChainID validates a chain ID
func ValidateChainID(chainID int64) error {
	if chainID <= 0 {
		return errors.New("chain ID must be positive")
	}
	return nil
}

package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pendergraft/mintfactory/internal/artifacts"
	"github.com/pendergraft/mintfactory/internal/wallet"
)

// Error kinds. Every fatal deployment error is an *Error whose Kind is one
// of these, so callers can branch with errors.Is.
var (
	ErrWalletNotConnected           = wallet.ErrWalletNotConnected
	ErrArtifactNotFound             = artifacts.ErrArtifactNotFound
	ErrInvalidArtifact              = artifacts.ErrInvalidArtifact
	ErrInvalidParams                = errors.New("invalid deployment parameters")
	ErrUnknownChain                 = errors.New("unknown chain")
	ErrNetworkSwitchRejected        = errors.New("network switch rejected")
	ErrNetworkNotConfigured         = errors.New("network not configured in wallet")
	ErrNetworkMismatchAfterSwitch   = errors.New("wallet network mismatch after switch")
	ErrGasEstimationFailed          = errors.New("gas estimation failed")
	ErrUserRejectedSigning          = errors.New("transaction rejected by user")
	ErrInsufficientFunds            = errors.New("insufficient funds")
	ErrTransactionReverted          = errors.New("deployment transaction reverted")
	ErrDeploymentVerificationFailed = errors.New("deployment verification failed")
	ErrPostDeployConfigFailed       = errors.New("post-deployment configuration failed")
	ErrNetworkError                 = errors.New("network error")
	ErrDeploymentTimedOut           = errors.New("deployment timed out")
)

// Error is a fatal deployment failure.
type Error struct {
	Kind  error
	Step  string
	Chain string
	Err   error
}

func (e *Error) Error() string {
	msg, custom := e.message()
	if e.Err == nil {
		return msg
	}
	if !custom && errors.Is(e.Err, e.Kind) {
		return e.Err.Error()
	}
	return msg + ": " + e.Err.Error()
}

// message returns the user-facing text for the kind, and whether it is
// more specific than the kind's own text.
func (e *Error) message() (string, bool) {
	switch e.Kind {
	case ErrWalletNotConnected:
		return "no wallet account available; connect a wallet first", true
	case ErrArtifactNotFound:
		return "the contract for this token standard is not installed", true
	case ErrNetworkSwitchRejected:
		return fmt.Sprintf("network switch was declined; switch your wallet to %s to deploy", e.Chain), true
	case ErrNetworkNotConfigured:
		return fmt.Sprintf("%s is not configured in your wallet; add the network and try again", e.Chain), true
	case ErrNetworkMismatchAfterSwitch:
		return fmt.Sprintf("wallet is not on %s; switch networks manually and try again", e.Chain), true
	case ErrGasEstimationFailed:
		return "gas estimation failed; the deployment would likely revert", true
	case ErrUserRejectedSigning:
		return "deployment transaction was rejected in the wallet", true
	case ErrInsufficientFunds:
		return fmt.Sprintf("insufficient funds to pay for deployment gas on %s", e.Chain), true
	case ErrTransactionReverted:
		return fmt.Sprintf("deployment transaction reverted on %s", e.Chain), true
	case ErrDeploymentVerificationFailed:
		return fmt.Sprintf("no contract code found at the deployed address on %s", e.Chain), true
	case ErrDeploymentTimedOut:
		return fmt.Sprintf("deployment timed out during %s", e.Step), true
	case nil:
		return "deployment failed", false
	}
	return e.Kind.Error(), false
}

// Unwrap exposes both the kind and the cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// reason is a wallet-level failure category, independent of the step that
// observed it.
type reason int

const (
	reasonUnknown reason = iota
	reasonUserRejected
	reasonUnknownChain
	reasonUnauthorized
	reasonDisconnected
	reasonRequestPending
	reasonInsufficientFunds
)

// codeReasons is the EIP-1193 / JSON-RPC code table.
var codeReasons = map[int]reason{
	wallet.CodeUserRejected:      reasonUserRejected,
	wallet.CodeUnauthorized:      reasonUnauthorized,
	wallet.CodeDisconnected:      reasonDisconnected,
	wallet.CodeChainDisconnected: reasonDisconnected,
	wallet.CodeUnrecognizedChain: reasonUnknownChain,
	wallet.CodeRequestPending:    reasonRequestPending,
}

// messageReasons covers providers that report failures only as text, such
// as -32000 "insufficient funds for gas * price + value".
var messageReasons = []struct {
	substr string
	reason reason
}{
	{"insufficient funds", reasonInsufficientFunds},
	{"user rejected", reasonUserRejected},
	{"user denied", reasonUserRejected},
	{"rejected by user", reasonUserRejected},
	{"unrecognized chain", reasonUnknownChain},
}

func classify(err error) reason {
	if pe, ok := wallet.AsProviderError(err); ok {
		if r, ok := codeReasons[pe.Code]; ok {
			return r
		}
	}
	msg := strings.ToLower(err.Error())
	for _, m := range messageReasons {
		if strings.Contains(msg, m.substr) {
			return m.reason
		}
	}
	return reasonUnknown
}

// Kinds per step for each reason. Reasons missing from a step's table fall
// back to ErrNetworkError.
var (
	switchKinds = map[reason]error{
		reasonUserRejected: ErrNetworkSwitchRejected,
		reasonUnknownChain: ErrNetworkNotConfigured,
		reasonUnauthorized: ErrWalletNotConnected,
	}
	signKinds = map[reason]error{
		reasonUserRejected:      ErrUserRejectedSigning,
		reasonInsufficientFunds: ErrInsufficientFunds,
		reasonUnauthorized:      ErrWalletNotConnected,
	}
	readKinds = map[reason]error{
		reasonUnauthorized: ErrWalletNotConnected,
	}
)

func kindFor(table map[reason]error, err error) error {
	if errors.Is(err, ErrWalletNotConnected) {
		return ErrWalletNotConnected
	}
	if k, ok := table[classify(err)]; ok {
		return k
	}
	return ErrNetworkError
}

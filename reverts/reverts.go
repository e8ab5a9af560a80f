// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Kind classifies a revert.
type Kind uint8

const (
	// Validation input rejected, not retryable without changing the input.
	Validation Kind = iota
	// Paused operation rejected while the pool is paused.
	Paused
	// InsufficientLiquidity the liquidity pool cannot serve the request yet.
	InsufficientLiquidity
	// InsufficientFunds an account or vault holds less than required.
	InsufficientFunds
	// ArithmeticOverflow a checked operation left the working integer width.
	ArithmeticOverflow
	// ExternalService a fund-movement call failed.
	ExternalService
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Paused:
		return "paused"
	case InsufficientLiquidity:
		return "insufficient-liquidity"
	case InsufficientFunds:
		return "insufficient-funds"
	case ArithmeticOverflow:
		return "arithmetic-overflow"
	case ExternalService:
		return "external-service"
	default:
		return "unknown"
	}
}

// ErrRevert is a user visible failure of an operation. A revert aborts the whole
// operation, the execution environment discards every effect.
type ErrRevert struct {
	kind      Kind
	message   string
	retryable bool
	cause     error
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		kind:    Validation,
		message: message,
	}
}

func newKind(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:      kind,
		message:   message,
		retryable: kind == Paused || kind == InsufficientLiquidity || kind == InsufficientFunds,
	}
}

// newPending is a validation revert that resolves by waiting, e.g. an epoch boundary.
func newPending(message string) *ErrRevert {
	return &ErrRevert{
		kind:      Validation,
		message:   message,
		retryable: true,
	}
}

// External wraps the failure of an external fund-movement call.
func External(op string, cause error) *ErrRevert {
	return &ErrRevert{
		kind:    ExternalService,
		message: op,
		cause:   cause,
	}
}

func (e *ErrRevert) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *ErrRevert) Unwrap() error {
	return e.cause
}

// Kind returns the class of the revert.
func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// Retryable reports whether the same call may succeed later once conditions change.
func (e *ErrRevert) Retryable() bool {
	return e.retryable
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of the first revert in err's chain.
func KindOf(err error) (Kind, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind, true
	}
	return 0, false
}

// IsRetryable reports whether err is a revert that may succeed on a later retry.
func IsRetryable(err error) bool {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.retryable
	}
	return false
}

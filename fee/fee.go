// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fee implements fractional fees expressed in basis-point cents.
package fee

import (
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/stakehouse/lsd/reverts"
)

// Denominator is the number of bp cents in 100%.
const Denominator uint32 = 1_000_000

var (
	denominator = uint256.NewInt(uint64(Denominator))
	percent     = decimal.NewFromInt(int64(Denominator / 100))
)

// Fee is a fraction in units of 1/1,000,000 (a hundredth of a basis point).
type Fee struct {
	BpCents uint32
}

// FromBasisPoints creates a fee from basis points (1/10,000).
func FromBasisPoints(bp uint32) Fee {
	return Fee{BpCents: bp * 100}
}

// FromBpCents creates a fee from bp cents.
func FromBpCents(bpCents uint32) Fee {
	return Fee{BpCents: bpCents}
}

// Apply returns floor(amount * fee).
func (f Fee) Apply(amount uint64) uint64 {
	if f.BpCents == 0 || amount == 0 {
		return 0
	}
	x := uint256.NewInt(amount)
	// never overflows while the fee is at most 100%
	res, _ := new(uint256.Int).MulDivOverflow(x, uint256.NewInt(uint64(f.BpCents)), denominator)
	return res.Uint64()
}

// Check returns an error if the fee exceeds 100%.
func (f Fee) Check() error {
	if f.BpCents > Denominator {
		return errors.Wrapf(reverts.ErrInvalidFee, "%s exceeds 100%%", f)
	}
	return nil
}

// Cmp compares two fees.
func (f Fee) Cmp(other Fee) int {
	switch {
	case f.BpCents < other.BpCents:
		return -1
	case f.BpCents > other.BpCents:
		return 1
	default:
		return 0
	}
}

// String formats the fee as a percentage, e.g. "0.3%".
func (f Fee) String() string {
	return decimal.NewFromInt(int64(f.BpCents)).Div(percent).String() + "%"
}

// Parse parses a percentage such as "5%", "0.0125%" or a bare fraction such as "0.05".
func Parse(s string) (Fee, error) {
	s = strings.TrimSpace(s)
	var (
		d   decimal.Decimal
		err error
	)
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		d, err = decimal.NewFromString(strings.TrimSpace(pct))
		if err != nil {
			return Fee{}, errors.Wrapf(err, "parse fee %q", s)
		}
		d = d.Mul(percent)
	} else {
		d, err = decimal.NewFromString(s)
		if err != nil {
			return Fee{}, errors.Wrapf(err, "parse fee %q", s)
		}
		d = d.Mul(decimal.NewFromInt(int64(Denominator)))
	}
	if d.IsNegative() || !d.IsInteger() {
		return Fee{}, errors.Wrapf(reverts.ErrInvalidFee, "%q is not a whole number of bp cents", s)
	}
	if d.GreaterThan(decimal.NewFromInt(int64(Denominator))) {
		return Fee{}, errors.Wrapf(reverts.ErrInvalidFee, "%q exceeds 100%%", s)
	}
	return Fee{BpCents: uint32(d.IntPart())}, nil
}

// MarshalText encodes the fee as a percentage.
func (f Fee) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText decodes a percentage.
func (f *Fee) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

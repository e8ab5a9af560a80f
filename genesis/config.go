// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math"
	"math/big"
	"os"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/stakehouse/lsd/fee"
	"github.com/stakehouse/lsd/lsd"
)

// default rent exempt reserves of token and stake accounts.
const (
	DefaultTokenAccountRent uint64 = 2_039_280
	DefaultStakeAccountRent uint64 = 2_282_880

	DefaultStakeListCapacity uint32 = 1_000
)

var lamportsPerSol = decimal.NewFromInt(int64(lsd.LamportsPerSol))

// Sol is an amount of lamports written in yaml as a decimal amount of the base
// currency, such as "1.5".
type Sol uint64

func (s Sol) Lamports() uint64 { return uint64(s) }

func (s Sol) String() string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(s)), -9).String()
}

// MarshalText implements encoding.TextMarshaler.
func (s Sol) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sol) UnmarshalText(text []byte) error {
	d, err := decimal.NewFromString(string(text))
	if err != nil {
		return errors.Wrapf(err, "invalid amount %q", text)
	}
	lamports := d.Mul(lamportsPerSol)
	if lamports.IsNegative() || !lamports.Equal(lamports.Truncate(0)) {
		return errors.Errorf("amount %q is not a whole number of lamports", text)
	}
	b := lamports.BigInt()
	if !b.IsUint64() {
		return errors.Errorf("amount %q overflows", text)
	}
	*s = Sol(b.Uint64())
	return nil
}

// PoolConfig configures the liquidity pool. Unset fees take defaults.
type PoolConfig struct {
	MinFee          *fee.Fee `yaml:"min_fee"`
	MaxFee          *fee.Fee `yaml:"max_fee"`
	LiquidityTarget Sol      `yaml:"liquidity_target"`
	TreasuryCut     *fee.Fee `yaml:"treasury_cut"`
	// Liquidity seeds the sol leg.
	Liquidity Sol `yaml:"liquidity"`
}

// Account is a wallet funded at genesis. Tokens are minted to its token account.
type Account struct {
	Name     string `yaml:"name"`
	Lamports Sol    `yaml:"lamports"`
	Tokens   Sol    `yaml:"tokens"`
}

// Stake is a delegated stake account owned by the pool at genesis.
type Stake struct {
	Name     string `yaml:"name"`
	Lamports Sol    `yaml:"lamports"`
	Voter    string `yaml:"voter"`
}

// Config describes a pool at genesis.
type Config struct {
	Name  string `yaml:"name"`
	Epoch uint64 `yaml:"epoch"`

	RewardFee         fee.Fee `yaml:"reward_fee"`
	DelayedUnstakeFee fee.Fee `yaml:"delayed_unstake_fee"`
	MinDeposit        uint64  `yaml:"min_deposit"`
	MinWithdraw       uint64  `yaml:"min_withdraw"`
	// StakingCap of zero leaves staking uncapped.
	StakingCap Sol `yaml:"staking_cap"`

	TokenAccountRent  uint64 `yaml:"token_account_rent"`
	StakeAccountRent  uint64 `yaml:"stake_account_rent"`
	StakeListCapacity uint32 `yaml:"stake_list_capacity"`

	// TreasuryOwner names the owner of the treasury token account. Without an
	// owner no treasury is created and protocol fees are skipped.
	TreasuryOwner string `yaml:"treasury_owner"`
	// Reserve is deposited into the reserve on top of the lamports backing
	// genesis tokens.
	Reserve Sol `yaml:"reserve"`

	Pool     PoolConfig `yaml:"pool"`
	Accounts []Account  `yaml:"accounts"`
	Stakes   []Stake    `yaml:"stakes"`
}

// Load reads a yaml config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "genesis %s", path)
	}
	return cfg, nil
}

// Parse decodes a yaml config, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize applies defaults to unset fields and validates the result.
func (c *Config) Normalize() error {
	c.applyDefaults()
	return c.Validate()
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "lsd"
	}
	if c.MinDeposit == 0 {
		c.MinDeposit = 1
	}
	if c.MinWithdraw == 0 {
		c.MinWithdraw = 1
	}
	if c.StakingCap == 0 {
		c.StakingCap = math.MaxUint64
	}
	if c.TokenAccountRent == 0 {
		c.TokenAccountRent = DefaultTokenAccountRent
	}
	if c.StakeAccountRent == 0 {
		c.StakeAccountRent = DefaultStakeAccountRent
	}
	if c.StakeListCapacity == 0 {
		c.StakeListCapacity = DefaultStakeListCapacity
	}
	if c.Pool.MinFee == nil {
		f := fee.FromBasisPoints(30)
		c.Pool.MinFee = &f
	}
	if c.Pool.MaxFee == nil {
		f := fee.FromBasisPoints(300)
		c.Pool.MaxFee = &f
	}
	if c.Pool.TreasuryCut == nil {
		f := fee.FromBasisPoints(2_500)
		c.Pool.TreasuryCut = &f
	}
	if c.Pool.LiquidityTarget == 0 {
		c.Pool.LiquidityTarget = Sol(10_000 * lsd.LamportsPerSol)
	}
	for i := range c.Stakes {
		if c.Stakes[i].Voter == "" {
			c.Stakes[i].Voter = "voter"
		}
	}
}

// Validate checks the parts of the config not covered by state and pool
// validation.
func (c *Config) Validate() error {
	names := make(map[string]bool)
	for _, a := range c.Accounts {
		if a.Name == "" {
			return errors.New("account name is required")
		}
		if names[a.Name] {
			return errors.Errorf("duplicate account %q", a.Name)
		}
		names[a.Name] = true
	}
	for _, s := range c.Stakes {
		if s.Name == "" {
			return errors.New("stake name is required")
		}
		if names[s.Name] {
			return errors.Errorf("duplicate account %q", s.Name)
		}
		names[s.Name] = true
		if s.Lamports == 0 {
			return errors.Errorf("stake %q: lamports must be set", s.Name)
		}
	}
	if uint32(len(c.Stakes)) > c.StakeListCapacity {
		return errors.Errorf("%d stakes exceed the stake list capacity %d", len(c.Stakes), c.StakeListCapacity)
	}
	return nil
}

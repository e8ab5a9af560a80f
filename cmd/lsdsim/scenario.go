// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/stakehouse/lsd/genesis"
	"github.com/stakehouse/lsd/liqpool"
	"github.com/stakehouse/lsd/state"
)

// step operations.
const (
	opDeposit       = "deposit"
	opLiquidUnstake = "liquid_unstake"
	opOrderUnstake  = "order_unstake"
	opClaim         = "claim"
	opAdvance       = "advance"
	opStake         = "stake"
	opDeactivate    = "deactivate"
	opReward        = "reward"
	opSlash         = "slash"
	opCrank         = "crank"
	opPause         = "pause"
	opResume        = "resume"
	opConfig        = "config"
	opConfigLp      = "config_lp"
)

var knownOps = map[string]bool{
	opDeposit: true, opLiquidUnstake: true, opOrderUnstake: true, opClaim: true,
	opAdvance: true, opStake: true, opDeactivate: true, opReward: true, opSlash: true,
	opCrank: true, opPause: true, opResume: true, opConfig: true, opConfigLp: true,
}

// Step is one action of a scenario.
type Step struct {
	Op string `yaml:"op"`
	// Account names the genesis wallet acting.
	Account string `yaml:"account"`
	// Amount of lamports or tokens, in whole units.
	Amount genesis.Sol `yaml:"amount"`
	// Ticket is the position of the ticket among those ordered in the scenario.
	Ticket int `yaml:"ticket"`
	// Stake names a stake account.
	Stake     string `yaml:"stake"`
	Voter     string `yaml:"voter"`
	Emergency bool   `yaml:"emergency"`
	Epochs    uint64 `yaml:"epochs"`

	Config   *state.ConfigParams   `yaml:"config"`
	ConfigLp *liqpool.ConfigParams `yaml:"config_lp"`

	// Expect is empty when the step must succeed, otherwise the revert kind
	// or a fragment of the error the step must fail with.
	Expect string `yaml:"expect"`
}

// Scenario is a genesis and a sequence of steps run against it.
type Scenario struct {
	Name    string         `yaml:"name"`
	Genesis genesis.Config `yaml:"genesis"`
	Steps   []Step         `yaml:"steps"`
}

func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrapf(err, "scenario %s", path)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := sc.Genesis.Normalize(); err != nil {
		return nil, errors.Wrapf(err, "scenario %s", sc.Name)
	}

	for i, st := range sc.Steps {
		if !knownOps[st.Op] {
			return nil, errors.Errorf("scenario %s: step %d: unknown op %q", sc.Name, i, st.Op)
		}
	}
	return &sc, nil
}

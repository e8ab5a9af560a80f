// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	verbosityFlag = cli.StringFlag{
		Name:   "verbosity",
		Value:  "info",
		Usage:  "log level (crit|error|warn|info|debug|trace)",
		EnvVar: "LSDSIM_VERBOSITY",
	}
	logJSONFlag = cli.BoolFlag{
		Name:  "log-json",
		Usage: "write logs in json",
	}
	logFileFlag = cli.StringFlag{
		Name:  "log-file",
		Usage: "also write logs to a rotated file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Usage: "keep the ledger of each scenario in a level db under this directory, instead of memory",
	}
	eventDBFlag = cli.StringFlag{
		Name:  "eventdb",
		Usage: "path of the sqlite event journal (in memory if empty)",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Usage: "after a single scenario ran, serve its pool on this address until interrupted",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "collect prometheus metrics, served with the API on /metrics",
	}
	noProgressFlag = cli.BoolFlag{
		Name:  "no-progress",
		Usage: "do not draw a progress bar",
	}
)

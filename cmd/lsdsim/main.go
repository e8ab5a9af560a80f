// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// lsdsim runs liquid staking scenarios against an in-process ledger.
package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakehouse/lsd/api"
	"github.com/stakehouse/lsd/eventdb"
	"github.com/stakehouse/lsd/events"
	"github.com/stakehouse/lsd/ledger/memledger"
	"github.com/stakehouse/lsd/log"
	"github.com/stakehouse/lsd/lvldb"
	"github.com/stakehouse/lsd/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "lsdsim")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "lsdsim",
		Usage:     "Liquid staking pool simulator",
		ArgsUsage: "<scenario.yaml>...",
		Flags: []cli.Flag{
			verbosityFlag,
			logJSONFlag,
			logFileFlag,
			dataDirFlag,
			eventDBFlag,
			apiAddrFlag,
			apiCorsFlag,
			enableMetricsFlag,
			noProgressFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogger(ctx *cli.Context) (io.Closer, error) {
	lvl, err := log.ParseLevel(ctx.String(verbosityFlag.Name))
	if err != nil {
		return nil, errors.Wrap(err, "-verbosity")
	}
	return log.Setup(os.Stderr, log.Options{
		Verbosity: lvl,
		JSON:      ctx.Bool(logJSONFlag.Name),
		File:      ctx.String(logFileFlag.Name),
	})
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func openLedger(dataDir, name string) (*memledger.Ledger, error) {
	if dataDir == "" {
		return memledger.New(memledger.Options{})
	}
	path := filepath.Join(dataDir, name)
	if _, err := os.Stat(path); err == nil {
		return nil, errors.Errorf("ledger %s already exists", path)
	}
	db, err := lvldb.New(path, lvldb.Options{CacheSize: 16, OpenFilesCacheCapacity: 64})
	if err != nil {
		return nil, errors.Wrapf(err, "open ledger %s", path)
	}
	return memledger.Open(db, memledger.Options{})
}

func openEventDB(path string) (*eventdb.EventDB, error) {
	if path == "" {
		return eventdb.NewMem()
	}
	return eventdb.New(path)
}

func defaultAction(ctx *cli.Context) error {
	closer, err := initLogger(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	if ctx.NArg() == 0 {
		return errors.New("no scenario given")
	}
	apiAddr := ctx.String(apiAddrFlag.Name)
	if apiAddr != "" && ctx.NArg() > 1 {
		return errors.New("-api-addr needs a single scenario")
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	var scenarios []*Scenario
	total := 0
	for _, path := range ctx.Args() {
		sc, err := loadScenario(path)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, sc)
		total += len(sc.Steps)
	}

	journal, err := openEventDB(ctx.String(eventDBFlag.Name))
	if err != nil {
		return errors.Wrap(err, "open event db")
	}
	defer journal.Close()
	sink := events.Multi{journal, events.LogSink{}, events.MetricsSink{}}

	exitSignal := handleExitSignal()

	var progress *pb.ProgressBar
	if !ctx.Bool(noProgressFlag.Name) {
		progress = pb.New(total).SetMaxWidth(90).Start()
	}
	var mu sync.Mutex
	done := func() {
		if progress != nil {
			mu.Lock()
			progress.Increment()
			mu.Unlock()
		}
	}

	sims := make([]*sim, len(scenarios))
	g, gctx := errgroup.WithContext(exitSignal)
	for i, sc := range scenarios {
		l, err := openLedger(ctx.String(dataDirFlag.Name), sc.Name)
		if err != nil {
			return err
		}
		defer l.Close()
		if sc.Genesis.Epoch > 0 {
			l.AdvanceEpoch(sc.Genesis.Epoch)
		}
		s, err := newSim(sc, l, sink)
		if err != nil {
			return err
		}
		sims[i] = s
		g.Go(func() error {
			return s.run(gctx, done)
		})
	}
	err = g.Wait()
	if progress != nil {
		progress.Finish()
	}
	for _, s := range sims {
		fmt.Println(s.summary())
	}
	if err != nil {
		return err
	}

	if apiAddr == "" {
		return nil
	}
	return serveAPI(exitSignal, apiAddr, ctx.String(apiCorsFlag.Name), ctx.Bool(enableMetricsFlag.Name), sims[0], journal)
}

func serveAPI(ctx context.Context, addr, cors string, enableMetrics bool, s *sim, journal *eventdb.EventDB) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	handler := api.New(s.eng, journal, api.Options{
		AllowedOrigins: cors,
		EnableMetrics:  enableMetrics,
	})
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}

	var g errgroup.Group
	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	logger.Info("API started", "url", "http://"+listener.Addr().String())

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("API shutdown", "err", err)
	}
	return g.Wait()
}

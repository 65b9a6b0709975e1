// Copyright (c) 2022-2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package energy_main runs the energy simulator: it parses the command line, builds the
// simulation, optionally imports a scenario and runs the interactive console until exit.
package energy_main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/simnet/linear-energy/cli"
	"github.com/simnet/linear-energy/cli/runcli"
	"github.com/simnet/linear-energy/energy"
	"github.com/simnet/linear-energy/logger"
	"github.com/simnet/linear-energy/progctx"
	"github.com/simnet/linear-energy/simulation"
	"github.com/simnet/linear-energy/types"
	visualizeStatslog "github.com/simnet/linear-energy/visualize/statslog"
)

type MainArgs struct {
	LogLevel       string
	LogFile        string
	Seed           int64
	Model          string
	Defaults       string
	Scenario       string
	OutputDir      string
	Title          string
	SnapshotPeriod uint64
	SaveName       string
	NoSave         bool
	NoStats        bool
	HistoryFile    string
}

var (
	args MainArgs
)

func parseArgs(fs *flag.FlagSet, arguments []string) error {
	fs.StringVar(&args.LogLevel, "log", "warn", "set logging level: micro, trace, debug, info, note, warn, error, off.")
	fs.StringVar(&args.LogFile, "log-file", "", "also write the log to this file")
	fs.Int64Var(&args.Seed, "seed", 0, "root seed for the energy jitter of new nodes (0: random)")
	fs.StringVar(&args.Model, "model", "", "energy model, overrides the scenario file (default \""+energy.DefaultModelName+"\")")
	fs.StringVar(&args.Defaults, "defaults", "", "default energy parameters of new nodes, e.g. \"energy=5000 tx=2\"")
	fs.StringVar(&args.Scenario, "scenario", "", "YAML scenario file with nodes and events to load at start")
	fs.StringVar(&args.OutputDir, "out", simulation.DefaultOutputDir, "output directory of the energy result files")
	fs.StringVar(&args.Title, "title", "", "title written in the energy result files")
	fs.Uint64Var(&args.SnapshotPeriod, "snapshot", simulation.DefaultSnapshotPeriod, "period of energy snapshots in us (0: off)")
	fs.StringVar(&args.SaveName, "save", "energy", "name of the energy result files written at exit")
	fs.BoolVar(&args.NoSave, "no-save", false, "do not write energy result files at exit")
	fs.BoolVar(&args.NoStats, "no-stats", false, "do not write the node state log (\""+visualizeStatslog.StatsLogFileName+"\")")
	fs.StringVar(&args.HistoryFile, "history", "", "console history file")

	return fs.Parse(arguments)
}

func Main(ctx *progctx.ProgCtx, cliOptions *runcli.CliOptions) {
	if err := parseArgs(flag.CommandLine, os.Args[1:]); err != nil {
		logger.Fatal(err)
	}

	level, err := logger.ParseLevelString(args.LogLevel)
	logger.FatalIfError(err)
	logger.SetLevel(level)
	if args.LogFile != "" {
		logger.SetOutput([]string{"stderr", args.LogFile})
	}

	// run console in the main goroutine
	ctx.Defer(func() {
		_ = os.Stdin.Close()
	})
	handleSignals(ctx)

	sim, err := createSimulation()
	logger.FatalIfError(err)
	if !args.NoStats {
		sim.SetVisualizer(visualizeStatslog.NewStatslogVisualizer(sim.GetConfig().OutputDir))
	}

	if cliOptions == nil {
		cliOptions = runcli.DefaultCliOptions()
	}
	if args.HistoryFile != "" {
		cliOptions.HistoryFile = args.HistoryFile
	}

	rt := cli.NewCmdRunner(ctx, sim)
	err = runcli.RunCli(rt, cliOptions)
	ctx.Cancel(errors.Wrapf(err, "console exit"))

	if !args.NoSave {
		if err := sim.SaveEnergyData(args.SaveName); err != nil {
			logger.Errorf("saving energy data failed: %v", err)
		} else {
			logger.Infof("energy data saved to %s/%s.txt", sim.GetConfig().OutputDir, args.SaveName)
		}
	}

	sim.Stop()

	logger.Debugf("waiting for the simulator to stop gracefully ...")
	ctx.Wait()
}

func handleSignals(ctx *progctx.ProgCtx) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)
	signal.Ignore(syscall.SIGALRM)

	ctx.WaitAdd("handleSignals", 1)
	go func() {
		defer logger.Debugf("handleSignals exit.")
		defer ctx.WaitDone("handleSignals")

		for {
			select {
			case sig := <-c:
				logger.Infof("signal received: %v", sig)
				ctx.Cancel(nil)
			case <-ctx.Done():
				signal.Stop(c)
				return
			}
		}
	}()
}

func createSimulation() (*simulation.Simulation, error) {
	simcfg := simulation.DefaultConfig()
	simcfg.Seed = args.Seed
	simcfg.OutputDir = args.OutputDir
	simcfg.Title = args.Title
	simcfg.SnapshotPeriod = args.SnapshotPeriod

	var scenario *simulation.YamlConfigFile
	if args.Scenario != "" {
		var err error
		if scenario, err = simulation.LoadYamlConfig(args.Scenario); err != nil {
			return nil, err
		}
		scenario.ApplyEnergyConfig(simcfg)
	}

	if args.Model != "" {
		simcfg.ModelName = args.Model
	}
	defaults, err := types.ParseParamList(args.Defaults)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid -defaults")
	}
	for _, p := range defaults {
		simcfg.DefaultParams[p.Key] = p.Value
	}

	sim, err := simulation.NewSimulation(simcfg)
	if err != nil {
		return nil, err
	}

	if scenario != nil {
		if err := sim.ImportScenario(scenario); err != nil {
			logger.Warnf("scenario %s: %v", args.Scenario, err)
		}
	}
	return sim, nil
}

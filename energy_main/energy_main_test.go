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

package energy_main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simnet/linear-energy/energy"
	"github.com/simnet/linear-energy/simulation"
)

func parseTestArgs(t *testing.T, arguments ...string) {
	args = MainArgs{}
	fs := flag.NewFlagSet("otns-energy", flag.ContinueOnError)
	require.Nil(t, parseArgs(fs, arguments))
}

func TestParseArgsDefaults(t *testing.T) {
	parseTestArgs(t)
	assert.Equal(t, "warn", args.LogLevel)
	assert.Equal(t, simulation.DefaultOutputDir, args.OutputDir)
	assert.Equal(t, uint64(simulation.DefaultSnapshotPeriod), args.SnapshotPeriod)
	assert.Equal(t, "energy", args.SaveName)
	assert.False(t, args.NoSave)
}

func TestCreateSimulationWithScenario(t *testing.T) {
	dir := t.TempDir()
	scenario := filepath.Join(dir, "scenario.yaml")
	require.Nil(t, os.WriteFile(scenario, []byte(`
energy:
    snapshot-period: 5000
    defaults:
        energy: 1000
        rx: 4
nodes:
    - id: 1
    - id: 2
      params:
          sink: 2
`), 0644))

	parseTestArgs(t, "-seed", "7", "-defaults", "energy=5000 tx=2", "-scenario", scenario,
		"-out", dir, "-title", "test run")
	sim, err := createSimulation()
	require.Nil(t, err)

	cfg := sim.GetConfig()
	assert.Equal(t, energy.LinearModelName, cfg.ModelName)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, dir, cfg.OutputDir)
	// the scenario overrides the flag default, explicit default parameters override the scenario
	assert.Equal(t, uint64(5000), cfg.SnapshotPeriod)
	assert.Equal(t, map[string]string{"energy": "5000", "rx": "4", "tx": "2"}, cfg.DefaultParams)
	assert.Equal(t, []int{1, 2}, sim.GetNodes())

	lb, ok := sim.Energy().GetNode(1).Model().(*energy.LinearBattery)
	require.True(t, ok)
	assert.Equal(t, 5000.0, lb.Initial())
}

func TestCreateSimulationErrors(t *testing.T) {
	parseTestArgs(t, "-defaults", "energy")
	_, err := createSimulation()
	assert.NotNil(t, err)

	parseTestArgs(t, "-model", "solar")
	_, err = createSimulation()
	assert.NotNil(t, err)

	parseTestArgs(t, "-scenario", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = createSimulation()
	assert.NotNil(t, err)
}

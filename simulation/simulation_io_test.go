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

package simulation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/simnet/linear-energy/energy"
	. "github.com/simnet/linear-energy/types"
)

var testYamlFile = `
energy:
    model: linear
    snapshot-period: 1000
    defaults:
        energy: 50000
nodes:
    - id: 1
      params:
          tx: 2
          rx: 3
    - id: 2
      params:
          sink: 2
      radio: rx
    - id: 3
      params:
          energy: lots
events:
    - at: 100
      node: 1
      type: idle
      duration: 10
    - at: 200
      node: 1
      type: radio
      state: tx
      tx-power: -4
    - at: 300
      node: 1
      type: radio
      state: sleep
    - at: 50
      node: 7
      type: consume
      amount: 3
`

func TestYamlConfigUnmarshall(t *testing.T) {
	cfgFile := YamlConfigFile{}
	err := yaml.Unmarshal([]byte(testYamlFile), &cfgFile)
	require.Nil(t, err)
	assert.Equal(t, "linear", *cfgFile.Energy.Model)
	assert.Equal(t, uint64(1000), *cfgFile.Energy.SnapshotPeriod)
	assert.Equal(t, "50000", cfgFile.Energy.Defaults["energy"])
	assert.Equal(t, 3, len(cfgFile.NodesList))
	assert.Equal(t, "2", cfgFile.NodesList[0].Params["tx"])
	assert.Equal(t, "rx", *cfgFile.NodesList[1].Radio)
	assert.Equal(t, 4, len(cfgFile.EventsList))
	assert.Equal(t, -4, cfgFile.EventsList[1].TxPower)
}

func TestImportScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.Nil(t, os.WriteFile(path, []byte(testYamlFile), 0644))
	cfgFile, err := LoadYamlConfig(path)
	require.Nil(t, err)

	cfg := DefaultConfig()
	cfg.Seed = 7
	cfgFile.ApplyEnergyConfig(cfg)
	assert.Equal(t, uint64(1000), cfg.SnapshotPeriod)
	sim, err := NewSimulation(cfg)
	require.Nil(t, err)

	// node 3 and the event for node 7 fail, the rest is imported.
	err = sim.ImportScenario(cfgFile)
	assert.NotNil(t, err)
	assert.Equal(t, []NodeId{1, 2}, sim.GetNodes())

	b := sim.Energy().GetNode(1).Model().(*energy.LinearBattery)
	start := b.EnergyRemaining(1)
	tx, rx, idle := b.Rates()
	assert.Equal(t, []float64{2, 3, 3}, []float64{tx, rx, idle})
	assert.Equal(t, 50000.0, b.Initial())
	assert.Equal(t, RadioRx, sim.Energy().GetNode(2).GetRadioStatus().State)

	sim.Go(500)
	// 10 idle * 3, then 100us of Tx * 2
	assert.Equal(t, start-30-200, b.EnergyRemaining(1))
	assert.Equal(t, 0, len(sim.GetKills()))

	exported := sim.ExportNodes()
	require.Equal(t, 2, len(exported))
	assert.Equal(t, "3", exported[0].Params["rx"])
}

func TestLoadYamlConfigErrors(t *testing.T) {
	_, err := LoadYamlConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NotNil(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.Nil(t, os.WriteFile(path, []byte("nodes: {id: [1"), 0644))
	_, err = LoadYamlConfig(path)
	assert.NotNil(t, err)
}

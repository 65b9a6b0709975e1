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

package energy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/simnet/linear-energy/types"
)

func newTestAnalyser(t *testing.T) (*EnergyAnalyser, *mockHost) {
	host := &mockHost{}
	ea, err := NewEnergyAnalyser(host, "")
	require.Nil(t, err)
	assert.Equal(t, LinearModelName, ea.GetModelName())
	return ea, host
}

func TestNewEnergyAnalyserUnknownModel(t *testing.T) {
	ea, err := NewEnergyAnalyser(&mockHost{}, "solar")
	assert.Nil(t, ea)
	assert.NotNil(t, err)
}

func TestEnergyAnalyserAddDelete(t *testing.T) {
	ea, _ := newTestAnalyser(t)

	assert.Nil(t, ea.AddNode(2, ParamList{{Key: ParamEnergy, Value: "100"}}, 0))
	assert.Nil(t, ea.AddNode(1, nil, 0))
	assert.NotNil(t, ea.AddNode(1, nil, 0))
	assert.Equal(t, []NodeId{1, 2}, ea.GetNodeIds())

	err := ea.AddNode(3, ParamList{{Key: ParamTx, Value: "fast"}}, 0)
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Nil(t, ea.GetNode(3))

	ea.StoreNetworkEnergy(10)
	assert.Equal(t, 1, len(ea.GetNetworkEnergyHistory()))

	ea.DeleteNode(2)
	assert.Nil(t, ea.GetNode(2))
	assert.Equal(t, 1, len(ea.GetNetworkEnergyHistory()))
	ea.DeleteNode(1)
	ea.DeleteNode(1)
	assert.Equal(t, 0, len(ea.GetNetworkEnergyHistory()))
	assert.Nil(t, ea.GetLatestEnergyOfNodes())
}

func TestEnergyAnalyserSnapshots(t *testing.T) {
	ea, host := newTestAnalyser(t)
	require.Nil(t, ea.AddNode(1, ParamList{{Key: ParamEnergy, Value: "1000"}, {Key: ParamTx, Value: "2"}}, 0))
	require.Nil(t, ea.AddNode(2, ParamList{{Key: ParamEnergy, Value: "100"}, {Key: ParamRx, Value: "1"}}, 0))
	require.Nil(t, ea.AddNode(3, ParamList{{Key: ParamEnergy, Value: "100"}, {Key: ParamSink, Value: "3"}}, 0))

	ea.SetRadioState(1, RadioTx, 0, 0)
	ea.SetRadioState(2, RadioRx, 0, 0)
	ea.SetRadioState(42, RadioRx, 0, 0)
	ea.StoreNetworkEnergy(200)

	latest := ea.GetLatestEnergyOfNodes()
	require.Equal(t, 3, len(latest))
	assert.Equal(t, NodeEnergySnapshot{NodeId: 1, Remaining: 600, Consumed: 400, Status: 0.6, Percent: 60}, latest[0])
	assert.Equal(t, NodeEnergySnapshot{NodeId: 2, Remaining: 0, Consumed: 100, Status: 0, Percent: 0}, latest[1])
	assert.Equal(t, NodeEnergySnapshot{NodeId: 3, Remaining: 0, Consumed: 0, Status: 0, Percent: 100}, latest[2])
	assert.Equal(t, []NodeId{2}, host.kills)

	net := ea.GetNetworkEnergyHistory()[0]
	assert.Equal(t, uint64(200), net.Timestamp)
	assert.InDelta(t, 200.0, net.AverageRemaining, 1e-9)
	assert.InDelta(t, 500.0/3, net.AverageConsumed, 1e-9)
	assert.Equal(t, 1, net.DepletedNodes)
	assert.Equal(t, 1, len(ea.GetEnergyHistoryByNodes()))
}

func TestEnergyAnalyserSaveToFile(t *testing.T) {
	ea, _ := newTestAnalyser(t)
	require.Nil(t, ea.AddNode(1, ParamList{{Key: ParamEnergy, Value: "1000"}}, 0))
	ea.SetRadioState(1, RadioSleep, 0, 0)
	ea.StoreNetworkEnergy(30000)
	ea.StoreNetworkEnergy(60000)

	dir := filepath.Join(t.TempDir(), "energy_results")
	ea.SetTitle("demo")
	require.Nil(t, ea.SaveEnergyDataToFile(dir, "", 60000))

	nodes, err := os.ReadFile(filepath.Join(dir, "demo_nodes.txt"))
	require.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(string(nodes)), "\n")
	assert.Equal(t, 3, len(lines))
	assert.Equal(t, "Duration of the simulated network (in milliseconds): 60", lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "1\t0.000000\t1000.000000\t0.000000\t0\t0\t0\t60000"))

	network, err := os.ReadFile(filepath.Join(dir, "demo.txt"))
	require.Nil(t, err)
	lines = strings.Split(strings.TrimSpace(string(network)), "\n")
	assert.Equal(t, 4, len(lines))
	assert.Equal(t, "30\t0.000000\t1000.000000\t0.000000\t1", lines[2])

	require.Nil(t, ea.SaveEnergyDataToFile(dir, "other", 60000))
	_, err = os.Stat(filepath.Join(dir, "other.txt"))
	assert.Nil(t, err)
}

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
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/simnet/linear-energy/types"
)

func newTestBattery(t *testing.T, nodeid NodeId, params ParamList, jitter int) (*LinearBattery, *mockHost) {
	host := &mockHost{jitter: jitter}
	b, err := NewLinearBattery(nodeid, params, host)
	require.Nil(t, err)
	require.NotNil(t, b)
	return b, host
}

func TestLinearBatteryDefaults(t *testing.T) {
	b, host := newTestBattery(t, 1, nil, 0)
	assert.Equal(t, DefaultEnergy, b.Initial())
	assert.Equal(t, DefaultEnergy, b.EnergyRemaining(1))
	tx, rx, idle := b.Rates()
	assert.Equal(t, 1.0, tx)
	assert.Equal(t, 1.0, rx)
	assert.Equal(t, 1.0, idle)
	assert.Equal(t, InvalidNodeId, b.Sink())
	assert.Equal(t, [][2]int{{0, MaxEnergyJitter}}, host.ranges)
}

func TestLinearBatteryJitterKeepsCapacity(t *testing.T) {
	b, _ := newTestBattery(t, 1, ParamList{{Key: ParamEnergy, Value: "500"}, {Key: ParamTx, Value: "2"}}, 120)
	assert.Equal(t, 500.0, b.Initial())
	assert.Equal(t, 380.0, b.EnergyRemaining(1))
	assert.Equal(t, 120.0, b.EnergyConsumed(1))

	b.ConsumeTx(1, 10, 0)
	assert.Equal(t, 360.0, b.EnergyRemaining(1))
}

func TestLinearBatteryNegativeAfterCreation(t *testing.T) {
	b, host := newTestBattery(t, 1, ParamList{{Key: ParamEnergy, Value: "500"}}, 700)

	// not clamped, and no kill, until the first consuming call.
	assert.Equal(t, -200.0, b.EnergyRemaining(1))
	assert.Equal(t, 0.0, b.EnergyStatus(1))
	assert.Equal(t, 0, len(host.kills))

	b.ConsumeRx(1, 0)
	assert.Equal(t, 0.0, b.EnergyRemaining(1))
	assert.Equal(t, []NodeId{1}, host.kills)
}

func TestLinearBatteryIdleFollowsRx(t *testing.T) {
	b, _ := newTestBattery(t, 1, ParamList{{Key: ParamRx, Value: "3"}}, 0)
	_, rx, idle := b.Rates()
	assert.Equal(t, 3.0, rx)
	assert.Equal(t, 3.0, idle)

	b.ConsumeIdle(1, 10)
	assert.Equal(t, 30.0, b.EnergyConsumed(1))

	// explicit idle wins, regardless of order.
	b, _ = newTestBattery(t, 1, ParamList{{Key: ParamIdle, Value: "0.5"}, {Key: ParamRx, Value: "3"}}, 0)
	_, rx, idle = b.Rates()
	assert.Equal(t, 3.0, rx)
	assert.Equal(t, 0.5, idle)

	b, _ = newTestBattery(t, 1, ParamList{{Key: ParamRx, Value: "3"}, {Key: ParamIdle, Value: "0.5"}}, 0)
	_, _, idle = b.Rates()
	assert.Equal(t, 0.5, idle)
}

func TestLinearBatteryUnknownParamIgnored(t *testing.T) {
	b, _ := newTestBattery(t, 1, ParamList{{Key: "acc", Value: "20"}, {Key: ParamTx, Value: "4"}}, 0)
	tx, _, _ := b.Rates()
	assert.Equal(t, 4.0, tx)
}

func TestLinearBatteryConfigError(t *testing.T) {
	for _, params := range []ParamList{
		{{Key: ParamEnergy, Value: "lots"}},
		{{Key: ParamTx, Value: ""}},
		{{Key: ParamRx, Value: "1,5"}},
		{{Key: ParamIdle, Value: "x"}},
		{{Key: ParamSink, Value: "2.5"}},
	} {
		host := &mockHost{}
		b, err := NewLinearBattery(1, params, host)
		assert.Nil(t, b)
		assert.NotNil(t, err)

		var cfgErr *ConfigError
		assert.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, params[0].Key, cfgErr.Key)
		assert.Equal(t, params[0].Value, cfgErr.Value)
		assert.NotNil(t, errors.Cause(err))
		assert.Equal(t, 0, len(host.ranges))
	}
}

func TestLinearBatteryConsumeAll(t *testing.T) {
	b, host := newTestBattery(t, 2, ParamList{{Key: ParamEnergy, Value: "1000"}, {Key: ParamTx, Value: "2"}, {Key: ParamRx, Value: "3"}, {Key: ParamIdle, Value: "0.5"}}, 0)

	b.ConsumeTx(2, 100, -10)
	assert.Equal(t, 800.0, b.EnergyRemaining(2))
	b.ConsumeRx(2, 100)
	assert.Equal(t, 500.0, b.EnergyRemaining(2))
	b.ConsumeIdle(2, 100)
	assert.Equal(t, 450.0, b.EnergyRemaining(2))
	b.Consume(2, 50)
	assert.Equal(t, 400.0, b.EnergyRemaining(2))
	assert.Equal(t, 600.0, b.EnergyConsumed(2))
	assert.Equal(t, 0.4, b.EnergyStatus(2))
	assert.Equal(t, 0, len(host.kills))
}

func TestLinearBatteryDeathRepeats(t *testing.T) {
	b, host := newTestBattery(t, 3, ParamList{{Key: ParamEnergy, Value: "100"}}, 0)

	b.Consume(3, 100)
	assert.Equal(t, 0.0, b.EnergyRemaining(3))
	assert.Equal(t, 0.0, b.EnergyStatus(3))
	assert.Equal(t, []NodeId{3}, host.kills)

	b.ConsumeTx(3, 5, 0)
	b.ConsumeIdle(3, 1)
	assert.Equal(t, 0.0, b.EnergyRemaining(3))
	assert.Equal(t, []NodeId{3, 3, 3}, host.kills)
	assert.Equal(t, 100.0, b.EnergyConsumed(3))
}

func TestLinearBatteryInvariants(t *testing.T) {
	b, _ := newTestBattery(t, 4, ParamList{{Key: ParamEnergy, Value: "1000"}, {Key: ParamTx, Value: "3"}}, 17)
	ops := []func(){
		func() { b.ConsumeTx(4, 7, 0) },
		func() { b.ConsumeRx(4, 13) },
		func() { b.ConsumeIdle(4, 21) },
		func() { b.Consume(4, 33.5) },
		func() { b.ConsumeMove(4, 40) },
		func() { b.ConsumeMove(4, -15) },
	}
	for i := 0; i < 200; i++ {
		ops[i%len(ops)]()
		e := b.EnergyRemaining(4)
		assert.True(t, e >= 0 && e <= b.Initial())
		assert.Equal(t, b.Initial(), b.EnergyConsumed(4)+b.EnergyRemaining(4))
		s := b.EnergyStatus(4)
		assert.True(t, s >= 0 && s <= 1)
		if e == 0 {
			assert.Equal(t, 0.0, s)
		}
	}
}

func TestLinearBatteryConsumeMove(t *testing.T) {
	b, host := newTestBattery(t, 5, ParamList{{Key: ParamEnergy, Value: "100"}}, 10)
	assert.Equal(t, 90.0, b.EnergyRemaining(5))

	assert.Equal(t, 100.0, b.ConsumeMove(5, 50))
	assert.Equal(t, 100.0, b.EnergyRemaining(5))

	assert.Equal(t, 75.0, b.ConsumeMove(5, -25))
	assert.Equal(t, 0.0, b.ConsumeMove(5, -80))
	assert.Equal(t, []NodeId{5}, host.kills)
}

func TestLinearBatterySink(t *testing.T) {
	b, host := newTestBattery(t, 5, ParamList{{Key: ParamEnergy, Value: "100"}, {Key: ParamSink, Value: "5"}}, 0)
	assert.Equal(t, 5, b.Sink())

	b.ConsumeTx(5, 1000, 0)
	b.ConsumeRx(5, 1000)
	b.ConsumeIdle(5, 1000)
	b.Consume(5, 1000)
	assert.Equal(t, 0.0, b.ConsumeMove(5, -1000))
	assert.Equal(t, 0, len(host.kills))

	assert.Equal(t, 0.0, b.EnergyConsumed(5))
	assert.Equal(t, 0.0, b.EnergyRemaining(5))
	assert.Equal(t, 0.0, b.EnergyStatus(5))

	// the percentage is not sink-gated and still sees the untouched charge.
	assert.Equal(t, 100, b.PercentRemaining())

	// the same record, called for another node ID, is accounted normally.
	b.Consume(6, 40)
	assert.Equal(t, 60.0, b.EnergyRemaining(6))
}

func TestLinearBatteryPercentAndIoctl(t *testing.T) {
	b, host := newTestBattery(t, 1, ParamList{{Key: ParamEnergy, Value: "1000"}}, 0)
	assert.Equal(t, 100, b.PercentRemaining())

	assert.Equal(t, 87, b.Ioctl(1, IoctlMove, -125))
	assert.Equal(t, 875.0, b.EnergyRemaining(1))

	assert.Equal(t, 100, b.Ioctl(1, IoctlMove, 5000))
	assert.Equal(t, 100, b.Ioctl(1, IoctlRequest(99), -500))
	assert.Equal(t, 1000.0, b.EnergyRemaining(1))

	assert.Equal(t, 0, b.Ioctl(1, IoctlMove, -2000))
	assert.Equal(t, []NodeId{1}, host.kills)
}

func TestLinearBatteryZeroCapacity(t *testing.T) {
	b, _ := newTestBattery(t, 1, ParamList{{Key: ParamEnergy, Value: "0"}}, 0)
	assert.Equal(t, 0, b.PercentRemaining())
	assert.Equal(t, 0.0, b.EnergyStatus(1))
	assert.False(t, math.IsNaN(b.EnergyConsumed(1)))
}

func TestLinearBatteryDestroy(t *testing.T) {
	b, host := newTestBattery(t, 1, ParamList{{Key: ParamEnergy, Value: "10"}}, 0)
	b.Destroy()
	assert.NotPanics(t, func() {
		b.Consume(1, 20)
	})
	assert.Equal(t, 0, len(host.kills))
}

func TestModelRegistry(t *testing.T) {
	creator, err := GetModelCreator(LinearModelName)
	assert.Nil(t, err)
	m, err := creator(1, nil, &mockHost{})
	assert.Nil(t, err)
	assert.Equal(t, DefaultEnergy, m.EnergyRemaining(1))

	_, err = GetModelCreator("quadratic")
	assert.NotNil(t, err)
	assert.Contains(t, GetModelNames(), LinearModelName)
}

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
	"strconv"

	"github.com/pkg/errors"

	"github.com/simnet/linear-energy/logger"
	. "github.com/simnet/linear-energy/types"
)

// Parameter keys understood by the linear battery.
const (
	ParamEnergy = "energy"
	ParamTx     = "tx"
	ParamRx     = "rx"
	ParamIdle   = "idle"
	ParamSink   = "sink"
)

const (
	DefaultEnergy   float64 = 1000000
	DefaultTxRate   float64 = 1
	DefaultRxRate   float64 = 1
	MaxEnergyJitter int     = 10000
)

// LinearBattery is a battery that drains linearly with the time spent transmitting, receiving
// or idling. One instance exists per node. A node whose ID equals the configured sink is exempt
// from all accounting and reports zero for every query.
type LinearBattery struct {
	energy   float64
	initial  float64
	txRate   float64
	rxRate   float64
	idleRate float64
	sink     NodeId
	host     Host
	logger   *logger.NodeLogger
}

// NewLinearBattery creates the battery of node nodeid from the host's parameter list. The
// starting charge is the configured capacity minus a random jitter, which is not clamped: the
// charge may start below zero and is only clamped by the first consuming call.
//
// Unless idle is given itself, the idle rate follows the configured rx rate, including an
// explicit rx; it is not a fixed copy of DefaultRxRate taken before the parameters are read.
func NewLinearBattery(nodeid NodeId, params ParamList, host Host) (*LinearBattery, error) {
	b := &LinearBattery{
		energy:  DefaultEnergy,
		initial: DefaultEnergy,
		txRate:  DefaultTxRate,
		rxRate:  DefaultRxRate,
		sink:    InvalidNodeId,
		host:    host,
		logger:  logger.GetNodeLogger(nodeid),
	}
	// idle follows rx unless it is set explicitly.
	b.idleRate = b.rxRate
	idleSet := false

	for _, p := range params {
		var err error
		switch p.Key {
		case ParamEnergy:
			b.energy, err = parseFloatParam(p)
		case ParamTx:
			b.txRate, err = parseFloatParam(p)
		case ParamRx:
			b.rxRate, err = parseFloatParam(p)
			if err == nil && !idleSet {
				b.idleRate = b.rxRate
			}
		case ParamSink:
			b.sink, err = parseIntParam(p)
		case ParamIdle:
			b.idleRate, err = parseFloatParam(p)
			idleSet = true
		default:
			b.logger.Debugf("ignoring unknown energy parameter '%s'", p.Key)
		}
		if err != nil {
			return nil, err
		}
	}

	b.initial = b.energy
	b.energy -= float64(host.RandomIntegerRange(0, MaxEnergyJitter))
	b.logger.Debugf("linear battery: initial=%v energy=%v tx=%v rx=%v idle=%v sink=%d", b.initial, b.energy,
		b.txRate, b.rxRate, b.idleRate, b.sink)
	return b, nil
}

func parseFloatParam(p Param) (float64, error) {
	v, err := strconv.ParseFloat(p.Value, 64)
	if err != nil {
		return 0, &ConfigError{Key: p.Key, Value: p.Value, Err: errors.Wrapf(err, "expected a number")}
	}
	return v, nil
}

func parseIntParam(p Param) (int, error) {
	v, err := strconv.Atoi(p.Value)
	if err != nil {
		return 0, &ConfigError{Key: p.Key, Value: p.Value, Err: errors.Wrapf(err, "expected an integer")}
	}
	return v, nil
}

func (b *LinearBattery) isSink(nodeid NodeId) bool {
	return nodeid == b.sink
}

// debit subtracts amount and signals death on exhaustion, each time it happens.
func (b *LinearBattery) debit(nodeid NodeId, amount float64) {
	b.energy -= amount
	if b.energy <= 0 {
		b.energy = 0
		b.kill(nodeid)
	}
}

func (b *LinearBattery) kill(nodeid NodeId) {
	b.logger.Infof("battery depleted")
	if b.host != nil {
		b.host.KillNode(nodeid)
	}
}

func (b *LinearBattery) ConsumeTx(nodeid NodeId, duration uint64, txPower DbmValue) {
	if b.isSink(nodeid) {
		return
	}
	b.debit(nodeid, float64(duration)*b.txRate)
}

func (b *LinearBattery) ConsumeRx(nodeid NodeId, duration uint64) {
	if b.isSink(nodeid) {
		return
	}
	b.debit(nodeid, float64(duration)*b.rxRate)
}

func (b *LinearBattery) ConsumeIdle(nodeid NodeId, duration uint64) {
	if b.isSink(nodeid) {
		return
	}
	b.debit(nodeid, float64(duration)*b.idleRate)
}

func (b *LinearBattery) Consume(nodeid NodeId, amount float64) {
	if b.isSink(nodeid) {
		return
	}
	b.debit(nodeid, amount)
}

// ConsumeMove adds delta, which may be negative. Gains never lift the charge above capacity.
func (b *LinearBattery) ConsumeMove(nodeid NodeId, delta float64) float64 {
	if b.isSink(nodeid) {
		return 0
	}

	b.energy += delta
	if b.energy <= 0 {
		b.energy = 0
		b.kill(nodeid)
	}
	if b.energy > b.initial {
		b.energy = b.initial
	}
	return b.energy
}

func (b *LinearBattery) EnergyConsumed(nodeid NodeId) float64 {
	if b.isSink(nodeid) {
		return 0
	}
	return b.initial - b.energy
}

func (b *LinearBattery) EnergyRemaining(nodeid NodeId) float64 {
	if b.isSink(nodeid) {
		return 0
	}
	return b.energy
}

func (b *LinearBattery) EnergyStatus(nodeid NodeId) float64 {
	if b.isSink(nodeid) || b.energy <= 0 {
		return 0
	}
	status := b.energy / b.initial
	if status >= 0 && status <= 1 {
		return status
	}
	return 0
}

// PercentRemaining is not gated on the sink, unlike the other queries.
func (b *LinearBattery) PercentRemaining() int {
	if b.initial <= 0 {
		return 0
	}
	return int(math.Floor(b.energy * 100 / b.initial))
}

func (b *LinearBattery) Ioctl(nodeid NodeId, request IoctlRequest, input int) int {
	switch request {
	case IoctlMove:
		b.ConsumeMove(nodeid, float64(input))
	default:
		b.logger.Warnf("unsupported energy ioctl request %d", request)
	}
	return b.PercentRemaining()
}

func (b *LinearBattery) Destroy() {
	b.host = nil
}

// Initial returns the full-charge capacity.
func (b *LinearBattery) Initial() float64 {
	return b.initial
}

// Rates returns the Tx, Rx and idle cost per unit of time.
func (b *LinearBattery) Rates() (tx float64, rx float64, idle float64) {
	return b.txRate, b.rxRate, b.idleRate
}

// Sink returns the node ID that is exempt from accounting.
func (b *LinearBattery) Sink() NodeId {
	return b.sink
}

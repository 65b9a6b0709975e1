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
	"sort"

	"github.com/pkg/errors"

	. "github.com/simnet/linear-energy/types"
)

// Host is what an energy model needs from the simulator that loads it.
type Host interface {
	// KillNode notifies the host that the node ran out of energy. It is fire-and-forget; the model
	// does not wait for, or react to, the outcome.
	KillNode(nodeid NodeId)

	// RandomIntegerRange returns a random integer in the closed range [low, high].
	RandomIntegerRange(low, high int) int
}

// EnergyModel is the per-node energy policy as seen by the host. The host calls it whenever the
// node does something that costs (or yields) energy. Implementations are not safe for concurrent
// use; the simulation calls them one event at a time.
type EnergyModel interface {
	// ConsumeTx debits the cost of transmitting for duration. The Tx power may be ignored.
	ConsumeTx(nodeid NodeId, duration uint64, txPower DbmValue)
	// ConsumeRx debits the cost of receiving for duration.
	ConsumeRx(nodeid NodeId, duration uint64)
	// ConsumeIdle debits the cost of idling for duration.
	ConsumeIdle(nodeid NodeId, duration uint64)
	// ConsumeMove adds a signed delta (a move cost or a harvested gain) and returns the new energy.
	ConsumeMove(nodeid NodeId, delta float64) float64
	// Consume debits an amount computed by the caller.
	Consume(nodeid NodeId, amount float64)

	EnergyConsumed(nodeid NodeId) float64
	EnergyRemaining(nodeid NodeId) float64
	// EnergyStatus returns the remaining fraction of the capacity, in [0, 1].
	EnergyStatus(nodeid NodeId) float64
	// PercentRemaining returns the remaining charge as an integer percentage.
	PercentRemaining() int

	// Ioctl is the generic query entry point of the host.
	Ioctl(nodeid NodeId, request IoctlRequest, input int) int

	// Destroy releases the model's node state.
	Destroy()
}

// IoctlRequest selects the operation of EnergyModel.Ioctl.
type IoctlRequest int

const (
	// IoctlMove applies the input as a signed energy delta, then reports the percentage left.
	IoctlMove IoctlRequest = 0
)

// ModelCreator creates the model instance for a newly added node.
type ModelCreator func(nodeid NodeId, params ParamList, host Host) (EnergyModel, error)

const (
	LinearModelName  = "linear"
	DefaultModelName = LinearModelName
)

var modelCreators = map[string]ModelCreator{
	LinearModelName: func(nodeid NodeId, params ParamList, host Host) (EnergyModel, error) {
		return NewLinearBattery(nodeid, params, host)
	},
}

// RegisterModel makes an energy model available by name. An existing name is replaced.
func RegisterModel(name string, creator ModelCreator) {
	modelCreators[name] = creator
}

// GetModelCreator looks up a registered energy model.
func GetModelCreator(name string) (ModelCreator, error) {
	creator, ok := modelCreators[name]
	if !ok {
		return nil, errors.Errorf("unknown energy model '%s'", name)
	}
	return creator, nil
}

// GetModelNames lists the registered energy models, sorted.
func GetModelNames() []string {
	names := make([]string, 0, len(modelCreators))
	for name := range modelCreators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

/*
 * Per-state bookkeeping of a node's radio, used to turn radio state changes into
 * Tx/Rx/Idle consumption calls. Time in microseconds.
 */
type RadioStatus struct {
	State         RadioStates
	TxPower       DbmValue
	SpentDisabled uint64
	SpentSleep    uint64
	SpentTx       uint64
	SpentRx       uint64
	Timestamp     uint64
}

const (
	ComputePeriod uint64 = 30000000 // in microseconds
)

// NodeEnergySnapshot is the energy state of one node at a moment in time.
type NodeEnergySnapshot struct {
	NodeId    NodeId  `yaml:"id"`
	Remaining float64 `yaml:"remaining"`
	Consumed  float64 `yaml:"consumed"`
	Status    float64 `yaml:"status"`
	Percent   int     `yaml:"percent"`
}

// NetworkConsumption averages the node snapshots taken at Timestamp.
type NetworkConsumption struct {
	Timestamp        uint64
	AverageRemaining float64
	AverageConsumed  float64
	AverageStatus    float64
	DepletedNodes    int
}

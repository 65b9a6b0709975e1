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
	"github.com/simnet/linear-energy/logger"
	. "github.com/simnet/linear-energy/types"
)

// NodeEnergy binds a node's energy model to the time its radio spends in each state.
type NodeEnergy struct {
	nodeId NodeId
	model  EnergyModel
	radio  RadioStatus
}

// ComputeRadioState charges the model for the time spent in the current radio state since the
// last update. A disabled radio costs nothing.
func (node *NodeEnergy) ComputeRadioState(timestamp uint64) {
	if timestamp < node.radio.Timestamp {
		logger.Panicf("node %d: radio timestamp went back from %d to %d", node.nodeId, node.radio.Timestamp, timestamp)
	}
	delta := timestamp - node.radio.Timestamp
	node.radio.Timestamp = timestamp
	if delta == 0 {
		return
	}

	switch node.radio.State {
	case RadioDisabled:
		node.radio.SpentDisabled += delta
	case RadioSleep:
		node.radio.SpentSleep += delta
		node.model.ConsumeIdle(node.nodeId, delta)
	case RadioTx:
		node.radio.SpentTx += delta
		node.model.ConsumeTx(node.nodeId, delta, node.radio.TxPower)
	case RadioRx:
		node.radio.SpentRx += delta
		node.model.ConsumeRx(node.nodeId, delta)
	default:
		logger.Panicf("unknown radio state: %v", node.radio.State)
	}
}

// SetRadioState settles the energy spent in the previous state and switches to the new one.
func (node *NodeEnergy) SetRadioState(state RadioStates, txPower DbmValue, timestamp uint64) {
	node.ComputeRadioState(timestamp)
	node.radio.State = state
	node.radio.TxPower = txPower
}

func (node *NodeEnergy) GetRadioStatus() RadioStatus {
	return node.radio
}

func (node *NodeEnergy) Model() EnergyModel {
	return node.model
}

func (node *NodeEnergy) Snapshot() NodeEnergySnapshot {
	return NodeEnergySnapshot{
		NodeId:    node.nodeId,
		Remaining: node.model.EnergyRemaining(node.nodeId),
		Consumed:  node.model.EnergyConsumed(node.nodeId),
		Status:    node.model.EnergyStatus(node.nodeId),
		Percent:   node.model.PercentRemaining(),
	}
}

func newNode(nodeID NodeId, model EnergyModel, timestamp uint64) *NodeEnergy {
	node := &NodeEnergy{
		nodeId: nodeID,
		model:  model,
		radio: RadioStatus{
			State:     RadioDisabled,
			Timestamp: timestamp,
		},
	}
	return node
}

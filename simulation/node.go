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
	"github.com/simnet/linear-energy/logger"
	. "github.com/simnet/linear-energy/types"
)

// NodeConfig is the configuration of a new simulated node.
type NodeConfig struct {
	ID         NodeId // InvalidNodeId for the next available ID
	Params     ParamList
	RadioState RadioStates
	TxPower    DbmValue
}

func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		ID:         InvalidNodeId,
		Params:     nil,
		RadioState: RadioDisabled,
		TxPower:    0,
	}
}

type Node struct {
	Id       NodeId
	cfg      NodeConfig
	alive    bool
	killedAt uint64
	logger   *logger.NodeLogger
}

func newNode(cfg *NodeConfig) *Node {
	return &Node{
		Id:       cfg.ID,
		cfg:      *cfg,
		alive:    true,
		killedAt: Ever,
		logger:   logger.GetNodeLogger(cfg.ID),
	}
}

// IsAlive returns false once the node's energy model reported it dead.
func (node *Node) IsAlive() bool {
	return node.alive
}

// KilledAt returns the time the node died, or Ever.
func (node *Node) KilledAt() uint64 {
	return node.killedAt
}

func (node *Node) GetConfig() NodeConfig {
	return node.cfg
}

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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/simnet/linear-energy/logger"
	. "github.com/simnet/linear-energy/types"
)

// EnergyAnalyser owns the energy state of every node in a simulation and keeps a history of
// periodic snapshots. It is the host-side storage that the energy models live in.
type EnergyAnalyser struct {
	host                 Host
	modelName            string
	createModel          ModelCreator
	nodes                map[NodeId]*NodeEnergy
	networkHistory       []NetworkConsumption
	energyHistoryByNodes [][]NodeEnergySnapshot
	title                string
}

// AddNode creates the energy model of a new node. On a ConfigError nothing is attached.
func (e *EnergyAnalyser) AddNode(nodeID NodeId, params ParamList, timestamp uint64) error {
	if _, ok := e.nodes[nodeID]; ok {
		return errors.Errorf("node %d already has an energy model", nodeID)
	}
	model, err := e.createModel(nodeID, params, e.host)
	if err != nil {
		return errors.Wrapf(err, "node %d", nodeID)
	}
	e.nodes[nodeID] = newNode(nodeID, model, timestamp)
	return nil
}

func (e *EnergyAnalyser) DeleteNode(nodeID NodeId) {
	node, ok := e.nodes[nodeID]
	if !ok {
		return
	}
	node.model.Destroy()
	delete(e.nodes, nodeID)

	if len(e.nodes) == 0 {
		e.ClearEnergyData()
	}
}

func (e *EnergyAnalyser) GetNode(nodeID NodeId) *NodeEnergy {
	return e.nodes[nodeID]
}

// GetNodeIds returns the IDs of all nodes with an energy model, sorted.
func (e *EnergyAnalyser) GetNodeIds() []NodeId {
	ids := make([]NodeId, 0, len(e.nodes))
	for id := range e.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (e *EnergyAnalyser) GetModelName() string {
	return e.modelName
}

func (e *EnergyAnalyser) GetNetworkEnergyHistory() []NetworkConsumption {
	return e.networkHistory
}

func (e *EnergyAnalyser) GetEnergyHistoryByNodes() [][]NodeEnergySnapshot {
	return e.energyHistoryByNodes
}

func (e *EnergyAnalyser) GetLatestEnergyOfNodes() []NodeEnergySnapshot {
	if len(e.energyHistoryByNodes) == 0 {
		return nil
	}
	return e.energyHistoryByNodes[len(e.energyHistoryByNodes)-1]
}

// SetRadioState forwards a radio state change of a node, charging the time spent in the old state.
func (e *EnergyAnalyser) SetRadioState(nodeID NodeId, state RadioStates, txPower DbmValue, timestamp uint64) {
	node, ok := e.nodes[nodeID]
	if !ok {
		logger.Warnf("radio state change for node %d without energy model", nodeID)
		return
	}
	node.SetRadioState(state, txPower, timestamp)
}

// StoreNetworkEnergy settles all radio states up to timestamp and appends a snapshot of all nodes.
func (e *EnergyAnalyser) StoreNetworkEnergy(timestamp uint64) {
	nodesEnergySnapshot := make([]NodeEnergySnapshot, 0, len(e.nodes))
	networkSnapshot := NetworkConsumption{
		Timestamp: timestamp,
	}

	netSize := float64(len(e.nodes))
	for _, id := range e.GetNodeIds() {
		node := e.nodes[id]
		node.ComputeRadioState(timestamp)

		s := node.Snapshot()
		networkSnapshot.AverageRemaining += s.Remaining / netSize
		networkSnapshot.AverageConsumed += s.Consumed / netSize
		networkSnapshot.AverageStatus += s.Status / netSize
		if s.Status == 0 && s.Percent <= 0 {
			networkSnapshot.DepletedNodes++
		}
		nodesEnergySnapshot = append(nodesEnergySnapshot, s)
	}

	e.networkHistory = append(e.networkHistory, networkSnapshot)
	e.energyHistoryByNodes = append(e.energyHistoryByNodes, nodesEnergySnapshot)
}

// SaveEnergyDataToFile writes the per-node state (<name>_nodes.txt) and the network history
// (<name>.txt) into dir.
func (e *EnergyAnalyser) SaveEnergyDataToFile(dir string, name string, timestamp uint64) error {
	if name == "" {
		if e.title == "" {
			name = "energy"
		} else {
			name = e.title
		}
	}

	if err := os.MkdirAll(dir, 0777); err != nil {
		return errors.Wrapf(err, "create energy results directory")
	}

	path := filepath.Join(dir, name)
	fileNodes, err := os.Create(path + "_nodes.txt")
	if err != nil {
		return err
	}
	defer fileNodes.Close()

	fileNetwork, err := os.Create(path + ".txt")
	if err != nil {
		return err
	}
	defer fileNetwork.Close()

	if err = e.writeEnergyByNodes(fileNodes, timestamp); err != nil {
		return err
	}
	if err = e.writeNetworkEnergy(fileNetwork, timestamp); err != nil {
		return err
	}
	logger.Infof("energy data saved to %s", path)
	return nil
}

func (e *EnergyAnalyser) writeEnergyByNodes(w io.Writer, timestamp uint64) error {
	if _, err := fmt.Fprintf(w, "Duration of the simulated network (in milliseconds): %d\n", timestamp/1000); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "ID\tRemaining\tConsumed\tStatus\tPercent\tTx (us)\tRx (us)\tIdle (us)\n"); err != nil {
		return err
	}

	for _, id := range e.GetNodeIds() {
		node := e.nodes[id]
		s := node.Snapshot()
		_, err := fmt.Fprintf(w, "%d\t%f\t%f\t%f\t%d\t%d\t%d\t%d\n",
			id,
			s.Remaining,
			s.Consumed,
			s.Status,
			s.Percent,
			node.radio.SpentTx,
			node.radio.SpentRx,
			node.radio.SpentSleep,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *EnergyAnalyser) writeNetworkEnergy(w io.Writer, timestamp uint64) error {
	if _, err := fmt.Fprintf(w, "Duration of the simulated network (in milliseconds): %d\n", timestamp/1000); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Time (ms)\tAvg remaining\tAvg consumed\tAvg status\tDepleted\n"); err != nil {
		return err
	}
	for _, snapshot := range e.networkHistory {
		_, err := fmt.Fprintf(w, "%d\t%f\t%f\t%f\t%d\n",
			snapshot.Timestamp/1000,
			snapshot.AverageRemaining,
			snapshot.AverageConsumed,
			snapshot.AverageStatus,
			snapshot.DepletedNodes,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *EnergyAnalyser) ClearEnergyData() {
	logger.Debugf("Node's energy data cleared")
	e.networkHistory = make([]NetworkConsumption, 0, 3600)
	e.energyHistoryByNodes = make([][]NodeEnergySnapshot, 0, 3600)
}

func (e *EnergyAnalyser) SetTitle(title string) {
	e.title = title
}

// NewEnergyAnalyser creates the analyser for a host, using the named energy model for new nodes.
func NewEnergyAnalyser(host Host, modelName string) (*EnergyAnalyser, error) {
	if modelName == "" {
		modelName = DefaultModelName
	}
	creator, err := GetModelCreator(modelName)
	if err != nil {
		return nil, err
	}
	ea := &EnergyAnalyser{
		host:                 host,
		modelName:            modelName,
		createModel:          creator,
		nodes:                make(map[NodeId]*NodeEnergy),
		networkHistory:       make([]NetworkConsumption, 0, 3600), //Start with space for 1 sample every 30s for 1 hour = 1*60*60/30 = 3600 samples
		energyHistoryByNodes: make([][]NodeEnergySnapshot, 0, 3600),
	}
	return ea, nil
}

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

// Package simulation is a small discrete-event host for energy models. It owns the nodes, their
// energy state and a queue of scheduled activities, and it receives the kill notifications of
// depleted nodes.
package simulation

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/simnet/linear-energy/energy"
	"github.com/simnet/linear-energy/event"
	"github.com/simnet/linear-energy/logger"
	"github.com/simnet/linear-energy/prng"
	. "github.com/simnet/linear-energy/types"
	"github.com/simnet/linear-energy/visualize"
)

type Simulation struct {
	cfg      *Config
	nodes    map[NodeId]*Node
	energy   *energy.EnergyAnalyser
	evtQueue *event.EventQueue
	curTime  uint64
	kills    []KillRecord
	vis      visualize.Visualizer
}

func NewSimulation(cfg *Config) (*Simulation, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	prng.Init(cfg.Seed)

	s := &Simulation{
		cfg:      cfg,
		nodes:    map[NodeId]*Node{},
		evtQueue: event.NewEventQueue(),
		vis:      visualize.NewNopVisualizer(),
	}

	var err error
	if s.energy, err = energy.NewEnergyAnalyser(s, cfg.ModelName); err != nil {
		return nil, err
	}
	s.energy.SetTitle(cfg.Title)

	if cfg.SnapshotPeriod > 0 {
		s.evtQueue.Add(&event.Event{
			Timestamp: cfg.SnapshotPeriod,
			NodeId:    InvalidNodeId,
			Type:      event.EventTypeSnapshot,
		})
	}
	return s, nil
}

// SetVisualizer replaces the visualizer and initializes it with the current nodes.
func (s *Simulation) SetVisualizer(vis visualize.Visualizer) {
	logger.AssertNotNil(vis)
	s.vis = vis
	vis.Init()
	for _, id := range s.GetNodes() {
		vis.AddNode(id, s.isSink(id))
		if en := s.energy.GetNode(id); en != nil {
			vis.SetRadioState(id, en.GetRadioStatus().State)
		}
		if !s.nodes[id].alive {
			vis.OnNodeKilled(id)
		}
	}
	vis.AdvanceTime(s.curTime)
}

// Stop ends the simulation output.
func (s *Simulation) Stop() {
	s.vis.AdvanceTime(s.curTime)
	s.vis.Stop()
}

func (s *Simulation) GetConfig() *Config {
	return s.cfg
}

func (s *Simulation) Energy() *energy.EnergyAnalyser {
	return s.energy
}

// CurTime returns the current simulation time in us.
func (s *Simulation) CurTime() uint64 {
	return s.curTime
}

// AddNode adds a node with an energy model configured from the simulation defaults overridden
// by cfg.Params. If the model rejects its parameters, no node is added.
func (s *Simulation) AddNode(cfg *NodeConfig) (*Node, error) {
	if cfg.ID == InvalidNodeId {
		cfg.ID = s.genNodeId()
	}
	if cfg.ID < 0 || cfg.ID > MaxNodeId {
		return nil, errors.Errorf("invalid node id %d", cfg.ID)
	}
	if _, ok := s.nodes[cfg.ID]; ok {
		return nil, errors.Errorf("node %d already exists", cfg.ID)
	}

	params := append(ParamsFromMap(s.cfg.DefaultParams, paramKeyOrder...), cfg.Params...)
	if err := s.energy.AddNode(cfg.ID, params, s.curTime); err != nil {
		return nil, err
	}

	node := newNode(cfg)
	s.nodes[cfg.ID] = node
	node.logger.SetTime(s.curTime)
	node.logger.Debugf("added with energy parameters: %s", params)
	s.vis.AddNode(cfg.ID, s.isSink(cfg.ID))
	if cfg.RadioState != RadioDisabled {
		s.energy.SetRadioState(cfg.ID, cfg.RadioState, cfg.TxPower, s.curTime)
		s.vis.SetRadioState(cfg.ID, cfg.RadioState)
	}
	return node, nil
}

func (s *Simulation) isSink(nodeid NodeId) bool {
	en := s.energy.GetNode(nodeid)
	if en == nil {
		return false
	}
	if m, ok := en.Model().(interface{ Sink() NodeId }); ok {
		return m.Sink() == nodeid
	}
	return false
}

func (s *Simulation) genNodeId() NodeId {
	nodeid := 1
	for s.nodes[nodeid] != nil {
		nodeid++
	}
	return nodeid
}

func (s *Simulation) DeleteNode(nodeid NodeId) error {
	if _, ok := s.nodes[nodeid]; !ok {
		return errors.Wrapf(errNodeNotFound, "node %d", nodeid)
	}
	dropped := s.evtQueue.RemoveNode(nodeid)
	s.energy.DeleteNode(nodeid)
	delete(s.nodes, nodeid)
	s.vis.DeleteNode(nodeid)
	logger.DeleteNodeLogger(nodeid)
	logger.Debugf("node %d deleted, %d pending events dropped", nodeid, dropped)
	return nil
}

func (s *Simulation) GetNode(nodeid NodeId) *Node {
	return s.nodes[nodeid]
}

// GetNodes returns the IDs of all nodes, sorted.
func (s *Simulation) GetNodes() []NodeId {
	ids := make([]NodeId, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// GetKills returns all kill notifications received so far, in order.
func (s *Simulation) GetKills() []KillRecord {
	return s.kills
}

// KillNode is called by an energy model when the node's energy is exhausted. Every notification
// is recorded; the first one marks the node dead and cancels its pending activities.
func (s *Simulation) KillNode(nodeid NodeId) {
	node := s.nodes[nodeid]
	if node == nil {
		logger.Warnf("kill notification for unknown node %d", nodeid)
		return
	}

	s.kills = append(s.kills, KillRecord{NodeId: nodeid, Timestamp: s.curTime, Repeated: !node.alive})
	if !node.alive {
		return
	}

	node.alive = false
	node.killedAt = s.curTime
	node.logger.SetTime(s.curTime)
	node.logger.Notef("node killed: energy exhausted")
	s.evtQueue.RemoveNode(nodeid)
	s.vis.OnNodeKilled(nodeid)
}

func (s *Simulation) RandomIntegerRange(low, high int) int {
	return prng.NewEnergyJitter(low, high)
}

// Schedule queues an activity. Events in the past are run at the current time.
func (s *Simulation) Schedule(evt *event.Event) error {
	if evt.Type != event.EventTypeSnapshot {
		node := s.nodes[evt.NodeId]
		if node == nil {
			return errors.Wrapf(errNodeNotFound, "node %d", evt.NodeId)
		}
		if !node.alive {
			return errors.Errorf("node %d is dead", evt.NodeId)
		}
	}
	if evt.Timestamp < s.curTime {
		evt.Timestamp = s.curTime
	}
	s.evtQueue.Add(evt)
	return nil
}

// Go runs all activities up to and including curTime + duration, then sets the time to that moment.
func (s *Simulation) Go(duration uint64) {
	end := s.curTime + duration
	if end < s.curTime {
		end = Ever
	}
	for s.evtQueue.Len() > 0 && s.evtQueue.NextTimestamp() <= end {
		evt := s.evtQueue.PopNext()
		s.curTime = evt.Timestamp
		s.vis.AdvanceTime(s.curTime)
		s.dispatch(evt)
	}
	s.curTime = end
	s.vis.AdvanceTime(s.curTime)
}

// RunNow runs an activity at the current time.
func (s *Simulation) RunNow(evt *event.Event) error {
	evt.Timestamp = s.curTime
	if err := s.Schedule(evt); err != nil {
		return err
	}
	s.Go(0)
	return nil
}

func (s *Simulation) dispatch(evt *event.Event) {
	if evt.Type == event.EventTypeSnapshot {
		s.energy.StoreNetworkEnergy(s.curTime)
		s.disableDeadRadios()
		s.vis.UpdateNodesEnergy(s.energy.GetLatestEnergyOfNodes(), s.curTime)
		if s.cfg.SnapshotPeriod > 0 {
			s.evtQueue.Add(&event.Event{
				Timestamp: s.curTime + s.cfg.SnapshotPeriod,
				NodeId:    InvalidNodeId,
				Type:      event.EventTypeSnapshot,
			})
		}
		return
	}

	node := s.nodes[evt.NodeId]
	if node == nil || !node.alive {
		logger.Debugf("dropping %v for absent or dead node", evt)
		return
	}
	node.logger.SetTime(s.curTime)
	model := s.energy.GetNode(evt.NodeId).Model()

	switch evt.Type {
	case event.EventTypeTx:
		model.ConsumeTx(evt.NodeId, evt.Duration, evt.TxPower)
	case event.EventTypeRx:
		model.ConsumeRx(evt.NodeId, evt.Duration)
	case event.EventTypeIdle:
		model.ConsumeIdle(evt.NodeId, evt.Duration)
	case event.EventTypeConsume:
		model.Consume(evt.NodeId, evt.Amount)
	case event.EventTypeMove:
		pct := model.Ioctl(evt.NodeId, energy.IoctlMove, int(evt.Amount))
		node.logger.Debugf("move %v: %d%% energy left", evt.Amount, pct)
	case event.EventTypeRadioState:
		s.energy.SetRadioState(evt.NodeId, evt.State, evt.TxPower, s.curTime)
		s.vis.SetRadioState(evt.NodeId, evt.State)
	default:
		logger.Warnf("unknown event type %d", evt.Type)
	}
	s.disableDeadRadios()
}

// disableDeadRadios switches off the radio of killed nodes, so that they stop being charged.
func (s *Simulation) disableDeadRadios() {
	for _, id := range s.GetNodes() {
		node := s.nodes[id]
		if node.alive {
			continue
		}
		en := s.energy.GetNode(id)
		if en != nil && en.GetRadioStatus().State != RadioDisabled {
			en.SetRadioState(RadioDisabled, 0, s.curTime)
			s.vis.SetRadioState(id, RadioDisabled)
		}
	}
}

// SaveEnergyData stores a final snapshot and writes the energy result files.
func (s *Simulation) SaveEnergyData(name string) error {
	s.energy.StoreNetworkEnergy(s.curTime)
	s.disableDeadRadios()
	return s.energy.SaveEnergyDataToFile(s.cfg.OutputDir, name, s.curTime)
}

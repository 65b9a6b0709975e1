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

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/simnet/linear-energy/event"
	"github.com/simnet/linear-energy/logger"
	. "github.com/simnet/linear-energy/types"
)

// YamlEnergyConfig holds the simulation-wide energy settings of a scenario file.
type YamlEnergyConfig struct {
	Model          *string           `yaml:"model,omitempty"`
	SnapshotPeriod *uint64           `yaml:"snapshot-period,omitempty"`
	Defaults       map[string]string `yaml:"defaults,omitempty"`
}

type YamlNodeConfig struct {
	ID      NodeId            `yaml:"id"`
	Params  map[string]string `yaml:"params,omitempty"`
	Radio   *string           `yaml:"radio,omitempty"`
	TxPower *int              `yaml:"tx-power,omitempty"`
}

type YamlEventConfig struct {
	At       uint64  `yaml:"at"`
	Node     NodeId  `yaml:"node"`
	Type     string  `yaml:"type"`
	Duration uint64  `yaml:"duration,omitempty"`
	Amount   float64 `yaml:"amount,omitempty"`
	State    string  `yaml:"state,omitempty"`
	TxPower  int     `yaml:"tx-power,omitempty"`
}

// YamlConfigFile is a scenario: energy settings, nodes and their scheduled activities.
type YamlConfigFile struct {
	Energy     YamlEnergyConfig  `yaml:"energy"`
	NodesList  []YamlNodeConfig  `yaml:"nodes"`
	EventsList []YamlEventConfig `yaml:"events"`
}

func LoadYamlConfig(path string) (*YamlConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read scenario")
	}
	cfgFile := &YamlConfigFile{}
	if err = yaml.Unmarshal(data, cfgFile); err != nil {
		return nil, errors.Wrapf(err, "parse scenario %s", path)
	}
	return cfgFile, nil
}

// ApplyEnergyConfig copies the scenario's energy settings into a simulation config. It must be
// used before the simulation is created, since the model is fixed from then on.
func (cfgFile *YamlConfigFile) ApplyEnergyConfig(cfg *Config) {
	if cfgFile.Energy.Model != nil {
		cfg.ModelName = *cfgFile.Energy.Model
	}
	if cfgFile.Energy.SnapshotPeriod != nil {
		cfg.SnapshotPeriod = *cfgFile.Energy.SnapshotPeriod
	}
	for k, v := range cfgFile.Energy.Defaults {
		cfg.DefaultParams[k] = v
	}
}

// ImportScenario adds the nodes of a scenario and schedules its events, relative to the current
// time. It continues past failing nodes or events and reports that not all could be imported.
func (s *Simulation) ImportScenario(cfgFile *YamlConfigFile) error {
	allOk := true

	for _, yn := range cfgFile.NodesList {
		cfg := DefaultNodeConfig()
		cfg.ID = yn.ID
		cfg.Params = ParamsFromMap(yn.Params, paramKeyOrder...)
		if yn.Radio != nil {
			state, err := ParseRadioState(*yn.Radio)
			if err != nil {
				logger.Warnf("node %d: %v", yn.ID, err)
				allOk = false
				continue
			}
			cfg.RadioState = state
		}
		if yn.TxPower != nil {
			cfg.TxPower = DbmValue(*yn.TxPower)
		}
		if _, err := s.AddNode(&cfg); err != nil {
			logger.Warnf("Warn: %v", err)
			allOk = false
		}
	}

	base := s.curTime
	for _, ye := range cfgFile.EventsList {
		evt, err := ye.toEvent(base)
		if err == nil {
			err = s.Schedule(evt)
		}
		if err != nil {
			logger.Warnf("Warn: event at %d for node %d: %v", ye.At, ye.Node, err)
			allOk = false
		}
	}

	if !allOk {
		return errors.Errorf("not all nodes and events could be imported - see error log above")
	}
	return nil
}

func (ye *YamlEventConfig) toEvent(base uint64) (*event.Event, error) {
	et, err := event.ParseEventType(ye.Type)
	if err != nil {
		return nil, err
	}
	if et == event.EventTypeSnapshot {
		return nil, errors.Errorf("snapshot events are scheduled by the simulation")
	}
	evt := &event.Event{
		Timestamp: base + ye.At,
		NodeId:    ye.Node,
		Type:      et,
		Duration:  ye.Duration,
		Amount:    ye.Amount,
		TxPower:   DbmValue(ye.TxPower),
	}
	if et == event.EventTypeRadioState {
		if evt.State, err = ParseRadioState(ye.State); err != nil {
			return nil, err
		}
	}
	return evt, nil
}

// ExportNodes exports the nodes and their energy parameters to a YAML-friendly object.
func (s *Simulation) ExportNodes() []YamlNodeConfig {
	res := make([]YamlNodeConfig, 0, len(s.nodes))
	for _, id := range s.GetNodes() {
		node := s.nodes[id]
		params := make(map[string]string, len(node.cfg.Params))
		for _, p := range node.cfg.Params {
			params[p.Key] = p.Value
		}
		yn := YamlNodeConfig{ID: id}
		if len(params) > 0 {
			yn.Params = params
		}
		res = append(res, yn)
	}
	return res
}

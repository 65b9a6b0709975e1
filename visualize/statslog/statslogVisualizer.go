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

package visualize_statslog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/simnet/linear-energy/logger"
	. "github.com/simnet/linear-energy/types"
	. "github.com/simnet/linear-energy/visualize"
)

const StatsLogFileName = "stats.csv"

type statslogVisualizer struct {
	logFile        *os.File
	logFileName    string
	isFileEnabled  bool
	changed        bool   // flag to track if some node stats changed
	timestampUs    uint64 // simulation current timestamp
	logTimestampUs uint64 // last log entry timestamp
	stats          nodeStats
	oldStats       nodeStats

	radioStates map[NodeId]RadioStates
	sinks       map[NodeId]struct{}
	killed      map[NodeId]struct{}
	percent     map[NodeId]int
}

type nodeStats struct {
	numNodes   int
	numSinks   int
	numKilled  int
	numOff     int
	numSleep   int
	numRx      int
	numTx      int
	avgPercent int
}

// NewStatslogVisualizer creates a new Visualizer that writes a CSV log of node counts per state
// and the average remaining energy to outputDir, one entry per change.
func NewStatslogVisualizer(outputDir string) Visualizer {
	return &statslogVisualizer{
		logFileName:   filepath.Join(outputDir, StatsLogFileName),
		isFileEnabled: true,
		changed:       true,
		radioStates:   make(map[NodeId]RadioStates, 64),
		sinks:         make(map[NodeId]struct{}),
		killed:        make(map[NodeId]struct{}),
		percent:       make(map[NodeId]int, 64),
	}
}

func (sv *statslogVisualizer) Init() {
	sv.createLogFile()
}

func (sv *statslogVisualizer) Stop() {
	// add a final entry with final status
	sv.writeLogEntry(sv.timestampUs, sv.calcStats())
	sv.close()
	logger.Debugf("statslogVisualizer stopped and CSV log file closed.")
}

func (sv *statslogVisualizer) AddNode(nodeid NodeId, sink bool) {
	sv.changed = true
	sv.radioStates[nodeid] = RadioDisabled
	sv.percent[nodeid] = 100
	if sink {
		sv.sinks[nodeid] = struct{}{}
	}
}

func (sv *statslogVisualizer) DeleteNode(nodeid NodeId) {
	sv.changed = true
	delete(sv.radioStates, nodeid)
	delete(sv.sinks, nodeid)
	delete(sv.killed, nodeid)
	delete(sv.percent, nodeid)
}

func (sv *statslogVisualizer) SetRadioState(nodeid NodeId, state RadioStates) {
	if _, ok := sv.radioStates[nodeid]; !ok {
		return
	}
	sv.changed = true
	sv.radioStates[nodeid] = state
}

func (sv *statslogVisualizer) OnNodeKilled(nodeid NodeId) {
	sv.changed = true
	sv.killed[nodeid] = struct{}{}
	sv.percent[nodeid] = 0
}

func (sv *statslogVisualizer) UpdateNodesEnergy(nodes []NodeEnergySnapshot, timestamp uint64) {
	for _, n := range nodes {
		if _, ok := sv.radioStates[n.NodeId]; ok {
			sv.percent[n.NodeId] = n.Percent
		}
	}
	sv.changed = true
	sv.AdvanceTime(timestamp)
}

func (sv *statslogVisualizer) AdvanceTime(ts uint64) {
	if sv.changed && sv.checkLogEntryChange() {
		sv.writeLogEntry(sv.timestampUs, sv.stats)
		sv.logTimestampUs = sv.timestampUs
		sv.oldStats = sv.stats
	}
	sv.changed = false
	sv.timestampUs = ts
}

func (sv *statslogVisualizer) createLogFile() {
	logger.AssertNil(sv.logFile)

	if err := os.MkdirAll(filepath.Dir(sv.logFileName), 0755); err != nil {
		logger.Errorf("creating stats log directory failed: %+v", err)
		sv.isFileEnabled = false
		return
	}
	_ = os.Remove(sv.logFileName)

	var err error
	sv.logFile, err = os.OpenFile(sv.logFileName, os.O_CREATE|os.O_WRONLY, 0664)
	if err != nil {
		logger.Errorf("creating new stats log file %s failed: %+v", sv.logFileName, err)
		sv.isFileEnabled = false
		return
	}
	sv.writeLogFileHeader()
	logger.Debugf("Stats log file '%s' created.", sv.logFileName)
}

func (sv *statslogVisualizer) writeLogFileHeader() {
	// RFC 4180 CSV file: no leading or trailing spaces in header field names
	header := "timeSec,nNodes,nSinks,nKilled,nOff,nSleep,nRx,nTx,avgPercent"
	_ = sv.writeToLogFile(header)
}

func (sv *statslogVisualizer) calcStats() nodeStats {
	s := nodeStats{
		numNodes:  len(sv.radioStates),
		numSinks:  len(sv.sinks),
		numKilled: len(sv.killed),
		numOff:    countState(sv.radioStates, RadioDisabled),
		numSleep:  countState(sv.radioStates, RadioSleep),
		numRx:     countState(sv.radioStates, RadioRx),
		numTx:     countState(sv.radioStates, RadioTx),
	}
	if len(sv.percent) > 0 {
		total := 0
		for _, p := range sv.percent {
			total += p
		}
		s.avgPercent = total / len(sv.percent)
	}
	return s
}

func (sv *statslogVisualizer) checkLogEntryChange() bool {
	sv.stats = sv.calcStats()
	return sv.stats != sv.oldStats
}

func (sv *statslogVisualizer) writeLogEntry(ts uint64, stats nodeStats) {
	timeSec := float64(ts) / 1e6
	entry := fmt.Sprintf("%12.6f, %3d,%3d,%3d,%3d,%3d,%3d,%3d,%3d", timeSec, stats.numNodes, stats.numSinks,
		stats.numKilled, stats.numOff, stats.numSleep, stats.numRx, stats.numTx, stats.avgPercent)
	_ = sv.writeToLogFile(entry)
	logger.Debugf("statslog entry added: %s", entry)
}

func (sv *statslogVisualizer) writeToLogFile(line string) error {
	if !sv.isFileEnabled {
		return nil
	}
	_, err := sv.logFile.WriteString(line + "\n")
	if err != nil {
		sv.close()
		sv.isFileEnabled = false
		logger.Errorf("couldn't write to stats log file (%s), closing it", sv.logFileName)
	}
	return err
}

func (sv *statslogVisualizer) close() {
	if sv.logFile != nil {
		_ = sv.logFile.Close()
		sv.logFile = nil
		sv.isFileEnabled = false
	}
}

func countState(states map[NodeId]RadioStates, state RadioStates) int {
	c := 0
	for _, s := range states {
		if s == state {
			c++
		}
	}
	return c
}

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

package logger

import (
	"fmt"
	"sync"

	. "github.com/simnet/linear-energy/types"
)

// NodeLogger is a node-specific log object. Its level can be set per individual node, and every
// message is prefixed with the node ID and the current simulation time.
type NodeLogger struct {
	Id          NodeId
	level       Level
	timestampUs uint64
}

var (
	nodeLogs = make(map[NodeId]*NodeLogger, 10)
	mutex    = sync.Mutex{}
)

// GetNodeLogger gets the NodeLogger instance for the given node, creating it on first use.
func GetNodeLogger(nodeid NodeId) *NodeLogger {
	mutex.Lock()
	defer mutex.Unlock()

	nl, ok := nodeLogs[nodeid]
	if !ok {
		nl = &NodeLogger{
			Id:    nodeid,
			level: currentLevel,
		}
		nodeLogs[nodeid] = nl
	}
	return nl
}

// DeleteNodeLogger forgets the logger of a deleted node.
func DeleteNodeLogger(nodeid NodeId) {
	mutex.Lock()
	defer mutex.Unlock()
	delete(nodeLogs, nodeid)
}

func (nl *NodeLogger) SetLevel(level Level) {
	nl.level = level
}

func (nl *NodeLogger) GetLevel() Level {
	return nl.level
}

// SetTime sets the simulation time (us) shown in subsequent messages.
func (nl *NodeLogger) SetTime(timestampUs uint64) {
	nl.timestampUs = timestampUs
}

func (nl *NodeLogger) Logf(level Level, format string, args ...interface{}) {
	if level > nl.level || level > currentLevel {
		return
	}
	msg := fmt.Sprintf("%11d Node<%d>  %s", nl.timestampUs, nl.Id, getMessage(format, args))
	logAlways(level, msg)
}

func (nl *NodeLogger) Debugf(format string, args ...interface{}) {
	nl.Logf(DebugLevel, format, args...)
}

func (nl *NodeLogger) Infof(format string, args ...interface{}) {
	nl.Logf(InfoLevel, format, args...)
}

func (nl *NodeLogger) Notef(format string, args ...interface{}) {
	nl.Logf(NoteLevel, format, args...)
}

func (nl *NodeLogger) Warnf(format string, args ...interface{}) {
	nl.Logf(WarnLevel, format, args...)
}

func (nl *NodeLogger) Errorf(format string, args ...interface{}) {
	nl.Logf(ErrorLevel, format, args...)
}

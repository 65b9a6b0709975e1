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

// Package event defines the node activities a simulation schedules, and the time-ordered queue
// that holds them.
package event

import (
	"container/heap"
	"fmt"

	"github.com/pkg/errors"

	. "github.com/simnet/linear-energy/types"
)

type EventType = uint8

const (
	EventTypeTx         EventType = 0
	EventTypeRx         EventType = 1
	EventTypeIdle       EventType = 2
	EventTypeConsume    EventType = 3
	EventTypeMove       EventType = 4
	EventTypeRadioState EventType = 5
	EventTypeSnapshot   EventType = 6
)

var eventTypeNames = map[EventType]string{
	EventTypeTx:         "tx",
	EventTypeRx:         "rx",
	EventTypeIdle:       "idle",
	EventTypeConsume:    "consume",
	EventTypeMove:       "move",
	EventTypeRadioState: "radio",
	EventTypeSnapshot:   "snapshot",
}

// ParseEventType parses the name of an event type as used in scenario files.
func ParseEventType(name string) (EventType, error) {
	for t, n := range eventTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, errors.Errorf("unknown event type: %s", name)
}

func EventTypeName(t EventType) string {
	if n, ok := eventTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("type(%d)", t)
}

// Event is an activity of one node, at a simulated time (us). Only the fields relevant to the
// event type are used: Duration for Tx/Rx/Idle, Amount for Consume/Move, State and TxPower for
// RadioState. Snapshot events are not bound to a node.
type Event struct {
	Timestamp uint64
	NodeId    NodeId
	Type      EventType
	Duration  uint64
	Amount    float64
	State     RadioStates
	TxPower   DbmValue

	seq   uint64
	index int
}

func (e *Event) String() string {
	return fmt.Sprintf("Event{ts=%d,node=%d,%s,dur=%d,amount=%v,state=%v}", e.Timestamp, e.NodeId,
		EventTypeName(e.Type), e.Duration, e.Amount, e.State)
}

type eventHeap []*Event

func (eh eventHeap) Len() int {
	return len(eh)
}

// Less orders by timestamp, and by insertion order for equal timestamps.
func (eh eventHeap) Less(i, j int) bool {
	if eh[i].Timestamp != eh[j].Timestamp {
		return eh[i].Timestamp < eh[j].Timestamp
	}
	return eh[i].seq < eh[j].seq
}

func (eh eventHeap) Swap(i, j int) {
	eh[i], eh[j] = eh[j], eh[i]
	eh[i].index, eh[j].index = i, j
}

func (eh *eventHeap) Push(x interface{}) {
	e := x.(*Event)
	e.index = len(*eh)
	*eh = append(*eh, e)
}

func (eh *eventHeap) Pop() (elem interface{}) {
	n := len(*eh)
	e := (*eh)[n-1]
	(*eh)[n-1] = nil
	*eh = (*eh)[:n-1]
	e.index = -1
	return e
}

// EventQueue is a time-ordered queue of events.
type EventQueue struct {
	q       eventHeap
	nextSeq uint64
}

func NewEventQueue() *EventQueue {
	eq := &EventQueue{
		q: eventHeap{},
	}
	heap.Init(&eq.q)
	return eq
}

func (eq *EventQueue) Add(evt *Event) {
	evt.seq = eq.nextSeq
	eq.nextSeq++
	heap.Push(&eq.q, evt)
}

func (eq *EventQueue) Len() int {
	return eq.q.Len()
}

// NextTimestamp returns the time of the first event, or Ever when the queue is empty.
func (eq *EventQueue) NextTimestamp() uint64 {
	if eq.q.Len() == 0 {
		return Ever
	}
	return eq.q[0].Timestamp
}

// NextEvent returns the first event without removing it, or nil.
func (eq *EventQueue) NextEvent() *Event {
	if eq.q.Len() == 0 {
		return nil
	}
	return eq.q[0]
}

// PopNext removes and returns the first event, or nil.
func (eq *EventQueue) PopNext() *Event {
	if eq.q.Len() == 0 {
		return nil
	}
	return heap.Pop(&eq.q).(*Event)
}

// RemoveNode drops all pending events of a node and returns how many were dropped.
func (eq *EventQueue) RemoveNode(nodeid NodeId) int {
	kept := eq.q[:0]
	for _, e := range eq.q {
		if e.NodeId == nodeid && e.Type != EventTypeSnapshot {
			e.index = -1
			continue
		}
		e.index = len(kept)
		kept = append(kept, e)
	}
	removed := len(eq.q) - len(kept)
	for i := len(kept); i < len(eq.q); i++ {
		eq.q[i] = nil
	}
	eq.q = kept
	heap.Init(&eq.q)
	return removed
}

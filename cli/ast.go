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

package cli

import (
	"strconv"

	"github.com/alecthomas/participle"
)

// noinspection GoStructTag
type Command struct {
	Add      *AddCmd      `  @@` //nolint
	Consume  *ConsumeCmd  `| @@` //nolint
	Del      *DelCmd      `| @@` //nolint
	Energy   *EnergyCmd   `| @@` //nolint
	Exit     *ExitCmd     `| @@` //nolint
	Go       *GoCmd       `| @@` //nolint
	Help     *HelpCmd     `| @@` //nolint
	Idle     *IdleCmd     `| @@` //nolint
	Kills    *KillsCmd    `| @@` //nolint
	Load     *LoadCmd     `| @@` //nolint
	LogLevel *LogLevelCmd `| @@` //nolint
	Move     *MoveCmd     `| @@` //nolint
	Nodes    *NodesCmd    `| @@` //nolint
	Radio    *RadioCmd    `| @@` //nolint
	Rx       *RxCmd       `| @@` //nolint
	Time     *TimeCmd     `| @@` //nolint
	Tx       *TxCmd       `| @@` //nolint
}

// noinspection GoStructTag
type NodeSelector struct {
	Id int `@Int` //nolint
}

func (ns *NodeSelector) String() string {
	return strconv.Itoa(ns.Id)
}

// noinspection GoStructTag
type ParamFlag struct {
	Key   string `@Ident`                                //nolint
	Value string `@( Ident | ( "-"? ( Int | Float ) ) )` //nolint
}

// noinspection GoStructTag
type AddCmd struct {
	Cmd    struct{}      `"add"`  //nolint
	Node   *NodeSelector `[ @@ ]` //nolint
	Radio  *RadioFlag    `[ @@ ]` //nolint
	Params []ParamFlag   `{ @@ }` //nolint
}

// noinspection GoStructTag
type RadioFlag struct {
	Dummy struct{} `"radio"`                                                  //nolint
	State string   `@( "off" | "disabled" | "sleep" | "idle" | "rx" | "tx" )` //nolint
}

// noinspection GoStructTag
type DelCmd struct {
	Cmd   struct{}       `"del"`   //nolint
	Nodes []NodeSelector `( @@ )+` //nolint
}

// noinspection GoStructTag
type PowerFlag struct {
	Dummy struct{} `"power"`       //nolint
	Val   string   `@( "-"? Int )` //nolint
}

// noinspection GoStructTag
type TxCmd struct {
	Cmd      struct{}     `"tx"`   //nolint
	Node     NodeSelector `@@`     //nolint
	Duration int          `@Int`   //nolint
	Power    *PowerFlag   `[ @@ ]` //nolint
}

// noinspection GoStructTag
type RxCmd struct {
	Cmd      struct{}     `"rx"` //nolint
	Node     NodeSelector `@@`   //nolint
	Duration int          `@Int` //nolint
}

// noinspection GoStructTag
type IdleCmd struct {
	Cmd      struct{}     `"idle"` //nolint
	Node     NodeSelector `@@`     //nolint
	Duration int          `@Int`   //nolint
}

// noinspection GoStructTag
type ConsumeCmd struct {
	Cmd    struct{}     `"consume"`     //nolint
	Node   NodeSelector `@@`            //nolint
	Amount float64      `(@Int|@Float)` //nolint
}

// noinspection GoStructTag
type MoveCmd struct {
	Cmd   struct{}     `"move"`        //nolint
	Node  NodeSelector `@@`            //nolint
	Delta string       `@( "-"? Int )` //nolint
}

// noinspection GoStructTag
type RadioCmd struct {
	Cmd   struct{}     `"radio"`                                                  //nolint
	Node  NodeSelector `@@`                                                       //nolint
	State string       `@( "off" | "disabled" | "sleep" | "idle" | "rx" | "tx" )` //nolint
	Power *PowerFlag   `[ @@ ]`                                                   //nolint
}

// noinspection GoStructTag
type GoCmd struct {
	Cmd  struct{} `"go"`                                  //nolint
	Time string   `@((Int|Float)["h"|"us"|"m"|"ms"|"s"])` //nolint
}

// noinspection GoStructTag
type TimeCmd struct {
	Cmd struct{} `"time"` //nolint
}

// noinspection GoStructTag
type NodesCmd struct {
	Cmd struct{} `"nodes"` //nolint
}

// noinspection GoStructTag
type KillsCmd struct {
	Cmd struct{} `"kills"` //nolint
}

// noinspection GoStructTag
type EnergyCmd struct {
	Cmd  struct{}      `"energy"`     //nolint
	Save *SaveFlag     `( @@`         //nolint
	Name *string       `  [ @Ident ]` //nolint
	Node *NodeSelector `| @@ )?`      //nolint
}

// noinspection GoStructTag
type SaveFlag struct {
	Dummy struct{} `"save"` //nolint
}

// noinspection GoStructTag
type LoadCmd struct {
	Cmd      struct{} `"load"`  //nolint
	Filename string   `@String` //nolint
}

// noinspection GoStructTag
type LogLevelCmd struct {
	Cmd   struct{} `"log"`                                                                                                           //nolint
	Level string   `[ @( "micro" | "trace" | "debug" | "info" | "note" | "warn" | "error" | "crit" | "off" | "none" | "default" ) ]` //nolint
}

// noinspection GoStructTag
type HelpCmd struct {
	Cmd     struct{} `"help"`     //nolint
	Command *string  `[ @Ident ]` //nolint
}

// noinspection GoStructTag
type ExitCmd struct {
	Cmd struct{} `"exit"` //nolint
}

var (
	commandParser = participle.MustBuild(&Command{})
)

func parseBytes(b []byte, cmd *Command) error {
	return commandParser.ParseBytes(b, cmd)
}

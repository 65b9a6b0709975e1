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
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/simnet/linear-energy/event"
	"github.com/simnet/linear-energy/logger"
	"github.com/simnet/linear-energy/progctx"
	"github.com/simnet/linear-energy/simulation"
	. "github.com/simnet/linear-energy/types"
)

const (
	Prompt = "> "

	defaultEnergySaveName = "energy"
)

type CommandContext struct {
	context.Context
	*Command
	rt     *CmdRunner
	err    error
	output io.Writer
}

func (cc *CommandContext) outputStr(msg string) {
	_, _ = fmt.Fprint(cc.output, msg)
}

func (cc *CommandContext) outputf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cc.output, format, args...)
}

func (cc *CommandContext) errorf(format string, args ...interface{}) {
	cc.error(errors.Errorf(format, args...))
}

func (cc *CommandContext) error(err error) {
	if err != nil {
		if cc.err != nil { // if previous error, print it now and keep the last.
			cc.outputf("Error: %s\n", cc.err)
		}
		cc.err = err
	}
}

// Err returns the last error that occurred during command execution.
func (cc *CommandContext) Err() error {
	return cc.err
}

func (cc *CommandContext) outputItemsAsYaml(items interface{}) {
	var itemsYaml yaml.Node

	err := itemsYaml.Encode(items)
	logger.PanicIfError(err)

	for _, content := range itemsYaml.Content {
		content.Style = yaml.FlowStyle
	}

	data, err := yaml.Marshal(&itemsYaml)
	logger.PanicIfError(err)

	_, err = cc.output.Write(data)
	logger.PanicIfError(err)
}

type nodeInfo struct {
	Id       NodeId  `yaml:"id"`
	Alive    bool    `yaml:"alive"`
	Radio    string  `yaml:"radio"`
	Percent  int     `yaml:"percent"`
	KilledAt *uint64 `yaml:"killed-at,omitempty"`
}

type CmdRunner struct {
	sim  *simulation.Simulation
	ctx  *progctx.ProgCtx
	help Help
}

func NewCmdRunner(ctx *progctx.ProgCtx, sim *simulation.Simulation) *CmdRunner {
	return &CmdRunner{
		ctx:  ctx,
		sim:  sim,
		help: newHelp(),
	}
}

// RunCommand parses and executes one command line, writing the result to output.
func (rt *CmdRunner) RunCommand(cmdline string, output io.Writer) error {
	if rt.ctx.Err() != nil {
		return rt.ctx.Err()
	}

	cmd := Command{}
	if err := parseBytes([]byte(cmdline), &cmd); err != nil {
		if _, err := fmt.Fprintf(output, "Error: %v\n", err); err != nil {
			return err
		}
	} else {
		rt.execute(&cmd, output)
	}
	return nil
}

func (rt *CmdRunner) HandleCommand(cmdline string, output io.Writer) error {
	if err := rt.RunCommand(cmdline, output); err != nil {
		return err
	}
	// a command may have ended the program, e.g. 'exit'.
	return rt.ctx.Err()
}

func (rt *CmdRunner) GetPrompt() string {
	return Prompt
}

func (rt *CmdRunner) execute(cmd *Command, output io.Writer) {
	cc := &CommandContext{
		Context: rt.ctx,
		Command: cmd,
		rt:      rt,
		output:  output,
	}

	defer func() {
		if cc.Err() != nil {
			cc.outputf("Error: %v\n", cc.Err())
		} else {
			cc.outputf("Done\n")
		}
	}()

	defer func() {
		rerr := recover()

		if rerr != nil {
			if err, ok := rerr.(error); ok {
				cc.err = errors.Wrapf(err, "panic: %v", err)
			} else {
				cc.err = errors.Errorf("panic: %v", rerr)
			}
		}
	}()

	if cmd.Add != nil {
		rt.executeAddNode(cc, cmd.Add)
	} else if cmd.Del != nil {
		rt.executeDelNode(cc, cmd.Del)
	} else if cmd.Tx != nil {
		rt.executeActivity(cc, cmd.Tx.Node, &event.Event{
			Type:     event.EventTypeTx,
			Duration: uint64(cmd.Tx.Duration),
			TxPower:  rt.parsePower(cc, cmd.Tx.Power),
		})
	} else if cmd.Rx != nil {
		rt.executeActivity(cc, cmd.Rx.Node, &event.Event{
			Type:     event.EventTypeRx,
			Duration: uint64(cmd.Rx.Duration),
		})
	} else if cmd.Idle != nil {
		rt.executeActivity(cc, cmd.Idle.Node, &event.Event{
			Type:     event.EventTypeIdle,
			Duration: uint64(cmd.Idle.Duration),
		})
	} else if cmd.Consume != nil {
		rt.executeActivity(cc, cmd.Consume.Node, &event.Event{
			Type:   event.EventTypeConsume,
			Amount: cmd.Consume.Amount,
		})
	} else if cmd.Move != nil {
		rt.executeMove(cc, cmd.Move)
	} else if cmd.Radio != nil {
		rt.executeRadio(cc, cmd.Radio)
	} else if cmd.Go != nil {
		rt.executeGo(cc, cmd.Go)
	} else if cmd.Time != nil {
		cc.outputf("%d\n", rt.sim.CurTime())
	} else if cmd.Nodes != nil {
		rt.executeLsNodes(cc)
	} else if cmd.Energy != nil {
		rt.executeEnergy(cc, cmd.Energy)
	} else if cmd.Kills != nil {
		rt.executeKills(cc)
	} else if cmd.LogLevel != nil {
		rt.executeLogLevel(cc, cmd.LogLevel)
	} else if cmd.Load != nil {
		rt.executeLoad(cc, cmd.Load)
	} else if cmd.Help != nil {
		rt.executeHelp(cc, cmd.Help)
	} else if cmd.Exit != nil {
		rt.ctx.Cancel("exit")
	} else {
		logger.Panicf("unimplemented command: %#v", cmd)
	}
}

func (rt *CmdRunner) executeAddNode(cc *CommandContext, cmd *AddCmd) {
	cfg := simulation.DefaultNodeConfig()
	if cmd.Node != nil {
		cfg.ID = cmd.Node.Id
	}
	if cmd.Radio != nil {
		state, err := ParseRadioState(cmd.Radio.State)
		if err != nil {
			cc.error(err)
			return
		}
		cfg.RadioState = state
	}
	for _, p := range cmd.Params {
		cfg.Params = append(cfg.Params, Param{Key: p.Key, Value: p.Value})
	}

	node, err := rt.sim.AddNode(&cfg)
	if err != nil {
		cc.error(err)
		return
	}
	cc.outputf("%d\n", node.Id)
}

func (rt *CmdRunner) executeDelNode(cc *CommandContext, cmd *DelCmd) {
	for _, sel := range cmd.Nodes {
		if rt.sim.GetNode(sel.Id) == nil {
			cc.outputf("Warn: node %d not found, skipping\n", sel.Id)
			continue
		}
		if err := rt.sim.DeleteNode(sel.Id); err != nil {
			cc.errorf("node %d, %+v", sel.Id, err)
		}
	}
}

func (rt *CmdRunner) parsePower(cc *CommandContext, flag *PowerFlag) DbmValue {
	if flag == nil {
		return 0
	}
	power, err := strconv.ParseInt(flag.Val, 10, 8)
	if err != nil {
		cc.errorf("invalid tx power: %s", flag.Val)
	}
	return DbmValue(power)
}

// executeActivity runs a node activity at the current simulation time.
func (rt *CmdRunner) executeActivity(cc *CommandContext, sel NodeSelector, evt *event.Event) {
	if cc.Err() != nil {
		return
	}
	evt.NodeId = sel.Id
	if err := rt.sim.RunNow(evt); err != nil {
		cc.error(err)
		return
	}
	rt.outputPercent(cc, sel.Id)
}

func (rt *CmdRunner) outputPercent(cc *CommandContext, nodeid NodeId) {
	if en := rt.sim.Energy().GetNode(nodeid); en != nil {
		cc.outputf("%d%%\n", en.Model().PercentRemaining())
	}
}

func (rt *CmdRunner) executeMove(cc *CommandContext, cmd *MoveCmd) {
	delta, err := strconv.Atoi(cmd.Delta)
	if err != nil {
		cc.errorf("invalid energy delta: %s", cmd.Delta)
		return
	}
	rt.executeActivity(cc, cmd.Node, &event.Event{
		Type:   event.EventTypeMove,
		Amount: float64(delta),
	})
}

func (rt *CmdRunner) executeRadio(cc *CommandContext, cmd *RadioCmd) {
	state, err := ParseRadioState(cmd.State)
	if err != nil {
		cc.error(err)
		return
	}
	rt.executeActivity(cc, cmd.Node, &event.Event{
		Type:    event.EventTypeRadioState,
		State:   state,
		TxPower: rt.parsePower(cc, cmd.Power),
	})
}

func (rt *CmdRunner) executeGo(cc *CommandContext, cmd *GoCmd) {
	timeDurToGo, err := time.ParseDuration(cmd.Time)
	if err != nil {
		timeDurToGo, err = time.ParseDuration(cmd.Time + "s") // try parsing as seconds
		if err != nil {
			cc.errorf("could not parse time duration: %s", cmd.Time)
			return
		}
	}
	if timeDurToGo < 0 {
		cc.errorf("negative time duration: %s", cmd.Time)
		return
	}
	rt.sim.Go(uint64(timeDurToGo / time.Microsecond))
}

func (rt *CmdRunner) executeLsNodes(cc *CommandContext) {
	var nodes []nodeInfo
	for _, id := range rt.sim.GetNodes() {
		node := rt.sim.GetNode(id)
		info := nodeInfo{
			Id:    id,
			Alive: node.IsAlive(),
		}
		if en := rt.sim.Energy().GetNode(id); en != nil {
			info.Radio = en.GetRadioStatus().State.String()
			info.Percent = en.Model().PercentRemaining()
		}
		if !node.IsAlive() {
			killedAt := node.KilledAt()
			info.KilledAt = &killedAt
		}
		nodes = append(nodes, info)
	}
	if len(nodes) > 0 {
		cc.outputItemsAsYaml(nodes)
	}
}

func (rt *CmdRunner) executeEnergy(cc *CommandContext, cmd *EnergyCmd) {
	if cmd.Save != nil {
		name := defaultEnergySaveName
		if cmd.Name != nil {
			name = *cmd.Name
		}
		if err := rt.sim.SaveEnergyData(name); err != nil {
			cc.error(err)
		}
		return
	}

	ids := rt.sim.GetNodes()
	if cmd.Node != nil {
		if rt.sim.GetNode(cmd.Node.Id) == nil {
			cc.errorf("node %d not found", cmd.Node.Id)
			return
		}
		ids = []NodeId{cmd.Node.Id}
	}

	cc.outputf("%-6s %-14s %-14s %-8s %-4s %s\n", "ID", "Remaining", "Consumed", "Status", "Pct", "Radio")
	for _, id := range ids {
		en := rt.sim.Energy().GetNode(id)
		if en == nil {
			continue
		}
		snap := en.Snapshot()
		cc.outputf("%-6d %-14.2f %-14.2f %-8.4f %-4d %s\n", id, snap.Remaining, snap.Consumed, snap.Status,
			snap.Percent, en.GetRadioStatus().State)
	}
}

func (rt *CmdRunner) executeKills(cc *CommandContext) {
	kills := rt.sim.GetKills()
	if len(kills) > 0 {
		cc.outputItemsAsYaml(kills)
	}
}

func (rt *CmdRunner) executeLogLevel(cc *CommandContext, cmd *LogLevelCmd) {
	if cmd.Level == "" {
		cc.outputf("%v\n", logger.GetLevelString(logger.GetLevel()))
		return
	}
	level, err := logger.ParseLevelString(cmd.Level)
	if err != nil {
		cc.error(err)
		return
	}
	logger.SetLevel(level)
}

func (rt *CmdRunner) executeLoad(cc *CommandContext, cmd *LoadCmd) {
	filename := cmd.Filename
	if unquoted, err := strconv.Unquote(filename); err == nil {
		filename = unquoted
	}

	cfgFile, err := simulation.LoadYamlConfig(filename)
	if err != nil {
		cc.error(err)
		return
	}
	if cfgFile.Energy.Model != nil && *cfgFile.Energy.Model != rt.sim.Energy().GetModelName() {
		cc.outputf("Warn: scenario energy model '%s' ignored, simulation uses '%s'\n", *cfgFile.Energy.Model,
			rt.sim.Energy().GetModelName())
	}
	cc.error(rt.sim.ImportScenario(cfgFile))
}

func (rt *CmdRunner) executeHelp(cc *CommandContext, cmd *HelpCmd) {
	if cmd.Command != nil {
		cc.outputStr(rt.help.outputCommandHelp(*cmd.Command))
	} else {
		cc.outputStr(rt.help.outputGeneralHelp())
	}
}

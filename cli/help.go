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
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/term"

	"github.com/simnet/linear-energy/logger"
)

const (
	defaultTermWidth = 80
	helpIndent       = "    "
)

type Help struct {
	termWidth     uint
	maxCmdWidth   uint
	commands      map[string]string
	commandsShort map[string]string
}

var (
	cmdHeaderPattern  = regexp.MustCompile("^### .+")
	linkTargetPattern = regexp.MustCompile(`\(#[a-z]+\)`)
)

//go:embed README.md
var cliHelpFile string

func newHelp() Help {
	h := Help{
		termWidth:     defaultTermWidth,
		maxCmdWidth:   10,
		commands:      make(map[string]string),
		commandsShort: make(map[string]string),
	}
	h.parseHelpFile(cliHelpFile)
	h.update()
	return h
}

// update takes the current width of the user's terminal into account.
func (help *Help) update() {
	fdTerm := int(os.Stdout.Fd())
	if !term.IsTerminal(fdTerm) {
		return
	}
	width, _, err := term.GetSize(fdTerm)
	if err != nil {
		logger.Debugf("could not get terminal size: %v", err)
		return
	}
	if width > int(help.maxCmdWidth)+1 {
		help.termWidth = uint(width)
	}
}

func (help *Help) commandNames() []string {
	cmds := make([]string, 0, len(help.commandsShort))
	for k := range help.commandsShort {
		cmds = append(cmds, k)
	}
	sort.Strings(cmds)
	return cmds
}

func (help *Help) outputGeneralHelp() string {
	help.update()
	var sb strings.Builder
	for _, c := range help.commandNames() {
		sb.WriteString(fmt.Sprintf("%-*s %s\n", int(help.maxCmdWidth), c, help.commandsShort[c]))
	}
	sb.WriteString(wordwrap.WrapString("\nFor detailed help per command, use: 'help <command>'\n", help.termWidth))
	return sb.String()
}

func (help *Help) outputCommandHelp(command string) string {
	help.update()
	explanation, ok := help.commands[command]
	if !ok {
		return fmt.Sprintf("%s\n  (Non-existent command.)\n", command)
	}

	var sb strings.Builder
	sb.WriteString(command + "\n")
	w := help.termWidth - help.maxCmdWidth - 1
	for _, line := range strings.Split(strings.TrimRight(wordwrap.WrapString(explanation, w), "\n"), "\n") {
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}

// parseHelpFile collects per-command help from the Markdown CLI reference. Each command is a
// '### <name>' section; its first sentence is the short help.
func (help *Help) parseHelpFile(md string) {
	activeCmd := ""
	indent := 0
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case line == "```bash":
			line, indent = "\nExample:", 2
		case line == "```shell":
			line, indent = "\nDefinition:", 2
		case line == "```":
			line, indent = "", 0
		case cmdHeaderPattern.MatchString(line):
			activeCmd = strings.TrimSpace(line[strings.Index(line, " ")+1:])
			help.commandsShort[activeCmd] = ""
			help.commands[activeCmd] = ""
			if uint(len(activeCmd)) > help.maxCmdWidth {
				help.maxCmdWidth = uint(len(activeCmd))
			}
			continue
		}

		if len(activeCmd) == 0 {
			continue
		}
		help.commands[activeCmd] += helpIndent[:indent] + markdownUnquote(line) + "\n"
		if len(help.commandsShort[activeCmd]) == 0 && len(line) > 0 && line[0] != '\n' {
			short := line
			if idx := strings.Index(line, "."); idx > 0 {
				short = line[:idx+1]
			}
			help.commandsShort[activeCmd] = markdownUnquote(short)
		}
	}
}

func markdownUnquote(md string) string {
	md = strings.ReplaceAll(md, "\\", "")
	return linkTargetPattern.ReplaceAllString(md, "")
}

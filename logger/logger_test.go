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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevelString(t *testing.T) {
	lv, err := ParseLevelString("debug")
	assert.Nil(t, err)
	assert.Equal(t, DebugLevel, lv)

	lv, err = ParseLevelString("W")
	assert.Nil(t, err)
	assert.Equal(t, WarnLevel, lv)

	lv, err = ParseLevelString("none")
	assert.Nil(t, err)
	assert.Equal(t, OffLevel, lv)

	lv, err = ParseLevelString("loud")
	assert.NotNil(t, err)
	assert.Equal(t, DefaultLevel, lv)
}

func TestGetLevelString(t *testing.T) {
	for _, s := range []string{"micro", "trace", "debug", "info", "note", "warn", "crit", "off"} {
		lv, err := ParseLevelString(s)
		assert.Nil(t, err)
		assert.Equal(t, s, GetLevelString(lv))
	}
}

func TestPanicfPanics(t *testing.T) {
	assert.Panics(t, func() {
		Panicf("energy went %s", "negative")
	})
	assert.Panics(t, func() {
		AssertTrue(false)
	})
	assert.NotPanics(t, func() {
		AssertEqual(1, 1)
		Debugf("quiet")
	})
}

func TestNodeLogger(t *testing.T) {
	nl := GetNodeLogger(7)
	assert.Equal(t, 7, nl.Id)
	assert.True(t, nl == GetNodeLogger(7))

	nl.SetLevel(WarnLevel)
	assert.Equal(t, WarnLevel, nl.GetLevel())
	nl.SetTime(1234)
	assert.NotPanics(t, func() {
		nl.Infof("not shown")
		nl.Warnf("shown")
	})

	DeleteNodeLogger(7)
	assert.False(t, nl == GetNodeLogger(7))
}

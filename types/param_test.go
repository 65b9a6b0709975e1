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

package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseParamList(t *testing.T) {
	pl, err := ParseParamList("energy=500 tx=2")
	assert.Nil(t, err)
	assert.Equal(t, ParamList{{Key: "energy", Value: "500"}, {Key: "tx", Value: "2"}}, pl)

	pl, err = ParseParamList("")
	assert.Nil(t, err)
	assert.Equal(t, 0, len(pl))

	_, err = ParseParamList("energy")
	assert.NotNil(t, err)
	assert.Contains(t, fmt.Sprintf("%+v", err), "types.ParseParamList")
	_, err = ParseParamList("=5")
	assert.NotNil(t, err)
}

func TestParamListGet(t *testing.T) {
	pl := ParamList{{Key: "rx", Value: "3"}, {Key: "idle", Value: "2"}, {Key: "rx", Value: "4"}}
	v, ok := pl.Get("rx")
	assert.True(t, ok)
	assert.Equal(t, "4", v)
	assert.True(t, pl.Has("idle"))
	assert.False(t, pl.Has("tx"))
	assert.Equal(t, "rx=3 idle=2 rx=4", pl.String())
}

func TestParamsFromMap(t *testing.T) {
	pl := ParamsFromMap(map[string]string{"tx": "2", "zeta": "1", "energy": "500", "alpha": "0"}, "energy", "tx")
	assert.Equal(t, ParamList{{Key: "energy", Value: "500"}, {Key: "tx", Value: "2"}, {Key: "alpha", Value: "0"}, {Key: "zeta", Value: "1"}}, pl)
}

func TestParseRadioState(t *testing.T) {
	s, err := ParseRadioState("tx")
	assert.Nil(t, err)
	assert.Equal(t, RadioTx, s)
	s, err = ParseRadioState("idle")
	assert.Nil(t, err)
	assert.Equal(t, RadioSleep, s)
	_, err = ParseRadioState("bogus")
	assert.NotNil(t, err)
	assert.Equal(t, "Rx_", RadioRx.String())
}

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
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Param is a single key/value pair of a model configuration, as parsed by the host.
// The value is kept as text; the model decides how to interpret it.
type Param struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// ParamList is the ordered parameter list handed to a model on node creation.
type ParamList []Param

// Get returns the last value given for key, and whether the key was present at all.
func (pl ParamList) Get(key string) (string, bool) {
	val, ok := "", false
	for _, p := range pl {
		if p.Key == key {
			val, ok = p.Value, true
		}
	}
	return val, ok
}

// Has reports whether key occurs in the list.
func (pl ParamList) Has(key string) bool {
	_, ok := pl.Get(key)
	return ok
}

func (pl ParamList) String() string {
	s := make([]string, 0, len(pl))
	for _, p := range pl {
		s = append(s, p.Key+"="+p.Value)
	}
	return strings.Join(s, " ")
}

// ParamsFromMap builds a ParamList from a map, e.g. a YAML mapping. Map order is not
// defined, so keys are emitted in the order given by 'order' first and the rest after.
func ParamsFromMap(m map[string]string, order ...string) ParamList {
	pl := make(ParamList, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, k := range order {
		if v, ok := m[k]; ok {
			pl = append(pl, Param{Key: k, Value: v})
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(m))
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		pl = append(pl, Param{Key: k, Value: m[k]})
	}
	return pl
}

// ParseParamList parses a "key=value key2=value2" string.
func ParseParamList(s string) (ParamList, error) {
	fields := strings.Fields(s)
	pl := make(ParamList, 0, len(fields))
	for _, f := range fields {
		idx := strings.Index(f, "=")
		if idx <= 0 {
			return nil, errors.Errorf("invalid parameter '%s', expected key=value", f)
		}
		pl = append(pl, Param{Key: f[:idx], Value: f[idx+1:]})
	}
	return pl, nil
}

/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {

	tests := []struct {
		testname string
		value    interface{}
		expected string
	}{
		{"nil", nil, `null`},
		{"booleans", []interface{}{true, false}, `[true,false]`},
		{"plain string", "tx_001", `"tx_001"`},
		{"integer", 42, `42`},
		{"sorted object keys",
			map[string]interface{}{"right_hash": "0", "height": 1, "left_hash": "0"},
			`{"height":1,"left_hash":"0","right_hash":"0"}`},
		{"nested object",
			map[string]interface{}{
				"transaction": map[string]interface{}{"id": "tx_001", "amount": 100},
				"height":      1,
			},
			`{"height":1,"transaction":{"amount":100,"id":"tx_001"}}`},
		{"array of objects",
			[]interface{}{map[string]interface{}{"b": 2, "a": 1}},
			`[{"a":1,"b":2}]`},
	}

	for _, test := range tests {
		out, err := Marshal(test.value)
		require.NoErrorf(t, err, "unexpected error in test: %s", test.testname)
		assert.Equalf(t, test.expected, string(out), "wrong encoding in test: %s", test.testname)
	}
}

func TestMarshalNumberFormatting(t *testing.T) {

	tests := []struct {
		testname string
		value    interface{}
		expected string
	}{
		{"int64", int64(-7), `-7`},
		{"uint64", uint64(18446744073709551615), `18446744073709551615`},
		{"integral float keeps one decimal", 2.0, `2.0`},
		{"fraction", 0.25, `0.25`},
		{"large float", 1e21, `1e+21`},
	}

	for _, test := range tests {
		out, err := Marshal(test.value)
		require.NoErrorf(t, err, "unexpected error in test: %s", test.testname)
		assert.Equalf(t, test.expected, string(out), "wrong encoding in test: %s", test.testname)
	}
}

func TestMarshalStringEscaping(t *testing.T) {

	out, err := Marshal("a \"quoted\"\nline\twith\\slash")
	require.NoError(t, err)
	assert.Equal(t, `"a \"quoted\"\nline\twith\\slash"`, string(out))

	out, err = Marshal(string([]byte{0x01}))
	require.NoError(t, err)
	assert.Equal(t, `"\u0001"`, string(out))

	// non-ASCII runes pass through as UTF-8
	out, err = Marshal("árbol")
	require.NoError(t, err)
	assert.Equal(t, `"árbol"`, string(out))
}

func TestMarshalIsDeterministic(t *testing.T) {

	value := map[string]interface{}{
		"id": "tx_001", "amount": 100, "currency": "EUR", "timestamp": "2024-01-15",
	}

	first, err := Marshal(value)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		next, err := Marshal(value)
		require.NoError(t, err)
		require.Equal(t, first, next, "map iteration order must not leak into the encoding")
	}
}

func TestMarshalUnsupportedType(t *testing.T) {

	_, err := Marshal(struct{ A int }{1})
	require.Error(t, err)

	_, err = Marshal(map[string]interface{}{"ch": make(chan int)})
	require.Error(t, err)
}

func TestMarshalNonFiniteFloat(t *testing.T) {

	_, err := Marshal(map[string]interface{}{"x": 1.0 / zero()})
	require.Error(t, err)
}

func zero() float64 { return 0 }

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

// Package canonical implements a deterministic, compact JSON encoding
// used to build hash pre-images. Object keys are emitted in sorted
// order, no insignificant whitespace is written, strings are UTF-8 with
// minimal escaping and numbers use a fixed formatting. Any divergence
// in this encoding changes every digest derived from it, so it is an
// external compatibility contract, not an implementation detail.
package canonical

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Marshal returns the canonical encoding of v. Supported values are
// nil, booleans, strings, integer and float64 numbers, []interface{}
// and map[string]interface{} with any nesting of those.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v interface{}) error {
	switch value := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if value {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		encodeString(buf, value)
	case int:
		buf.WriteString(strconv.FormatInt(int64(value), 10))
	case int8:
		buf.WriteString(strconv.FormatInt(int64(value), 10))
	case int16:
		buf.WriteString(strconv.FormatInt(int64(value), 10))
	case int32:
		buf.WriteString(strconv.FormatInt(int64(value), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(value, 10))
	case uint:
		buf.WriteString(strconv.FormatUint(uint64(value), 10))
	case uint8:
		buf.WriteString(strconv.FormatUint(uint64(value), 10))
	case uint16:
		buf.WriteString(strconv.FormatUint(uint64(value), 10))
	case uint32:
		buf.WriteString(strconv.FormatUint(uint64(value), 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(value, 10))
	case float32:
		return encodeFloat(buf, float64(value))
	case float64:
		return encodeFloat(buf, value)
	case []interface{}:
		buf.WriteByte('[')
		for i, elem := range value {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]interface{}:
		return encodeMap(buf, value)
	default:
		return fmt.Errorf("canonical: unsupported type %T", v)
	}
	return nil
}

func encodeMap(buf *bytes.Buffer, m map[string]interface{}) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodeString(buf, k)
		buf.WriteByte(':')
		if err := encode(buf, m[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// encodeFloat keeps a single fixed rendering per value: integral floats
// carry one decimal, everything else uses the shortest round-trip form.
func encodeFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("canonical: non-finite float %v", f)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e16 {
		buf.WriteString(strconv.FormatFloat(f, 'f', 1, 64))
		return nil
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}

const hexDigits = "0123456789abcdef"

func encodeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hexDigits[byte(r)>>4])
				buf.WriteByte(hexDigits[byte(r)&0xf])
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

package lineprotocol

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the closed set of scalar types a field value can take.
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindBoolean
	KindText
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindText:
		return "text"
	case KindOpaque:
		return "opaque"
	}
	return "unknown"
}

// Value is a tagged field value. The zero Value is the integer 0.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
}

func Integer(v int64) Value { return Value{kind: KindInteger, i: v} }
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }
func Boolean(v bool) Value  { return Value{kind: KindBoolean, b: v} }
func Text(v string) Value   { return Value{kind: KindText, s: v} }

// Opaque wraps a structured value that is carried as its JSON text.
func Opaque(rawJSON string) Value { return Value{kind: KindOpaque, s: rawJSON} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) Int() int64 {
	if v.kind == KindFloat {
		return int64(v.f)
	}
	return v.i
}

func (v Value) Float() float64 {
	if v.kind == KindInteger {
		return float64(v.i)
	}
	return v.f
}

func (v Value) Bool() bool { return v.b }

// Str returns the text of a Text value or the raw JSON of an Opaque value.
func (v Value) Str() string { return v.s }

// Interface returns the value as a plain Go value, the way database drivers expect it.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindBoolean:
		return v.b
	case KindText:
		return v.s
	}
	var out interface{}
	if err := json.Unmarshal([]byte(v.s), &out); err != nil {
		return v.s
	}
	return out
}

// NumberString renders a numeric value as decimal text: integers verbatim, floats in the
// shortest form that reads back to the same float, switching to exponent notation outside
// [1e-6, 1e21).
func (v Value) NumberString() string {
	if v.kind == KindInteger {
		return strconv.FormatInt(v.i, 10)
	}
	return formatFloat(v.f)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if f == 0 {
		// negative zero too
		return "0"
	}
	abs := math.Abs(f)
	if (abs < 1e-6 || abs >= 1e21) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// 1.5e-07 -> 1.5e-7
		e := strings.IndexByte(s, 'e') + 2
		return s[:e] + strings.TrimLeft(s[e:], "0")
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatValue renders v as a line protocol field value. kind only matters for numeric values.
func FormatValue(v Value, kind NumericKind) string {
	switch v.kind {
	case KindInteger, KindFloat:
		if kind == NumericInt {
			// written as given, not rounded: 1.5 becomes 1.5i
			return v.NumberString() + "i"
		}
		return v.NumberString()
	case KindBoolean:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case KindText:
		return quoteJSON(v.s)
	}
	return v.s
}

func quoteJSON(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `"` + s + `"`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

var regexInt = regexp.MustCompile(`^\d+i$`)
var regexTrue = regexp.MustCompile(`(?i)^(t|true)$`)
var regexFalse = regexp.MustCompile(`(?i)^(f|false)$`)
var regexString = regexp.MustCompile(`^"(.*)"$`)

// ParseValue reads one raw field token. ok is false when the token yields no value.
func ParseValue(token string) (v Value, ok bool) {
	switch {
	case token == "":
		return Value{}, false
	case regexInt.MatchString(token):
		i, err := strconv.ParseInt(token[:len(token)-1], 10, 64)
		if err != nil {
			return Value{}, false
		}
		return Integer(i), true
	case regexTrue.MatchString(token):
		return Boolean(true), true
	case regexFalse.MatchString(token):
		return Boolean(false), true
	case regexString.MatchString(token):
		return Text(token[1 : len(token)-1]), true
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, false
	}
	return Float(f), true
}

package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/max-bytes/influxdb-line-protocol/pkg/lineprotocol"
	"github.com/valyala/fastjson"
)

var (
	// ErrInvalidJSON is returned for message bodies that are not JSON.
	ErrInvalidJSON = errors.New("payload is not valid JSON")
	// ErrMalformedPoint is returned for an object that has a measurement key but cannot be read as a point.
	ErrMalformedPoint = errors.New("malformed point")
)

// Transform decodes a JSON message payload, parses or formats each item and encodes the result.
// An empty body is treated as null.
func Transform(data []byte, cfg lineprotocol.Config) ([]byte, error) {
	item, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Encode(lineprotocol.DispatchMany(item, cfg)), nil
}

// Decode reads a JSON payload into an item. A top level array becomes a sequence; arrays
// nested below it are passed through as they are.
func Decode(data []byte) (lineprotocol.Item, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return lineprotocol.NullItem(), nil
	}

	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return lineprotocol.Item{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	if v.Type() == fastjson.TypeArray {
		elements, _ := v.Array()
		items := make([]lineprotocol.Item, len(elements))
		for i, el := range elements {
			item, err := decodeItem(el)
			if err != nil {
				return lineprotocol.Item{}, fmt.Errorf("item %d: %w", i, err)
			}
			items[i] = item
		}
		return lineprotocol.SequenceItem(items), nil
	}

	return decodeItem(v)
}

func decodeItem(v *fastjson.Value) (lineprotocol.Item, error) {
	switch v.Type() {
	case fastjson.TypeNull:
		return lineprotocol.NullItem(), nil
	case fastjson.TypeString:
		s, _ := v.StringBytes()
		return lineprotocol.TextItem(string(s)), nil
	case fastjson.TypeObject:
		o, _ := v.Object()
		if o.Get("measurement") == nil {
			break
		}
		point, err := DecodePoint(o)
		if err != nil {
			return lineprotocol.Item{}, err
		}
		return lineprotocol.PointItem(point), nil
	}
	return lineprotocol.OtherItem(v), nil
}

// DecodePoint reads a point object. Every field value is resolved to its kind here.
func DecodePoint(o *fastjson.Object) (*lineprotocol.Point, error) {
	point := &lineprotocol.Point{}

	m := o.Get("measurement")
	if m == nil || m.Type() != fastjson.TypeString {
		return nil, fmt.Errorf("%w: measurement must be a string", ErrMalformedPoint)
	}
	s, _ := m.StringBytes()
	point.Measurement = string(s)

	if tags, err := objectOrNil(o.Get("tags"), "tags"); err != nil {
		return nil, err
	} else if tags != nil {
		tags.Visit(func(key []byte, v *fastjson.Value) {
			point.Tags.Set(string(key), tagValue(v))
		})
	}

	if fields, err := objectOrNil(o.Get("fields"), "fields"); err != nil {
		return nil, err
	} else if fields != nil {
		fields.Visit(func(key []byte, v *fastjson.Value) {
			point.Fields.Set(string(key), fieldValue(v))
		})
	}

	ts, err := timestamp(o.Get("timestamp"))
	if err != nil {
		return nil, err
	}
	point.Timestamp = ts

	return point, nil
}

func objectOrNil(v *fastjson.Value, name string) (*fastjson.Object, error) {
	if v == nil || v.Type() == fastjson.TypeNull {
		return nil, nil
	}
	o, err := v.Object()
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an object", ErrMalformedPoint, name)
	}
	return o, nil
}

func tagValue(v *fastjson.Value) string {
	if v.Type() == fastjson.TypeString {
		s, _ := v.StringBytes()
		return string(s)
	}
	return v.String()
}

func fieldValue(v *fastjson.Value) lineprotocol.Value {
	switch v.Type() {
	case fastjson.TypeNumber:
		raw := v.String()
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return lineprotocol.Integer(i)
		}
		f, _ := v.Float64()
		return lineprotocol.Float(f)
	case fastjson.TypeTrue:
		return lineprotocol.Boolean(true)
	case fastjson.TypeFalse:
		return lineprotocol.Boolean(false)
	case fastjson.TypeString:
		s, _ := v.StringBytes()
		return lineprotocol.Text(string(s))
	}
	return lineprotocol.Opaque(v.String())
}

func timestamp(v *fastjson.Value) (*lineprotocol.Timestamp, error) {
	if v == nil {
		return nil, nil
	}
	switch v.Type() {
	case fastjson.TypeNull:
		return nil, nil
	case fastjson.TypeNumber:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: timestamp: %v", ErrMalformedPoint, err)
		}
		ts := lineprotocol.Timestamp(f)
		return &ts, nil
	case fastjson.TypeString:
		s, _ := v.StringBytes()
		t, err := time.Parse(time.RFC3339Nano, string(s))
		if err != nil {
			return nil, fmt.Errorf("%w: timestamp: %v", ErrMalformedPoint, err)
		}
		ts := lineprotocol.TimestampFromTime(t)
		return &ts, nil
	}
	return nil, fmt.Errorf("%w: timestamp must be a number or an RFC 3339 string", ErrMalformedPoint)
}

// Encode writes an item back to JSON. Passed-through values are written as they were read.
func Encode(item lineprotocol.Item) []byte {
	var a fastjson.Arena
	return encodeItem(&a, item).MarshalTo(nil)
}

func encodeItem(a *fastjson.Arena, item lineprotocol.Item) *fastjson.Value {
	switch item.Kind {
	case lineprotocol.ItemText:
		return a.NewString(item.Text)
	case lineprotocol.ItemPoint:
		if item.Point != nil {
			return EncodePoint(a, *item.Point)
		}
	case lineprotocol.ItemSequence:
		arr := a.NewArray()
		for i, el := range item.Sequence {
			arr.SetArrayItem(i, encodeItem(a, el))
		}
		return arr
	case lineprotocol.ItemOther:
		return otherValue(a, item.Other)
	}
	return a.NewNull()
}

func otherValue(a *fastjson.Arena, other interface{}) *fastjson.Value {
	if v, ok := other.(*fastjson.Value); ok {
		return v
	}
	raw, err := json.Marshal(other)
	if err != nil {
		return a.NewNull()
	}
	v, err := fastjson.ParseBytes(raw)
	if err != nil {
		return a.NewNull()
	}
	return v
}

// EncodePoint builds the JSON object for p. An absent timestamp is left out.
func EncodePoint(a *fastjson.Arena, p lineprotocol.Point) *fastjson.Value {
	obj := a.NewObject()
	obj.Set("measurement", a.NewString(p.Measurement))

	tags := a.NewObject()
	for _, tag := range p.Tags {
		tags.Set(tag.Key, a.NewString(tag.Value))
	}
	obj.Set("tags", tags)

	fields := a.NewObject()
	for _, field := range p.Fields {
		fields.Set(field.Key, encodeValue(a, field.Value))
	}
	obj.Set("fields", fields)

	if p.Timestamp != nil {
		obj.Set("timestamp", a.NewNumberString(lineprotocol.Float(float64(*p.Timestamp)).NumberString()))
	}
	return obj
}

func encodeValue(a *fastjson.Arena, v lineprotocol.Value) *fastjson.Value {
	switch v.Kind() {
	case lineprotocol.KindInteger, lineprotocol.KindFloat:
		return a.NewNumberString(v.NumberString())
	case lineprotocol.KindBoolean:
		if v.Bool() {
			return a.NewTrue()
		}
		return a.NewFalse()
	case lineprotocol.KindText:
		return a.NewString(v.Str())
	}
	if parsed, err := fastjson.Parse(v.Str()); err == nil {
		return parsed
	}
	return a.NewString(v.Str())
}

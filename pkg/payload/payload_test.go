package payload

import (
	"errors"
	"testing"
	"time"

	"github.com/max-bytes/influxdb-line-protocol/pkg/lineprotocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var floatCfg = lineprotocol.Config{DefaultTypeMapping: lineprotocol.NumericFloat}

func transform(t *testing.T, in string, cfg lineprotocol.Config) string {
	t.Helper()
	out, err := Transform([]byte(in), cfg)
	require.NoError(t, err)
	return string(out)
}

func TestTransformFormatsEmptyMeasurement(t *testing.T) {
	assert.Equal(t, `"measurementName "`, transform(t, `{"measurement":"measurementName"}`, floatCfg))
}

func TestTransformFormatsComplicatedFields(t *testing.T) {
	in := `{
		"measurement": "measurementName",
		"fields": {"intValue": 123, "floatValue": 123.45, "strValue": "123", "boolValue": false},
		"tags": {"tag1": "foo", "tag2": "bar"},
		"timestamp": 1231313123
	}`
	cfg := lineprotocol.Config{
		DefaultTypeMapping: lineprotocol.NumericFloat,
		TypeMappings:       []lineprotocol.TypeMapping{{FieldName: "intValue", FieldType: lineprotocol.NumericInt}},
	}

	assert.Equal(t,
		`"measurementName,tag1=foo,tag2=bar intValue=123i,floatValue=123.45,strValue=\"123\",boolValue=FALSE 1231313123000000"`,
		transform(t, in, cfg))
}

func TestTransformFormatsDefaultIntMapping(t *testing.T) {
	cfg := lineprotocol.Config{DefaultTypeMapping: lineprotocol.NumericInt}
	assert.Equal(t, `"m f=1i"`, transform(t, `{"measurement":"m","fields":{"f":1}}`, cfg))
}

func TestTransformParsesEmptyMeasurement(t *testing.T) {
	assert.Equal(t, `{"measurement":"measurementName","tags":{},"fields":{}}`, transform(t, `"measurementName"`, floatCfg))
}

func TestTransformParsesComplicatedFields(t *testing.T) {
	in := `"measurementName,tag=tagValue,tag2=tag2Value field1=123i,field2=123,field3=\"foo\",field4=True 123123123"`

	assert.Equal(t,
		`{"measurement":"measurementName","tags":{"tag":"tagValue","tag2":"tag2Value"},"fields":{"field1":123,"field2":123,"field3":"foo","field4":true},"timestamp":123.123123}`,
		transform(t, in, floatCfg))
}

func TestTransformMixedArray(t *testing.T) {
	assert.Equal(t,
		`[{"measurement":"m","tags":{},"fields":{"f":1}},"m2 "]`,
		transform(t, `["m f=1i", {"measurement": "m2"}]`, floatCfg))
}

func TestTransformPassesThroughOtherValues(t *testing.T) {
	for _, in := range []string{
		`{"foo":"test"}`,
		`{"nested":{"a":[1,2.50,"x"]},"n":1e3}`,
		`42`,
		`true`,
		`null`,
		`[[1,2],{"foo":"bar"},null]`,
	} {
		assert.Equal(t, in, transform(t, in, lineprotocol.Config{AddTimestamp: true}), in)
	}
}

func TestTransformEmptyBodyIsNull(t *testing.T) {
	assert.Equal(t, "null", transform(t, "  ", floatCfg))
}

func TestTransformAddsTimestampWhileParsing(t *testing.T) {
	cfg := lineprotocol.Config{AddTimestamp: true, Now: func() time.Time { return time.Unix(1, 500000000) }}
	assert.Equal(t, `{"measurement":"m","tags":{},"fields":{},"timestamp":1500}`, transform(t, `"m"`, cfg))
}

func TestTransformInvalidJSON(t *testing.T) {
	_, err := Transform([]byte(`{"measurement":`), floatCfg)
	assert.True(t, errors.Is(err, ErrInvalidJSON))
}

func TestTransformMalformedPoint(t *testing.T) {
	for _, in := range []string{
		`{"measurement":5}`,
		`{"measurement":null}`,
		`{"measurement":"m","tags":"a=b"}`,
		`{"measurement":"m","fields":[1]}`,
		`{"measurement":"m","timestamp":"yesterday"}`,
		`{"measurement":"m","timestamp":true}`,
		`["m f=1i",{"measurement":"m","fields":3}]`,
	} {
		_, err := Transform([]byte(in), floatCfg)
		assert.True(t, errors.Is(err, ErrMalformedPoint), in)
	}
}

func TestDecodeResolvesFieldKinds(t *testing.T) {
	item, err := Decode([]byte(`{"measurement":"m","tags":{"n":5,"b":true,"s":"x"},"fields":{"i":-3,"f":2.0,"e":1e2,"b":true,"s":"x","o":{"a":1},"z":null},"timestamp":"2016-06-13T17:43:50.1Z"}`))
	require.NoError(t, err)
	require.Equal(t, lineprotocol.ItemPoint, item.Kind)

	p := item.Point
	assert.Equal(t, lineprotocol.Tags{{Key: "n", Value: "5"}, {Key: "b", Value: "true"}, {Key: "s", Value: "x"}}, p.Tags)
	assert.Equal(t, lineprotocol.Fields{
		{Key: "i", Value: lineprotocol.Integer(-3)},
		{Key: "f", Value: lineprotocol.Float(2)},
		{Key: "e", Value: lineprotocol.Float(100)},
		{Key: "b", Value: lineprotocol.Boolean(true)},
		{Key: "s", Value: lineprotocol.Text("x")},
		{Key: "o", Value: lineprotocol.Opaque(`{"a":1}`)},
		{Key: "z", Value: lineprotocol.Opaque("null")},
	}, p.Fields)
	require.NotNil(t, p.Timestamp)
	assert.Equal(t, lineprotocol.Timestamp(1465839830100), *p.Timestamp)

	assert.Equal(t, `"m,n=5,b=true,s=x i=-3i,f=2i,e=100i,b=TRUE,s=\"x\",o={\"a\":1},z=null 1465839830100000000"`,
		string(Encode(lineprotocol.Dispatch(item, lineprotocol.Config{DefaultTypeMapping: lineprotocol.NumericInt}))))
}

func TestEncodeOtherGoValue(t *testing.T) {
	assert.Equal(t, `{"foo":"test"}`, string(Encode(lineprotocol.OtherItem(map[string]string{"foo": "test"}))))
}

package lineprotocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tsPtr(v Timestamp) *Timestamp { return &v }

func TestParseEmptyMeasurement(t *testing.T) {
	actual := Parse("m", Config{})

	assert.Equal(t, Point{Measurement: "m", Tags: Tags{}, Fields: Fields{}}, actual)
	assert.Nil(t, actual.Timestamp)
}

func TestParseBasicLine(t *testing.T) {
	actual := Parse("m,t=v f=1i 1000000000", Config{})

	expected := Point{
		Measurement: "m",
		Tags:        Tags{{"t", "v"}},
		Fields:      Fields{{"f", Integer(1)}},
		Timestamp:   tsPtr(1000),
	}
	assert.Equal(t, expected, actual)
}

func TestParseComplicatedFields(t *testing.T) {
	actual := Parse(`measurementName,tag=tagValue,tag2=tag2Value field1=123i,field2=123,field3="foo",field4=True 123123123`, Config{})

	assert.Equal(t, "measurementName", actual.Measurement)
	assert.Equal(t, Tags{{"tag", "tagValue"}, {"tag2", "tag2Value"}}, actual.Tags)
	assert.Equal(t, Fields{
		{"field1", Integer(123)},
		{"field2", Float(123)},
		{"field3", Text("foo")},
		{"field4", Boolean(true)},
	}, actual.Fields)
	require.NotNil(t, actual.Timestamp)
	assert.InDelta(t, 123.123123, float64(*actual.Timestamp), 1e-9)
}

func TestParseMalformedTokensDegrade(t *testing.T) {
	actual := Parse("m,novalue,k=v,=empty f,g=,h=xyz,i=2i", Config{})

	assert.Equal(t, "m", actual.Measurement)
	assert.Equal(t, Tags{{"k", "v"}, {"", "empty"}}, actual.Tags)
	assert.Equal(t, Fields{{"i", Integer(2)}}, actual.Fields)
	assert.Nil(t, actual.Timestamp)
}

func TestParseSplitsOnFirstEquals(t *testing.T) {
	actual := Parse(`m,a=b=c f="x=y"`, Config{})

	assert.Equal(t, Tags{{"a", "b=c"}}, actual.Tags)
	assert.Equal(t, Fields{{"f", Text("x=y")}}, actual.Fields)
}

func TestParseDuplicateKeysLastWins(t *testing.T) {
	actual := Parse("m,t=1,u=2,t=3 f=1i,g=2i,f=3i", Config{})

	assert.Equal(t, Tags{{"t", "3"}, {"u", "2"}}, actual.Tags)
	assert.Equal(t, Fields{{"f", Integer(3)}, {"g", Integer(2)}}, actual.Fields)
}

func TestParseUnparseableDuplicateUnsetsKey(t *testing.T) {
	actual := Parse("m f=1i,f=nope", Config{})
	assert.Equal(t, Fields{}, actual.Fields)

	actual = Parse("m f=1i,g=2i,f=,h=3i", Config{})
	assert.Equal(t, Fields{{"g", Integer(2)}, {"h", Integer(3)}}, actual.Fields)

	actual = Parse("m f=nope,f=4i", Config{})
	assert.Equal(t, Fields{{"f", Integer(4)}}, actual.Fields)
}

func TestParseExtraSegmentsAreIgnored(t *testing.T) {
	actual := Parse(`m f="hot day" 1000000`, Config{})

	// the quoted value spans a space, so the line is misparsed rather than rejected
	assert.Equal(t, Fields{}, actual.Fields)
	assert.Nil(t, actual.Timestamp)

	actual = Parse("m f=1 2000000 trailing", Config{})
	assert.Equal(t, tsPtr(2), actual.Timestamp)
}

func TestParseAddTimestamp(t *testing.T) {
	start := time.Now()
	actual := Parse("measurementName", Config{AddTimestamp: true})
	end := time.Now()

	assert.Equal(t, "measurementName", actual.Measurement)
	require.NotNil(t, actual.Timestamp)
	assert.GreaterOrEqual(t, float64(*actual.Timestamp), float64(start.UnixNano()/int64(time.Millisecond)))
	assert.LessOrEqual(t, float64(*actual.Timestamp), float64(end.UnixNano()/int64(time.Millisecond)))
}

func TestParseInvalidTimestampFallsBack(t *testing.T) {
	clock := func() time.Time { return time.Unix(5, 0) }

	assert.Nil(t, Parse("m f=1 soon", Config{Now: clock}).Timestamp)
	assert.Equal(t, tsPtr(5000), Parse("m f=1 soon", Config{AddTimestamp: true, Now: clock}).Timestamp)
}

func TestParseTimestampDigitPrefix(t *testing.T) {
	assert.Equal(t, tsPtr(123), Parse("m f=1 123000000abc", Config{}).Timestamp)
	assert.Equal(t, tsPtr(-1), Parse("m f=1 -1000000ms", Config{}).Timestamp)
	assert.Nil(t, Parse("m f=1 abc123", Config{}).Timestamp)
}

func TestArrayShift(t *testing.T) {
	s := []string{"a", "b"}
	assert.Equal(t, "a", ArrayShift(&s))
	assert.Equal(t, "b", ArrayShift(&s))
	assert.Equal(t, "", ArrayShift(&s))
	assert.Empty(t, s)
}

package lineprotocol

import (
	"math"
	"time"
)

const nanosPerMilli = int64(time.Millisecond)

// Timestamp is a point's time in milliseconds since the Unix epoch. It carries a fraction when
// it was decoded from a nanosecond value that is not a whole millisecond.
type Timestamp float64

func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp(t.Unix()*1000) + Timestamp(t.Nanosecond())/Timestamp(nanosPerMilli)
}

// EncodeTimestamp returns ts as nanoseconds since the epoch.
func EncodeTimestamp(ts Timestamp) int64 {
	ms := float64(ts)
	whole := math.Floor(ms)
	return int64(whole)*nanosPerMilli + int64(math.Round((ms-whole)*float64(nanosPerMilli)))
}

// DecodeTimestamp converts nanoseconds since the epoch back to milliseconds.
func DecodeTimestamp(ns int64) Timestamp {
	whole, rest := ns/nanosPerMilli, ns%nanosPerMilli
	if rest < 0 {
		whole--
		rest += nanosPerMilli
	}
	return Timestamp(whole) + Timestamp(rest)/Timestamp(nanosPerMilli)
}

func (ts Timestamp) Time() time.Time {
	return time.Unix(0, EncodeTimestamp(ts))
}

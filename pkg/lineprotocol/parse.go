package lineprotocol

import (
	"regexp"
	"strconv"
	"strings"
)

// leading digits only: 123abc is read as 123
var regexTimestamp = regexp.MustCompile(`^[+-]?\d+`)

// Parse reads one line of line protocol. It never fails: tokens it cannot make sense of are
// left out of the result.
//
// Segments are separated by single spaces and only the first three are read, so a quoted
// field value containing a space is misparsed.
func Parse(line string, cfg Config) Point {
	segments := strings.Split(line, " ")

	measurementAndTagsStr := ArrayShift(&segments)
	fieldSetStr := ArrayShift(&segments)
	timestampStr := ArrayShift(&segments)

	measurementAndTags := strings.Split(measurementAndTagsStr, ",")
	measurement := ArrayShift(&measurementAndTags)

	tagSet := Tags{}
	for _, tagStr := range measurementAndTags {
		if tagStr == "" {
			continue
		}
		tagKV := strings.SplitN(tagStr, "=", 2)
		if len(tagKV) != 2 {
			continue
		}
		tagSet.Set(tagKV[0], tagKV[1])
	}

	fieldSet := Fields{}
	if fieldSetStr != "" {
		for _, fieldStr := range strings.Split(fieldSetStr, ",") {
			if fieldStr == "" {
				continue
			}
			fieldKV := strings.SplitN(fieldStr, "=", 2)
			if len(fieldKV) != 2 {
				continue
			}
			// a later token without a value unsets the key
			if value, ok := ParseValue(fieldKV[1]); ok {
				fieldSet.Set(fieldKV[0], value)
			} else {
				fieldSet.Delete(fieldKV[0])
			}
		}
	}

	point := Point{Measurement: measurement, Tags: tagSet, Fields: fieldSet}

	// parse if set, fall back to the current time if asked to
	if ns, err := strconv.ParseInt(regexTimestamp.FindString(timestampStr), 10, 64); err == nil {
		ts := DecodeTimestamp(ns)
		point.Timestamp = &ts
	} else if cfg.AddTimestamp {
		ts := cfg.nowMillis()
		point.Timestamp = &ts
	}

	return point
}

// ArrayShift removes and returns the first element of s, or "" when s is empty.
func ArrayShift(s *[]string) string {
	if len(*s) == 0 {
		return ""
	}
	f := (*s)[0]
	*s = (*s)[1:]
	return f
}

package lineprotocol

import (
	"strconv"
	"strings"
)

// Format writes p as a single line of line protocol, without a trailing newline.
// Names and values are not escaped.
func Format(p Point, cfg Config) string {
	var sb strings.Builder

	sb.WriteString(p.Measurement)

	if len(p.Tags) > 0 {
		sb.WriteByte(',')
		for i, tag := range p.Tags {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(tag.Key)
			sb.WriteByte('=')
			sb.WriteString(tag.Value)
		}
	}

	sb.WriteByte(' ')
	for i, field := range p.Fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(field.Key)
		sb.WriteByte('=')
		sb.WriteString(FormatValue(field.Value, cfg.NumericKindFor(field.Key)))
	}

	if p.Timestamp != nil {
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatInt(EncodeTimestamp(*p.Timestamp), 10))
	} else if cfg.AddTimestamp {
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatInt(EncodeTimestamp(cfg.nowMillis()), 10))
	}

	return sb.String()
}

package lineprotocol

import "time"

// NumericKind selects how a numeric field value is written.
type NumericKind string

const (
	NumericInt   NumericKind = "int"
	NumericFloat NumericKind = "float"
)

type TypeMapping struct {
	FieldName string      `json:"fieldName" toml:"fieldName" yaml:"fieldName"`
	FieldType NumericKind `json:"fieldType" toml:"fieldType" yaml:"fieldType"`
}

// Config holds the options read by Parse and Format. It is passed by value and never mutated.
type Config struct {
	AddTimestamp       bool          `json:"addTimestamp" toml:"addTimestamp" yaml:"addTimestamp"`
	DefaultTypeMapping NumericKind   `json:"defaultTypeMapping" toml:"defaultTypeMapping" yaml:"defaultTypeMapping"`
	TypeMappings       []TypeMapping `json:"typeMappings" toml:"typeMappings" yaml:"typeMappings"`

	// Now is read when AddTimestamp needs the current time; nil means time.Now.
	Now func() time.Time `json:"-" toml:"-" yaml:"-"`
}

// NumericKindFor returns the kind of the first mapping naming field. Without a mapping, or when
// that mapping has no type, the default applies.
func (c Config) NumericKindFor(field string) NumericKind {
	for _, m := range c.TypeMappings {
		if m.FieldName == field {
			if m.FieldType == "" {
				return c.DefaultTypeMapping
			}
			return m.FieldType
		}
	}
	return c.DefaultTypeMapping
}

// nowMillis is the current time truncated to whole milliseconds.
func (c Config) nowMillis() Timestamp {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return Timestamp(now().UnixNano() / int64(time.Millisecond))
}

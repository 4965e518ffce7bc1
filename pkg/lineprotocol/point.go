package lineprotocol

type Tag struct {
	Key   string
	Value string
}

type Field struct {
	Key   string
	Value Value
}

// Tags is an insertion-ordered tag set. Keys are unique.
type Tags []Tag

// Fields is an insertion-ordered field set. Keys are unique.
type Fields []Field

// Point is one observation: a measurement with tags, fields and an optional timestamp.
type Point struct {
	Measurement string
	Tags        Tags
	Fields      Fields
	Timestamp   *Timestamp
}

func NewPoint(measurement string, tags Tags, fields Fields) *Point {
	return &Point{
		Measurement: measurement,
		Tags:        tags,
		Fields:      fields,
	}
}

func NewPointWithTimestamp(measurement string, tags Tags, fields Fields, ts Timestamp) *Point {
	return &Point{
		Measurement: measurement,
		Tags:        tags,
		Fields:      fields,
		Timestamp:   &ts,
	}
}

// Set stores value under key. An existing key keeps its position.
func (t *Tags) Set(key, value string) {
	for i := range *t {
		if (*t)[i].Key == key {
			(*t)[i].Value = value
			return
		}
	}
	*t = append(*t, Tag{Key: key, Value: value})
}

func (t Tags) Get(key string) (string, bool) {
	for _, tag := range t {
		if tag.Key == key {
			return tag.Value, true
		}
	}
	return "", false
}

// Map copies the tags into a map, losing their order.
func (t Tags) Map() map[string]string {
	m := make(map[string]string, len(t))
	for _, tag := range t {
		m[tag.Key] = tag.Value
	}
	return m
}

// Set stores value under key. An existing key keeps its position.
func (f *Fields) Set(key string, value Value) {
	for i := range *f {
		if (*f)[i].Key == key {
			(*f)[i].Value = value
			return
		}
	}
	*f = append(*f, Field{Key: key, Value: value})
}

// Delete removes key, keeping the order of the remaining fields.
func (f *Fields) Delete(key string) {
	for i := range *f {
		if (*f)[i].Key == key {
			*f = append((*f)[:i], (*f)[i+1:]...)
			return
		}
	}
}

func (f Fields) Get(key string) (Value, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return Value{}, false
}

// Map copies the fields into a map of plain Go values, losing their order.
func (f Fields) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(f))
	for _, field := range f {
		m[field.Key] = field.Value.Interface()
	}
	return m
}

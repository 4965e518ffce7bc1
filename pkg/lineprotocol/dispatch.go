package lineprotocol

// ItemKind classifies one message item.
type ItemKind int

const (
	// ItemNull is an absent item. It passes through.
	ItemNull ItemKind = iota
	// ItemText is line protocol text, parsed into a point.
	ItemText
	// ItemPoint is a structured point, formatted into text.
	ItemPoint
	// ItemOther is any other value. It passes through untouched.
	ItemOther
	// ItemSequence is an ordered list of items, each dispatched on its own.
	ItemSequence
)

// Item is one message payload or one element of a payload sequence.
type Item struct {
	Kind     ItemKind
	Text     string
	Point    *Point
	Other    interface{}
	Sequence []Item
}

func NullItem() Item                 { return Item{Kind: ItemNull} }
func TextItem(s string) Item         { return Item{Kind: ItemText, Text: s} }
func PointItem(p *Point) Item        { return Item{Kind: ItemPoint, Point: p} }
func OtherItem(v interface{}) Item   { return Item{Kind: ItemOther, Other: v} }
func SequenceItem(items []Item) Item { return Item{Kind: ItemSequence, Sequence: items} }

// Dispatch parses text items, formats point items and returns everything else unchanged.
// A sequence is not descended into; see DispatchMany.
func Dispatch(item Item, cfg Config) Item {
	switch item.Kind {
	case ItemText:
		p := Parse(item.Text, cfg)
		return PointItem(&p)
	case ItemPoint:
		if item.Point == nil {
			return item
		}
		return TextItem(Format(*item.Point, cfg))
	}
	return item
}

// DispatchMany dispatches every element of a sequence independently, keeping order and length.
// Any other item is dispatched on its own.
func DispatchMany(item Item, cfg Config) Item {
	if item.Kind != ItemSequence {
		return Dispatch(item, cfg)
	}
	out := make([]Item, len(item.Sequence))
	for i, el := range item.Sequence {
		out[i] = Dispatch(el, cfg)
	}
	return SequenceItem(out)
}

// ParsePoints parses each line on its own.
func ParsePoints(lines []string, cfg Config) []Point {
	points := make([]Point, 0, len(lines))
	for _, line := range lines {
		points = append(points, Parse(line, cfg))
	}
	return points
}

// FormatPoints formats each point on its own.
func FormatPoints(points []Point, cfg Config) []string {
	lines := make([]string, 0, len(points))
	for _, p := range points {
		lines = append(lines, Format(p, cfg))
	}
	return lines
}

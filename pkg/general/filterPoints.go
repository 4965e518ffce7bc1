package general

import (
	"github.com/max-bytes/influxdb-line-protocol/pkg/config"
	"github.com/max-bytes/influxdb-line-protocol/pkg/lineprotocol"
)

// FilterPoints keeps points with at least one included tag (all points when no include filter is
// set), then drops points with any blocked tag. "*" matches every value.
func FilterPoints(points []lineprotocol.Point, c config.Tagfilter) []lineprotocol.Point {

	var tagfilterInclude map[string][]string = c.GetTagfilterInclude()
	var filteredPoints []lineprotocol.Point
	if len(tagfilterInclude) == 0 {
		// no filtering
		filteredPoints = points
	} else {
		for _, point := range points {
			if matchesAny(point.Tags, tagfilterInclude) {
				filteredPoints = append(filteredPoints, point)
			}
		}
	}

	var tagfilterBlock map[string][]string = c.GetTagfilterBlock()
	var result []lineprotocol.Point
	for _, point := range filteredPoints {
		if !matchesAny(point.Tags, tagfilterBlock) {
			result = append(result, point)
		}
	}

	return result
}

func matchesAny(tags lineprotocol.Tags, filter map[string][]string) bool {
	for _, tag := range tags {
		for _, v := range filter[tag.Key] {
			if v == "*" || tag.Value == v {
				return true
			}
		}
	}
	return false
}

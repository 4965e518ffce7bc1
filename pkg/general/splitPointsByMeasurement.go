package general

import "github.com/max-bytes/influxdb-line-protocol/pkg/lineprotocol"

type PointGroup struct {
	Measurement string
	Points      []lineprotocol.Point
}

// SplitPointsByMeasurement groups points by measurement, in order of first appearance.
func SplitPointsByMeasurement(input []lineprotocol.Point) []PointGroup {

	var index = make(map[string]int)
	var r []PointGroup

	for _, point := range input {
		var measurement = point.Measurement
		i, ok := index[measurement]
		if !ok {
			i = len(r)
			index[measurement] = i
			r = append(r, PointGroup{Measurement: measurement})
		}
		r[i].Points = append(r[i].Points, point)
	}

	return r
}

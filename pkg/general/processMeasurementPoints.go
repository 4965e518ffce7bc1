package general

import (
	"fmt"
	"sort"

	"github.com/max-bytes/influxdb-line-protocol/pkg/config"
	"github.com/max-bytes/influxdb-line-protocol/pkg/lineprotocol"
)

// ProcessMeasurementPoints applies one measurement's output settings: ignored measurements yield
// no points, tag filters run unless disabled, and added tags are set on every point.
func ProcessMeasurementPoints(points []lineprotocol.Point, measurementConfig config.MeasurementConfig, outputConfig config.Tagfilter) []lineprotocol.Point {

	if measurementConfig.GetIgnore() {
		return []lineprotocol.Point{}
	}

	if !measurementConfig.GetIgnoreFiltering() {
		points = FilterPoints(points, outputConfig)
	}

	var addedTags = measurementConfig.GetAddedTags()
	var addedKeys = make([]string, 0, len(addedTags))
	for k := range addedTags {
		addedKeys = append(addedKeys, k)
	}
	sort.Strings(addedKeys)

	var outputPoints []lineprotocol.Point
	for _, point := range points {

		tags := make(lineprotocol.Tags, len(point.Tags))
		copy(tags, point.Tags)

		for _, k := range addedKeys {
			tags.Set(k, addedTags[k])
		}

		outputPoints = append(outputPoints, lineprotocol.Point{
			Measurement: point.Measurement,
			Fields:      point.Fields,
			Tags:        tags,
			Timestamp:   point.Timestamp})
	}
	return outputPoints
}

// MeasurementLookup finds the settings of one measurement of an output.
type MeasurementLookup func(measurement string) (config.MeasurementConfig, bool)

// PreparePointGroups runs ProcessMeasurementPoints over every group. A measurement the output
// does not know is an error.
func PreparePointGroups(groups []PointGroup, lookup MeasurementLookup, outputConfig config.Tagfilter) ([]PointGroup, error) {
	var prepared []PointGroup
	for _, group := range groups {
		measurementConfig, ok := lookup(group.Measurement)
		if !ok {
			return nil, fmt.Errorf("Unknown measurement \"%s\" encountered", group.Measurement)
		}
		points := ProcessMeasurementPoints(group.Points, measurementConfig, outputConfig)
		if len(points) == 0 {
			continue
		}
		prepared = append(prepared, PointGroup{Measurement: group.Measurement, Points: points})
	}
	return prepared, nil
}

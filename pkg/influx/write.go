package influx

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	influxdb1 "github.com/influxdata/influxdb1-client/v2"
	"github.com/max-bytes/influxdb-line-protocol/pkg/config"
	"github.com/max-bytes/influxdb-line-protocol/pkg/general"
	"github.com/max-bytes/influxdb-line-protocol/pkg/lineprotocol"
)

func Write(ctx context.Context, groupedPoints []general.PointGroup, config *config.OutputInflux) error {
	var points, err = buildDBPointsInflux(groupedPoints, config)

	if err != nil {
		return fmt.Errorf("An error ocurred while building db rows: %w", err)
	}

	if len(points) > 0 {
		var insertErr error
		switch config.Version {
		case 1:
			insertErr = insertRowsInfluxV1(points, config)
		case 2:
			insertErr = insertRowsInfluxV2(ctx, points, config)
		default:
			return fmt.Errorf("Unknown influx version specified: %d", config.Version)
		}
		if insertErr != nil {
			return fmt.Errorf("An error ocurred while inserting db rows: %w", insertErr)
		}
	}
	return nil
}

func buildDBPointsInflux(i []general.PointGroup, cfg *config.OutputInflux) ([]lineprotocol.Point, error) {
	lookup := func(measurement string) (config.MeasurementConfig, bool) {
		mc, ok := cfg.Measurements[measurement]
		return mc, ok
	}

	prepared, err := general.PreparePointGroups(i, lookup, cfg)
	if err != nil {
		return nil, err
	}

	var writePoints []lineprotocol.Point
	for _, group := range prepared {
		writePoints = append(writePoints, group.Points...)
	}
	return writePoints, nil
}

// pointFields converts field values for the influx clients; structured values go in as their JSON text.
func pointFields(fields lineprotocol.Fields) map[string]interface{} {
	m := make(map[string]interface{}, len(fields))
	for _, field := range fields {
		if field.Value.Kind() == lineprotocol.KindOpaque {
			m[field.Key] = field.Value.Str()
			continue
		}
		m[field.Key] = field.Value.Interface()
	}
	return m
}

func pointTime(p lineprotocol.Point, now time.Time) time.Time {
	if p.Timestamp == nil {
		return now
	}
	return p.Timestamp.Time()
}

func insertRowsInfluxV1(writePoints []lineprotocol.Point, config *config.OutputInflux) error {
	c, err := influxdb1.NewHTTPClient(influxdb1.HTTPConfig{
		Addr:               config.Connection,
		Username:           config.Username,
		Password:           config.Password,
		InsecureSkipVerify: true,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	bp, err := influxdb1.NewBatchPoints(influxdb1.BatchPointsConfig{Database: config.DbName})
	if err != nil {
		return err
	}
	now := time.Now()
	for _, p := range writePoints {
		point, err := influxdb1.NewPoint(p.Measurement, p.Tags.Map(), pointFields(p.Fields), pointTime(p, now))
		if err != nil {
			return err
		}
		bp.AddPoint(point)
	}

	return c.Write(bp)
}

func insertRowsInfluxV2(ctx context.Context, writePoints []lineprotocol.Point, config *config.OutputInflux) error {

	// create new client with default option for server url authenticate by token
	client := influxdb2.NewClient(config.Connection, config.AuthToken)
	defer client.Close()

	// user blocking write client for writes to desired bucket
	writeAPI := client.WriteAPIBlocking(config.Org, config.DbName)

	now := time.Now()
	for _, p := range writePoints {
		p1 := influxdb2.NewPoint(p.Measurement,
			p.Tags.Map(),
			pointFields(p.Fields),
			pointTime(p, now))

		err := writeAPI.WritePoint(ctx, p1)
		if err != nil {
			return err
		}
	}

	return nil
}

package timescale

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx"
	"github.com/max-bytes/influxdb-line-protocol/pkg/config"
	"github.com/max-bytes/influxdb-line-protocol/pkg/general"
)

const timestampLayout = "2006-01-02 15:04:05.000 MST"

func Write(groupedPoints []general.PointGroup, config *config.OutputTimescale) error {
	var rows, buildDBRowsErr = buildDBRowsTimescale(groupedPoints, config, time.Now())

	if buildDBRowsErr != nil {
		return fmt.Errorf("An error ocurred while building db rows: %w", buildDBRowsErr)
	}

	if len(rows) > 0 {
		insertErr := insertRowsTimescale(rows, config)
		if insertErr != nil {
			return fmt.Errorf("An error ocurred while inserting db rows: %w", insertErr)
		}
	}
	return nil
}

// buildDBRowsTimescale builds one insert statement per measurement. Points without a timestamp
// are stamped with now.
func buildDBRowsTimescale(i []general.PointGroup, cfg *config.OutputTimescale, now time.Time) ([]TimescaleRows, error) {
	lookup := func(measurement string) (config.MeasurementConfig, bool) {
		mc, ok := cfg.Measurements[measurement]
		return mc, ok
	}

	prepared, err := general.PreparePointGroups(i, lookup, cfg)
	if err != nil {
		return nil, err
	}

	var rows []TimescaleRows
	for _, input := range prepared {
		var measurementConfig = cfg.Measurements[input.Measurement]
		var tagsAsColumns = measurementConfig.TagsAsColumns
		var fieldsAsColumns = measurementConfig.FieldsAsColumns

		var insertRows []TimescaleRow

		for _, point := range input.Points {
			var timestamp = now
			if point.Timestamp != nil {
				timestamp = point.Timestamp.Time()
			}

			var tagColumnValues []interface{}
			for _, v := range tagsAsColumns {
				if value, ok := point.Tags.Get(v); ok {
					tagColumnValues = append(tagColumnValues, value)
				} else {
					tagColumnValues = append(tagColumnValues, nil)
				}
			}

			var fieldColumnValues []interface{}
			for _, v := range fieldsAsColumns {
				if value, ok := point.Fields.Get(v); ok {
					fieldColumnValues = append(fieldColumnValues, value.Interface())
				} else {
					fieldColumnValues = append(fieldColumnValues, nil)
				}
			}

			// everything not stored in its own column goes into the data column
			var dataValues = make(map[string]interface{})
			for _, tag := range point.Tags {
				if !contains(tagsAsColumns, tag.Key) {
					dataValues[tag.Key] = tag.Value
				}
			}
			for _, field := range point.Fields {
				if !contains(fieldsAsColumns, field.Key) {
					dataValues[field.Key] = field.Value.Interface()
				}
			}

			encodedData, err := json.Marshal(dataValues)
			if err != nil {
				return nil, err
			}

			insertRows = append(insertRows, TimescaleRow{
				timestampFormatted: timestamp.UTC().Format(timestampLayout),
				encodedData:        encodedData,
				fieldColumnValues:  fieldColumnValues,
				tagColumnValues:    tagColumnValues,
			})
		}

		var baseColumns []string = []string{"time", "data"}
		targetTable := measurementConfig.TargetTable

		allColumns := ArrayMerge(baseColumns, fieldsAsColumns, tagsAsColumns)

		columnsSQLStr := strings.Join(allColumns, ",")

		var placeholdersSQLStr = strings.Join(CreateBindParameterList(1, len(allColumns)), ",")

		sql := fmt.Sprintf("INSERT INTO %v(%v) VALUES (%v)", targetTable, columnsSQLStr, placeholdersSQLStr)

		rows = append(rows, TimescaleRows{sql, insertRows, targetTable})
	}

	return rows, nil
}

func insertRowsTimescale(rows []TimescaleRows, config *config.OutputTimescale) error {
	var c, parseErr = pgx.ParseConnectionString(config.Connection)
	if parseErr != nil {
		return parseErr
	}

	conn, connErr := pgx.Connect(c)
	if connErr != nil {
		return connErr
	}
	defer conn.Close()

	tx, beginErr := conn.Begin()
	if beginErr != nil {
		return beginErr
	}
	defer tx.Rollback()

	for _, row := range rows {

		stmt, prepareErr := tx.Prepare(fmt.Sprintf("insert_query_%v", row.TargetTable), row.InsertQuery)
		if prepareErr != nil {
			return prepareErr
		}
		for _, ti := range row.InsertRows {

			var a []interface{}

			a = append(a, ti.timestampFormatted)
			a = append(a, ti.encodedData)
			a = append(a, ti.fieldColumnValues...)
			a = append(a, ti.tagColumnValues...)

			_, insertErr := tx.Exec(stmt.SQL, a...)
			if insertErr != nil {
				return insertErr
			}
		}
	}

	return tx.Commit()
}

func contains(s []string, e string) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}

func ArrayMerge(ss ...[]string) []string {
	n := 0
	for _, v := range ss {
		n += len(v)
	}
	s := make([]string, 0, n)
	for _, v := range ss {
		s = append(s, v...)
	}
	return s
}

func CreateBindParameterList(min, max int) []string {
	a := make([]string, max-min+1)
	for i := range a {
		a[i] = "$" + strconv.Itoa(min+i)
	}
	return a
}

type TimescaleRows struct {
	InsertQuery string
	InsertRows  []TimescaleRow
	TargetTable string
}

type TimescaleRow struct {
	timestampFormatted string
	encodedData        []byte
	fieldColumnValues  []interface{}
	tagColumnValues    []interface{}
}

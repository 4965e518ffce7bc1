package influx

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/influxdata/influxdb1-client/models"
	"github.com/max-bytes/influxdb-line-protocol/pkg/config"
	"github.com/max-bytes/influxdb-line-protocol/pkg/general"
	"github.com/max-bytes/influxdb-line-protocol/pkg/lineprotocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPointGroups() []general.PointGroup {
	t1 := lineprotocol.Timestamp(1465839830100)
	return general.SplitPointsByMeasurement([]lineprotocol.Point{
		{Measurement: "metric", Fields: lineprotocol.Fields{{Key: "value", Value: lineprotocol.Text("value_value")}, {Key: "warn", Value: lineprotocol.Integer(3)}}, Tags: lineprotocol.Tags{{Key: "host", Value: "host_value"}}, Timestamp: &t1},
		{Measurement: "state", Fields: lineprotocol.Fields{{Key: "crit", Value: lineprotocol.Boolean(true)}}, Tags: lineprotocol.Tags{{Key: "monitoringprofile", Value: "monitoringprofile_value"}}, Timestamp: &t1},
		{Measurement: "invalidMeasurement", Fields: lineprotocol.Fields{{Key: "warn", Value: lineprotocol.Float(1.5)}}, Timestamp: &t1},
	})
}

func testOutput() config.OutputInflux {
	return config.OutputInflux{
		DbName: "metrics",
		Org:    "org",
		Measurements: map[string]config.MeasurementInflux{
			"metric":             {AddedTags: map[string]string{"added_tag": "added_tag_value"}},
			"state":              {AddedTags: map[string]string{"added_tag": "added_tag_value"}},
			"invalidMeasurement": {Ignore: true},
		},
	}
}

func TestBuildPointsInflux(t *testing.T) {
	cfg := testOutput()

	rows, err := buildDBPointsInflux(testPointGroups(), &cfg)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "metric", rows[0].Measurement)
	assert.Equal(t, lineprotocol.Tags{{Key: "host", Value: "host_value"}, {Key: "added_tag", Value: "added_tag_value"}}, rows[0].Tags)
	assert.Equal(t, "state", rows[1].Measurement)
	assert.Equal(t, map[string]string{"monitoringprofile": "monitoringprofile_value", "added_tag": "added_tag_value"}, rows[1].Tags.Map())
}

func TestBuildPointsInfluxUnknownMeasurement(t *testing.T) {
	cfg := testOutput()
	delete(cfg.Measurements, "state")

	_, err := buildDBPointsInflux(testPointGroups(), &cfg)
	assert.Error(t, err)
}

func TestPointFields(t *testing.T) {
	fields := lineprotocol.Fields{
		{Key: "i", Value: lineprotocol.Integer(1)},
		{Key: "o", Value: lineprotocol.Opaque(`{"a":1}`)},
	}
	assert.Equal(t, map[string]interface{}{"i": int64(1), "o": `{"a":1}`}, pointFields(fields))
}

type recorder struct {
	mu     sync.Mutex
	paths  []string
	bodies []string
}

func (r *recorder) handler(w http.ResponseWriter, req *http.Request) {
	body, _ := ioutil.ReadAll(req.Body)
	r.mu.Lock()
	r.paths = append(r.paths, req.URL.Path)
	r.bodies = append(r.bodies, string(body))
	r.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func parseWritten(t *testing.T, body string) []models.Point {
	t.Helper()
	points, err := models.ParsePointsString(strings.TrimSpace(body))
	require.NoError(t, err)
	return points
}

func TestWriteInfluxV1(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	cfg := testOutput()
	cfg.Version = 1
	cfg.Connection = srv.URL

	require.NoError(t, Write(context.Background(), testPointGroups(), &cfg))

	require.Len(t, rec.paths, 1)
	assert.Equal(t, "/write", rec.paths[0])
	points := parseWritten(t, rec.bodies[0])
	require.Len(t, points, 2)
	assert.Equal(t, "metric", string(points[0].Name()))
	assert.Equal(t, int64(1465839830100000000), points[0].UnixNano())
	fields, err := points[0].Fields()
	require.NoError(t, err)
	assert.Equal(t, int64(3), fields["warn"])
}

func TestWriteInfluxV2(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	cfg := testOutput()
	cfg.Version = 2
	cfg.Connection = srv.URL

	require.NoError(t, Write(context.Background(), testPointGroups(), &cfg))

	require.Len(t, rec.paths, 2)
	assert.Equal(t, "/api/v2/write", rec.paths[0])
	points := parseWritten(t, rec.bodies[1])
	require.Len(t, points, 1)
	assert.Equal(t, "state", string(points[0].Name()))
	fields, err := points[0].Fields()
	require.NoError(t, err)
	assert.Equal(t, true, fields["crit"])
}

func TestWriteUnknownVersion(t *testing.T) {
	cfg := testOutput()
	cfg.Version = 3
	assert.Error(t, Write(context.Background(), testPointGroups(), &cfg))
}

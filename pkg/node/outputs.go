package node

import (
	"context"
	"fmt"

	"github.com/max-bytes/influxdb-line-protocol/pkg/config"
	"github.com/max-bytes/influxdb-line-protocol/pkg/general"
	"github.com/max-bytes/influxdb-line-protocol/pkg/influx"
	"github.com/max-bytes/influxdb-line-protocol/pkg/timescale"
)

// Output receives the points seen in a message, grouped by measurement.
type Output interface {
	Name() string
	// Critical reports whether a failed write fails the message.
	Critical() bool
	Write(ctx context.Context, groups []general.PointGroup) error
}

type influxOutput struct{ cfg config.OutputInflux }

func (o *influxOutput) Name() string   { return "influxdb" }
func (o *influxOutput) Critical() bool { return o.cfg.WriteStrategy == "commit" }
func (o *influxOutput) Write(ctx context.Context, groups []general.PointGroup) error {
	return influx.Write(ctx, groups, &o.cfg)
}

type timescaleOutput struct{ cfg config.OutputTimescale }

func (o *timescaleOutput) Name() string   { return "timescaledb" }
func (o *timescaleOutput) Critical() bool { return o.cfg.WriteStrategy == "commit" }
func (o *timescaleOutput) Write(_ context.Context, groups []general.PointGroup) error {
	return timescale.Write(groups, &o.cfg)
}

// OutputsFromConfig builds the outputs listed in cfg, timescale first.
func OutputsFromConfig(cfg config.Configuration) []Output {
	var outputs []Output
	for _, o := range cfg.OutputsTimescale {
		outputs = append(outputs, &timescaleOutput{cfg: o})
	}
	for _, o := range cfg.OutputsInflux {
		outputs = append(outputs, &influxOutput{cfg: o})
	}
	return outputs
}

// writeOutputs returns the first critical error and every non-critical one.
func (n *Node) writeOutputs(ctx context.Context, groups []general.PointGroup) (error, []error) {
	var nonCriticalErrors []error
	for _, output := range n.outputs {
		err := output.Write(ctx, groups)
		if err == nil {
			continue
		}
		n.metrics.outputErrors.WithLabelValues(output.Name()).Inc()
		if output.Critical() {
			return fmt.Errorf("An error occurred writing %s output: %w", output.Name(), err), nonCriticalErrors
		}
		nonCriticalErrors = append(nonCriticalErrors, err)
	}
	return nil, nonCriticalErrors
}

package node

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/max-bytes/influxdb-line-protocol/pkg/config"
	"github.com/max-bytes/influxdb-line-protocol/pkg/general"
	"github.com/max-bytes/influxdb-line-protocol/pkg/lineprotocol"
	"github.com/max-bytes/influxdb-line-protocol/pkg/payload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const maxMessageSize = 16 << 20

// Node runs the codec once per incoming message. A failing message is reported and does not
// stop the next one.
type Node struct {
	codec   lineprotocol.Config
	forward bool
	outputs []Output
	log     *logrus.Logger
	metrics *metrics
}

// New builds a node from the codec options and forward_points of cfg. Counters are registered
// with reg unless it is nil.
func New(cfg config.Configuration, outputs []Output, logger *logrus.Logger, reg prometheus.Registerer) *Node {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Node{
		codec:   cfg.Config,
		forward: cfg.ForwardPoints,
		outputs: outputs,
		log:     logger,
		metrics: newMetrics(reg),
	}
}

// HandleMessage transforms one JSON payload and returns the transformed payload.
func (n *Node) HandleMessage(ctx context.Context, body []byte) ([]byte, error) {
	defer general.TimeTrack(time.Now(), "HandleMessage", n.log)

	item, err := payload.Decode(body)
	if err != nil {
		return n.fail(err)
	}

	out := lineprotocol.DispatchMany(item, n.codec)
	n.countItems(out)

	if n.forward && len(n.outputs) > 0 {
		points := collectPoints(item, out)
		if len(points) > 0 {
			n.metrics.forwarded.Add(float64(len(points)))
			criticalError, nonCriticalErrors := n.writeOutputs(ctx, general.SplitPointsByMeasurement(points))
			for _, nonCriticalError := range nonCriticalErrors {
				n.log.WithError(nonCriticalError).Warn("Non-critical error writing outputs")
			}
			if criticalError != nil {
				return n.fail(criticalError)
			}
		}
	}

	n.metrics.messages.WithLabelValues("ok").Inc()
	return payload.Encode(out), nil
}

func (n *Node) fail(err error) ([]byte, error) {
	n.metrics.messages.WithLabelValues("error").Inc()
	n.log.WithError(err).Errorf("Failed to handle message")
	return nil, err
}

func (n *Node) countItems(out lineprotocol.Item) {
	items := []lineprotocol.Item{out}
	if out.Kind == lineprotocol.ItemSequence {
		items = out.Sequence
	}
	for _, item := range items {
		switch item.Kind {
		case lineprotocol.ItemPoint:
			n.metrics.items.WithLabelValues("parsed").Inc()
		case lineprotocol.ItemText:
			n.metrics.items.WithLabelValues("formatted").Inc()
		default:
			n.metrics.items.WithLabelValues("passthrough").Inc()
		}
	}
}

// collectPoints returns the points on either side of the transformation, in message order.
func collectPoints(in, out lineprotocol.Item) []lineprotocol.Point {
	ins, outs := []lineprotocol.Item{in}, []lineprotocol.Item{out}
	if in.Kind == lineprotocol.ItemSequence {
		ins, outs = in.Sequence, out.Sequence
	}
	var points []lineprotocol.Point
	for i := range ins {
		switch {
		case ins[i].Kind == lineprotocol.ItemPoint && ins[i].Point != nil:
			points = append(points, *ins[i].Point)
		case outs[i].Kind == lineprotocol.ItemPoint && outs[i].Point != nil:
			points = append(points, *outs[i].Point)
		}
	}
	return points
}

// ServeHTTP handles POST requests carrying one JSON payload.
func (n *Node) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method is not supported.", http.StatusMethodNotAllowed)
		return
	}

	reader, err := Decompress(r.Header.Get("Content-Encoding"), r.Body)
	if err != nil {
		n.log.WithError(err).Error("Failed to read request body")
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	}
	defer reader.Close()

	buf, err := ioutil.ReadAll(io.LimitReader(reader, maxMessageSize+1))
	if err != nil {
		n.log.WithError(err).Error("Failed to read request body")
		http.Error(w, "An error ocurred while trying to read the request body!", http.StatusBadRequest)
		return
	}
	if len(buf) > maxMessageSize {
		n.log.Errorf("Request body exceeds %d bytes", maxMessageSize)
		http.Error(w, fmt.Sprintf("Request body exceeds %d bytes", maxMessageSize), http.StatusRequestEntityTooLarge)
		return
	}

	res, err := n.HandleMessage(r.Context(), buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(res)
}

// Run treats every line of in as one message and writes one line to out per handled message.
// Failed messages are logged and skipped.
func (n *Node) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxMessageSize)
	w := bufio.NewWriter(out)
	defer w.Flush()

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := n.HandleMessage(ctx, scanner.Bytes())
		if err != nil {
			continue
		}
		w.Write(res)
		w.WriteByte('\n')
	}
	return scanner.Err()
}

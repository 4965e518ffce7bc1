package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/max-bytes/influxdb-line-protocol/pkg/config"
	"github.com/max-bytes/influxdb-line-protocol/pkg/node"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	version    = "0.0.0-src"
	configFile = flag.String("config", "config.json", "Config file location")
	log        = logrus.New()
)

var cfg = config.Default()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.TraceLevel) // is overwritten by configuration below
}

func main() {

	log.Infof("line-protocol-node (Version: %s)", version)

	flag.Parse()

	log.Infof("Loading config from file: %s", *configFile)
	err := config.ReadConfigFromFile(*configFile, &cfg)
	if err != nil {
		log.Fatalf("Error opening config file: %s", err)
	}

	parsedLogLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error parsing loglevel in config file: %s", err)
	}
	log.SetLevel(parsedLogLevel)

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())

	outputs := node.OutputsFromConfig(cfg)
	if cfg.ForwardPoints {
		log.Infof("Forwarding points to %d output(s)", len(outputs))
	} else {
		log.Infof("Not forwarding points due to configuration")
	}
	n := node.New(cfg, outputs, log, registry)

	mux := http.NewServeMux()
	mux.Handle("/api/lineprotocol/v1/transform", n)
	if cfg.MetricsPath != "" {
		mux.Handle(cfg.MetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/api/health/check", healthCheckHandler)

	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: mux}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Infof("Starting server at port %d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting line-protocol-node: %s", err)
		}
	}()

	<-done
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Error shutting down server: %s", err)
	}
	log.Infof("Server stopped")
}

// GET /api/health/check
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method is not supported.", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

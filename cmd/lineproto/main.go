package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/max-bytes/influxdb-line-protocol/pkg/config"
	"github.com/max-bytes/influxdb-line-protocol/pkg/lineprotocol"
	"github.com/max-bytes/influxdb-line-protocol/pkg/node"
	"github.com/sirupsen/logrus"
)

var (
	configFile   = flag.String("config", "", "Config file location (optional)")
	addTimestamp = flag.Bool("add-timestamp", false, "Stamp points that carry no timestamp with the current time")
	defaultType  = flag.String("default-type", "", "Numeric type for fields without a type mapping (int or float)")
	logLevel     = flag.String("log-level", "", "Log level, overrides the config file")
	log          = logrus.New()
)

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	// stdout carries the transformed payloads
	log.SetOutput(os.Stderr)
}

func main() {
	flag.Parse()

	cfg := config.Default()
	cfg.LogLevel = "warning"
	if *configFile != "" {
		if err := config.ReadConfigFromFile(*configFile, &cfg); err != nil {
			log.Fatalf("Error opening config file: %s", err)
		}
	}
	if *addTimestamp {
		cfg.AddTimestamp = true
	}
	if *defaultType != "" {
		cfg.DefaultTypeMapping = lineprotocol.NumericKind(*defaultType)
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid -default-type: %s", err)
		}
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	parsedLogLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error parsing loglevel: %s", err)
	}
	log.SetLevel(parsedLogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n := node.New(cfg, node.OutputsFromConfig(cfg), log, nil)
	if err := n.Run(ctx, os.Stdin, os.Stdout); err != nil && err != context.Canceled {
		log.Fatalf("Error reading input: %s", err)
	}
}

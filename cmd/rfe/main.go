// Package main is the entry point for the rfe host binary: it loads a
// YAML config, wires the configured apps and connectors into an
// RfeInstance, and drives the scheduler loop at 10 ms until signaled
// to stop.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcweaver997/rfe/internal/apps/ds"
	"github.com/jcweaver997/rfe/internal/apps/example"
	"github.com/jcweaver997/rfe/internal/apps/hs"
	"github.com/jcweaver997/rfe/internal/apps/to"
	"github.com/jcweaver997/rfe/internal/buildinfo"
	"github.com/jcweaver997/rfe/internal/config"
	"github.com/jcweaver997/rfe/internal/connector"
	"github.com/jcweaver997/rfe/internal/dscatalog"
	"github.com/jcweaver997/rfe/internal/msg"
	"github.com/jcweaver997/rfe/internal/rfe"
	"github.com/jcweaver997/rfe/internal/rfetime"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if flag.NArg() == 0 {
		printUsage()
		return
	}

	switch flag.Arg(0) {
	case "serve":
		// Flags may also follow the subcommand: rfe serve -config <path>.
		flag.CommandLine.Parse(flag.Args()[1:])
		runServe(logger, *configPath)
	case "version":
		fmt.Println(buildinfo.String())
		for k, v := range buildinfo.BuildInfo() {
			fmt.Printf("  %-12s %s\n", k+":", v)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", flag.Arg(0))
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("rfe - cooperative bus scheduler for telemetry, commanding, and data storage")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve    Run the scheduler loop")
	fmt.Println("  version  Show version")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

func runServe(logger *slog.Logger, configPath string) {
	logger.Info("starting rfe", "version", buildinfo.Version, "commit", buildinfo.GitCommit, "built", buildinfo.BuildTime)

	cfgPath, err := config.FindConfig(configPath)
	if err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	if cfg.LogLevel != "" {
		level, err := config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			logger.Error("invalid log_level in config", "error", err)
			os.Exit(1)
		}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: config.ReplaceLogLevelNames,
		}))
	}

	logger.Info("config loaded", "path", cfgPath, "instance", cfg.Instance, "apps", len(cfg.Apps), "connectors", len(cfg.Connectors))

	inst, ok := msg.ParseInstance(cfg.Instance)
	if !ok {
		logger.Error("unknown instance", "instance", cfg.Instance)
		os.Exit(1)
	}

	driver := rfetime.NewHostDriver()
	sched := rfe.New(inst, driver, logger)

	connectors, wrapped, err := buildConnectors(cfg, logger)
	if err != nil {
		logger.Error("failed to build connectors", "error", err)
		os.Exit(1)
	}

	// A connector wrapped by an encrypting decorator is polled through
	// its wrapper, and the TO downlink is polled by the TO app; neither
	// may also be registered on the scheduler, or the two pollers would
	// race for the same inbound batches.
	var downlink connector.Connector
	for i, c := range connectors {
		if wrapped[i] {
			continue
		}
		if cfg.Connectors[i].Downlink {
			downlink = c
			continue
		}
		sched.AddConnector(c)
	}

	var catalog *dscatalog.Catalog
	if cfg.DS.CatalogPath != "" {
		catalog, err = dscatalog.Open(cfg.DS.CatalogPath)
		if err != nil {
			logger.Error("failed to open ds catalog", "path", cfg.DS.CatalogPath, "error", err)
			os.Exit(1)
		}
		logger.Info("ds catalog opened", "path", cfg.DS.CatalogPath)
	}

	dsSets, err := cfg.BuildDsTlmSets()
	if err != nil {
		logger.Error("failed to build ds telemetry sets", "error", err)
		os.Exit(1)
	}
	toSets, err := cfg.BuildToTlmSets()
	if err != nil {
		logger.Error("failed to build to telemetry sets", "error", err)
		os.Exit(1)
	}

	var dsApp *ds.App
	for _, ac := range cfg.Apps {
		var app rfe.App
		switch ac.Type {
		case "example":
			app = example.New(logger)
		case "ds":
			dsApp = ds.New(dsSets, cfg.DS.StartEnabled, catalog, logger)
			app = dsApp
		case "to":
			if downlink == nil {
				logger.Error("to app configured but no connector is marked downlink")
				os.Exit(1)
			}
			app = to.New(downlink, toSets, logger)
		case "hs":
			app = hs.New(hs.Config{
				CPUChecks:       cfg.HS.CPUChecks,
				MemChecks:       cfg.HS.MemChecks,
				FsChecks:        cfg.HS.FsChecks,
				TempChecks:      cfg.HS.TempChecks,
				WatchdogEnable:  cfg.HS.WatchdogEnable,
				WatchdogTimeout: cfg.HS.WatchdogTimeout,
			}, nil, nil, logger)
		default:
			logger.Error("unknown app type", "type", ac.Type)
			os.Exit(1)
		}

		if err := sched.AddApp(ac.Type, app); err != nil {
			logger.Error("failed to register app", "type", ac.Type, "error", err)
			os.Exit(1)
		}

		if ac.Rate != "" {
			hz, err := config.ParseRate(ac.Rate)
			if err != nil {
				logger.Error("invalid app rate", "type", ac.Type, "error", err)
				os.Exit(1)
			}
			if err := sched.SetAppRate(ac.Type, rfe.Rate(hz), 0, rfe.Rate(hz)); err != nil {
				logger.Error("failed to set app rate", "type", ac.Type, "error", err)
				os.Exit(1)
			}
		}
		logger.Info("app registered", "type", ac.Type, "rate", ac.Rate)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	logger.Info("scheduler running")
	for {
		select {
		case <-sigCh:
			logger.Info("shutdown signal received")
			if dsApp != nil {
				dsApp.CloseAll()
			}
			cancel()
			logger.Info("rfe stopped")
			return
		case <-ticker.C:
			sched.Run()
		case <-ctx.Done():
			return
		}
	}
}

// buildConnectors constructs every configured connector in order. An
// "encrypting" connector's Params["inner"] names the zero-based index,
// within this same list, of the connector it wraps — that connector
// must therefore appear earlier in cfg.Connectors. The returned wrapped
// set marks indices consumed as a decorator's inner transport.
func buildConnectors(cfg *config.Config, logger *slog.Logger) ([]connector.Connector, map[int]bool, error) {
	built := make([]connector.Connector, 0, len(cfg.Connectors))
	wrapped := make(map[int]bool)
	for i, cc := range cfg.Connectors {
		c, inner, err := buildConnector(cc, built, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connector %d (%s): %w", i, cc.Kind, err)
		}
		if inner >= 0 {
			if cfg.Connectors[inner].Downlink {
				return nil, nil, fmt.Errorf("connector %d (%s): inner connector %d is marked downlink, mark the decorator instead", i, cc.Kind, inner)
			}
			wrapped[inner] = true
		}
		built = append(built, c)
	}
	return built, wrapped, nil
}

// buildConnector constructs one connector. For the encrypting kind the
// second return value is the index of the wrapped inner connector;
// otherwise it is -1.
func buildConnector(cc config.ConnectorConfig, prior []connector.Connector, logger *slog.Logger) (connector.Connector, int, error) {
	switch cc.Kind {
	case "mem":
		a, _ := connector.NewMemConnectorPair(64)
		return a, -1, nil
	case "udp":
		c, err := connector.NewUDPConnector(cc.Params["local"], cc.Params["remote"], logger)
		return c, -1, err
	case "tcp":
		return connector.NewTCPConnector(cc.Params["address"], logger), -1, nil
	case "serial":
		baud := 115200
		if b := cc.Params["baud"]; b != "" {
			if _, err := fmt.Sscanf(b, "%d", &baud); err != nil {
				return nil, -1, fmt.Errorf("invalid baud %q: %w", b, err)
			}
		}
		c, err := connector.NewSerialConnector(cc.Params["port"], baud, logger)
		return c, -1, err
	case "mqtt":
		c, err := connector.NewMQTTConnector(context.Background(), connector.MQTTConfig{
			Broker:         cc.Params["broker"],
			ClientID:       cc.Params["client_id"],
			Username:       cc.Params["username"],
			Password:       cc.Params["password"],
			PublishTopic:   cc.Params["publish_topic"],
			SubscribeTopic: cc.Params["subscribe_topic"],
		}, logger)
		return c, -1, err
	case "websocket":
		return connector.NewWebSocketConnector(cc.Params["url"], logger), -1, nil
	case "encrypting":
		idx := -1
		if _, err := fmt.Sscanf(cc.Params["inner"], "%d", &idx); err != nil {
			return nil, -1, fmt.Errorf("invalid inner index %q: %w", cc.Params["inner"], err)
		}
		if idx < 0 || idx >= len(prior) {
			return nil, -1, fmt.Errorf("inner index %d out of range (must refer to an earlier connector)", idx)
		}
		key, err := hex.DecodeString(cc.Params["key"])
		if err != nil {
			return nil, -1, fmt.Errorf("invalid hex key: %w", err)
		}
		c, err := connector.NewEncryptingConnector(prior[idx], key, logger)
		return c, idx, err
	default:
		return nil, -1, fmt.Errorf("unknown connector kind %q", cc.Kind)
	}
}

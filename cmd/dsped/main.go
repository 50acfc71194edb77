package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
	"github.com/norasector/dsped/pkg/dsp/viz"
	"github.com/norasector/dsped/pkg/toolbox"
	"github.com/norasector/dsped/pkg/toolbox/config"
	"golang.org/x/sync/errgroup"
)

const defaultConfigFile = "dsped.yaml"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)

	configFile := pflag.StringP("config", "c", defaultConfigFile, "YAML config file")
	debug := pflag.BoolP("debug", "d", false, "Debug logging")
	outDir := pflag.StringP("out", "o", "", "Output directory, overrides output_dir")
	serve := pflag.BoolP("serve", "s", false, "Keep serving plots after the demo finishes")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dsped [flags] <demo>\n\nDemos: %s\n\nFlags:\n", strings.Join(toolbox.DemoNames(), ", "))
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(1)
	}
	demoName := pflag.Arg(0)

	opts, err := config.Load(*configFile)
	switch {
	case errors.Is(err, os.ErrNotExist) && !pflag.CommandLine.Changed("config"):
		log.Info().Str("config", *configFile).Msg("no config file, using defaults")
		opts = config.Default()
	case err != nil:
		log.Fatal().Err(err).Str("config", *configFile).Msg("error loading config file")
	}

	level, err := zerolog.ParseLevel(opts.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("log_level", opts.LogLevel).Msg("invalid log level")
	}
	if *debug {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Logger.Level(level)

	if err := run(context.Background(), opts, demoName, *outDir, *serve); err != nil {
		log.Fatal().Err(err).Msg("exited program")
	}
}

// newWriteAPI connects to influx. The returned func flushes buffered points
// and closes the client.
var newWriteAPI = func(cfg config.InfluxDB) (api.WriteAPI, func()) {
	client := influxdb2.NewClient(cfg.Host, "")
	writeAPI := client.WriteAPI(cfg.Organization, cfg.Bucket)
	return writeAPI, func() {
		writeAPI.Flush()
		client.Close()
	}
}

// run builds and runs one demo. Metrics are flushed before it returns, error
// or not.
func run(parent context.Context, opts config.Config, demoName, outDir string, serve bool) error {
	toolboxOpts := []toolbox.ToolboxOption{toolbox.WithLogger(log.Logger)}
	if outDir != "" {
		toolboxOpts = append(toolboxOpts, toolbox.WithOutputDir(outDir))
	}

	if opts.InfluxDB.Host != "" {
		writeAPI, closeInflux := newWriteAPI(opts.InfluxDB)
		defer closeInflux()
		toolboxOpts = append(toolboxOpts, toolbox.WithInfluxDB(writeAPI))
	}

	var vizServer *viz.Server
	if opts.VizServer.Port > 0 {
		vizServer = viz.NewServer(opts.VizServer.Port, opts.VizServer.UpdateInterval, viz.WithServerLogger(log.Logger))
		toolboxOpts = append(toolboxOpts, toolbox.WithImageServer(vizServer))
	} else if serve {
		return errors.New("--serve needs viz_server.port in the config")
	}

	demo, err := toolbox.New(opts, demoName, toolboxOpts...)
	if err != nil {
		return fmt.Errorf("creating demo %s: %w", demoName, err)
	}

	eg, ctx := errgroup.WithContext(parent)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	eg.Go(func() error {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		if vizServer != nil {
			return vizServer.Stop(context.Background())
		}
		return nil
	})

	if vizServer != nil {
		eg.Go(func() error {
			return vizServer.Run(ctx)
		})
	}

	eg.Go(func() error {
		log.Info().Str("demo", demo.Name()).Msg("running demo")
		if err := demo.Run(ctx); err != nil {
			return err
		}
		log.Info().Str("demo", demo.Name()).Msg("demo finished")
		if !serve {
			cancel()
		}
		return nil
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

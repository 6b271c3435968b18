// Command nexus runs the stream dispatch and pipeline demonstrations and can
// optionally serve the nexus HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"unicode/utf8"

	"github.com/spf13/pflag"

	"github.com/kbukum/codenexus/component"
	"github.com/kbukum/codenexus/config"
	"github.com/kbukum/codenexus/logger"
	"github.com/kbukum/codenexus/observability"
	"github.com/kbukum/codenexus/pipeline"
	"github.com/kbukum/codenexus/server"
	"github.com/kbukum/codenexus/stream"
	"github.com/kbukum/codenexus/version"
)

const serviceName = "nexus"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "nexus:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to config.yml")
	skipDemo := flags.Bool("skip-demo", false, "do not run the demonstrations")
	showVersion := flags.Bool("version", false, "print version information and exit")
	flags.Bool("http.enabled", false, "serve the HTTP API until interrupted")
	flags.Int("http.port", 8080, "HTTP listen port")
	flags.Int("manager.workers", 1, "concurrent adapters in ProcessData")
	flags.Int("dispatcher.workers", 1, "concurrent handlers in ProcessAll")
	flags.String("pipeline.csv_delimiter", ",", "CSV adapter field delimiter")
	flags.String("logging.level", "info", "log level")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Println(version.Get().String())
		return nil
	}

	opts := []config.LoaderOption{config.WithFlags(flags)}
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	var cfg config.Config
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		return err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Init(cfg.Logging)
	logger.RegisterDefaults("pipeline", "manager", "stream", "processor")
	log := logger.GetGlobalLogger()
	log.Debug("component loggers registered", logger.Fields("names", logger.Names()))
	log.Info("starting", logger.Fields("banner", version.Banner(cfg.Name), "environment", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := initTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTelemetry()

	manager, dispatcher := build(cfg)

	registry := component.NewRegistry()
	for _, c := range []component.Component{manager, dispatcher} {
		if err := registry.Register(c); err != nil {
			return err
		}
	}
	if cfg.HTTP.Enabled {
		srv := server.New(cfg.HTTP, server.Deps{
			ServiceName: cfg.Name,
			Manager:     manager,
			Dispatcher:  dispatcher,
			Health:      registry.HealthAll,
		}, log)
		if err := registry.Register(srv); err != nil {
			return err
		}
	}

	if err := registry.StartAll(ctx); err != nil {
		_ = registry.StopAll(context.Background())
		return err
	}
	for _, d := range registry.Describe() {
		log.Info("component ready", logger.Fields(logger.FieldComponent, d.Name, "type", d.Type, "details", d.Details))
	}

	if !*skipDemo {
		runDemos(ctx, os.Stdout, manager, dispatcher)
	}

	if cfg.HTTP.Enabled {
		log.Info("serving until interrupted")
		<-ctx.Done()
	}
	return registry.StopAll(context.Background())
}

// build wires the demonstration adapters and handlers.
func build(cfg config.Config) (*pipeline.Manager, *stream.Dispatcher) {
	delim, _ := utf8.DecodeRuneInString(cfg.Pipeline.CSVDelimiter)

	manager := pipeline.NewManager(pipeline.WithWorkers(cfg.Manager.Workers))
	manager.AddPipeline(pipeline.NewJSONAdapter("JSON_001"))
	manager.AddPipeline(pipeline.NewCSVAdapter("CSV_001", delim))
	manager.AddPipeline(pipeline.NewStreamAdapter("STREAM_001"))

	dispatcher := stream.NewDispatcher(stream.WithWorkers(cfg.Dispatcher.Workers))
	dispatcher.AddHandler(stream.NewSensorHandler("SENSOR_001"))
	dispatcher.AddHandler(stream.NewTransactionHandler("TRANS_001"))
	dispatcher.AddHandler(stream.NewEventHandler("EVENT_001"))
	return manager, dispatcher
}

func initTelemetry(ctx context.Context, cfg config.Config) (func(), error) {
	if !cfg.Observability.Enabled {
		return func() {}, nil
	}
	oc := cfg.Observability

	tc := observability.DefaultTracerConfig(cfg.Name)
	tc.ServiceVersion, tc.Environment = version.Get().Version, cfg.Environment
	tc.Endpoint, tc.Insecure, tc.SampleRate = oc.Endpoint, oc.Insecure, oc.SampleRate
	tp, err := observability.InitTracer(ctx, tc)
	if err != nil {
		return nil, err
	}

	mc := observability.DefaultMeterConfig(cfg.Name)
	mc.ServiceVersion, mc.Environment = tc.ServiceVersion, cfg.Environment
	mc.Endpoint, mc.Insecure, mc.Interval = oc.Endpoint, oc.Insecure, oc.MetricInterval
	mp, err := observability.InitMeter(ctx, &mc)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	return func() {
		shutdownCtx := context.Background()
		if err := mp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("meter shutdown failed", logger.ErrorFields("shutdown", err))
		}
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}, nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/avi3tal/blueprint/internal/api"
	"github.com/avi3tal/blueprint/internal/config"
	"github.com/avi3tal/blueprint/internal/graph"
	"github.com/avi3tal/blueprint/internal/logger"
	"github.com/avi3tal/blueprint/internal/projects"
	"github.com/avi3tal/blueprint/internal/telemetry"
	"github.com/avi3tal/blueprint/pkg/blueprint"
)

const demoProjectID = "demo"

func main() {
	var (
		configFile = pflag.StringP("config", "c", "", "path to a YAML config file")
		envFile    = pflag.String("env-file", ".env", "path to a .env file")
		addr       = pflag.String("addr", "", "listen address, overrides server.addr")
		runFile    = pflag.String("run", "", "run a graph document (JSON or YAML) once and exit")
		start      = pflag.String("start", "", "start node id for --run, defaults to the ON_START node")
		vars       = pflag.String("vars", "{}", "initial variables for --run as a JSON object")
	)
	pflag.Parse()

	opts := []config.LoaderOption{config.WithEnvFile(*envFile)}
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "blueprintd: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	log := logger.New(cfg.Log)

	if err := run(cfg, log, *runFile, *start, *vars); err != nil {
		log.Error("blueprintd failed", logger.Fields(logger.FieldError, err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger, runFile, start, vars string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Warn("telemetry shutdown", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	app, err := newApp(cfg, log, providers)
	if err != nil {
		return err
	}

	if runFile != "" {
		return runOnce(ctx, app, runFile, start, vars)
	}
	return serve(ctx, app, cfg, log)
}

func newApp(cfg *config.Config, log *logger.Logger, providers *telemetry.Providers) (*blueprint.App, error) {
	var store projects.Store = projects.NewMemoryStore()
	if cfg.Store.Driver == config.DriverFile {
		fs, err := projects.NewFileStore(cfg.Store.Dir)
		if err != nil {
			return nil, err
		}
		store = fs
	}

	return blueprint.NewApp(
		blueprint.WithProjectStore(store),
		blueprint.WithLogger(log),
		blueprint.WithPassConfig(cfg.Engine.PassConfig()),
		blueprint.WithTracerProvider(providers.TracerProvider),
		blueprint.WithMeterProvider(providers.MeterProvider),
	)
}

func serve(ctx context.Context, app *blueprint.App, cfg *config.Config, log *logger.Logger) error {
	if _, err := app.SeedDemo(ctx, demoProjectID); err != nil {
		return fmt.Errorf("seed demo project: %w", err)
	}

	srv := api.New(app, cfg.Server.Addr, log)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return srv.Stop(context.Background())
}

// runOnce runs a graph document and prints the console output and node
// statuses.
func runOnce(ctx context.Context, app *blueprint.App, path, start, rawVars string) error {
	doc, err := graph.LoadDocument(path)
	if err != nil {
		return err
	}
	g, err := app.LoadGraph(path, doc)
	if err != nil {
		return err
	}

	initial := map[string]any{}
	if err := json.Unmarshal([]byte(rawVars), &initial); err != nil {
		return fmt.Errorf("--vars: %w", err)
	}

	res, err := app.Run(ctx, g, start, blueprint.NewVariables(initial))
	if res != nil {
		for _, line := range res.Console {
			fmt.Printf("[%s] %v\n", line.NodeID, line.Value)
		}
		for _, n := range g.Nodes() {
			fmt.Printf("%-20s %s\n", n.ID, res.Nodes[n.ID].Status)
		}
	}
	if err != nil {
		return err
	}
	return res.Err()
}

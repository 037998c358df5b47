package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/starford/modeler/internal"
	"github.com/starford/modeler/internal/mcpserver"
	"github.com/starford/modeler/internal/metrics"
	"github.com/starford/modeler/internal/modeler"
	"github.com/starford/modeler/internal/storage"
	"github.com/starford/modeler/internal/watch"
	pkgconfig "github.com/starford/modeler/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// openService opens the configured store for one-shot commands. Logs go to
// stderr so stdout stays free for command output.
func openService(cmd *cli.Command) (*modeler.Service, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	return openServiceWith(cfg)
}

func openServiceWith(cfg *internal.Config) (*modeler.Service, func(), error) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.App.LogLevel}))
	slog.SetDefault(logger)
	return internal.Open(cfg, metrics.New(nil), logger)
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(_ context.Context, cmd *cli.Command) error {
	svc, closeStore, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeStore()
	return mcpserver.New(svc).ServeStdio()
}

func apply(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: apply <request.yaml>")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var req modeler.BuildRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	svc, closeStore, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := svc.BuildModel(ctx, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func listGroups(ctx context.Context, cmd *cli.Command) error {
	svc, closeStore, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	items, err := svc.ListGroups(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSHARED\tANNOTATIONS\tDESCRIPTION")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%t\t%d\t%s\n", it.Name, it.SharedDimension, it.Annotations, it.Description)
	}
	return tw.Flush()
}

func export(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dir := cmd.String("dir")
	if dir == "" {
		dir = cfg.Annotations.Dir
	}
	if dir == "" {
		return fmt.Errorf("no annotations dir configured, pass --dir")
	}
	d, err := storage.NewDir(dir)
	if err != nil {
		return err
	}

	svc, closeStore, err := openServiceWith(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	n, err := watch.Export(ctx, d, svc, slog.Default())
	if err != nil {
		return err
	}
	fmt.Printf("%d group files written to %s\n", n, d.Root())
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "modeler",
		Usage:  "Annotation-driven modeling of fact tables into cubes with shared dimensions",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and the annotation directory watcher",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve modeler tools over MCP on stdio",
				Action: serveMCP,
			},
			{
				Name:      "apply",
				Usage:     "Build a model from a YAML build request and print it as JSON",
				ArgsUsage: "<request.yaml>",
				Action:    apply,
			},
			{
				Name:   "groups",
				Usage:  "List stored annotation groups",
				Action: listGroups,
			},
			{
				Name:  "export",
				Usage: "Write stored annotation groups to group files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Target directory (defaults to annotations.dir)",
					},
				},
				Action: export,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/folio/internal"
	"github.com/starford/folio/internal/semantic"
	"github.com/starford/folio/internal/siteservice"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/view"
	pkgconfig "github.com/starford/folio/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if dir := cmd.String("content"); dir != "" {
		cfg.Content.Dir = dir
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithVersion(version),
		internal.WithLogOutput(os.Stderr),
	)
}

func printAST(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	if file == "" {
		return fmt.Errorf("ast: file argument is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("ast: %w", err)
	}
	svc := siteservice.NewService(view.NewSite(nil), nil,
		semantic.NewParser(semantic.WithHardWraps(cfg.Render.HardWraps)))
	ast, err := svc.ParseMarkdown(ctx, string(data))
	if err != nil {
		return fmt.Errorf("ast: %w", err)
	}
	enc := json.NewEncoder(cmd.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(ast)
}

func render(ctx context.Context, cmd *cli.Command) error {
	mode, err := view.ParseMode(cmd.String("mode"))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := internal.NewService(ctx, cfg, false)
	if err != nil {
		return err
	}
	doc, err := svc.Document(ctx, mode)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.Root().Writer, doc)
	return err
}

func raw(ctx context.Context, cmd *cli.Command) error {
	slug := cmd.Args().First()
	if slug == "" {
		return fmt.Errorf("raw: slug argument is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := internal.NewService(ctx, cfg, false)
	if err != nil {
		return err
	}
	frag, err := svc.RenderSection(ctx, strings.TrimSuffix(slug, ".md"), view.Raw)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, frag)
	return err
}

func reconstructCmd(ctx context.Context, cmd *cli.Command) error {
	file := cmd.Args().First()
	if file == "" {
		return fmt.Errorf("reconstruct: html file argument is required")
	}
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("reconstruct: %w", err)
	}
	defer f.Close()

	svc := siteservice.NewService(view.NewSite(nil), nil, nil)
	sections, err := svc.Reconstruct(ctx, f)
	if err != nil {
		return err
	}
	if len(sections) == 0 {
		return fmt.Errorf("reconstruct: no sections found in %s", file)
	}

	out := cmd.Root().Writer
	if dir := cmd.String("out"); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("reconstruct: %w", err)
		}
		store, err := storage.NewFS(dir)
		if err != nil {
			return fmt.Errorf("reconstruct: %w", err)
		}
		if err := siteservice.Save(ctx, store, sections); err != nil {
			return err
		}
		for _, s := range sections {
			fmt.Fprintf(out, "wrote %s.md\n", s.Slug)
		}
		return nil
	}

	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "<!-- %s.md -->\n%s\n", s.Slug, s.RawMarkdown)
	}
	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "folio",
		Usage:   "Markdown portfolio pipeline: render sections to HTML and recover them again",
		Version: version,
		Writer:  os.Stdout,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "content",
				Usage:   "Content directory (overrides content.dir)",
				Sources: cli.EnvVars("FOLIO_CONTENT_DIR"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the preview server",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools on stdio",
				Action: serveMCP,
			},
			{
				Name:      "ast",
				Usage:     "Print the semantic AST of a section file",
				ArgsUsage: "<file>",
				Action:    printAST,
			},
			{
				Name:  "render",
				Usage: "Print the site document for a view mode",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "View mode: page, reader, raw or source",
						Value:   string(view.DefaultMode),
					},
				},
				Action: render,
			},
			{
				Name:      "raw",
				Usage:     "Print a section's highlighted raw markdown as HTML",
				ArgsUsage: "<slug>",
				Action:    raw,
			},
			{
				Name:      "reconstruct",
				Usage:     "Recover section markdown from rendered HTML",
				ArgsUsage: "<html-file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Write <slug>.md files to this directory instead of printing",
					},
				},
				Action: reconstructCmd,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

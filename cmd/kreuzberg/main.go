package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/kreuzberg-go/kreuzberg"
	"github.com/kreuzberg-go/kreuzberg/internal/config"
	"github.com/kreuzberg-go/kreuzberg/internal/version"
)

var Version = version.Version

// loadConfigWithOverrides loads configuration and applies CLI flag
// overrides on top of it.
func loadConfigWithOverrides(c *cli.Context) (kreuzberg.ExtractionConfig, error) {
	configPath := c.String("config")
	if configPath == "" {
		if root := c.String("root"); root != "" {
			configPath = config.FindProjectConfig(root)
		} else {
			configPath = config.FindProjectConfig(".")
		}
	}

	var cfg kreuzberg.ExtractionConfig
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return kreuzberg.ExtractionConfig{}, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg = kreuzberg.DefaultConfig()
	}

	if n := c.Int("max-concurrent"); n > 0 {
		cfg.MaxConcurrentExtractions = n
	}
	return cfg, nil
}

func main() {
	app := &cli.App{
		Name:                   "kreuzberg",
		Usage:                  "Extract structured text from documents",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (defaults to .kreuzberg.kdl or .kreuzberg.toml in --root)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Directory to look for a config file in",
				Value:   ".",
			},
			&cli.IntFlag{
				Name:  "max-concurrent",
				Usage: "Override max_concurrent_extractions",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "Extract a single file and print its content",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mime",
						Usage: "Override detected MIME type",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the full ExtractionResult as JSON",
					},
				},
				Action: extractCommand,
			},
			{
				Name:      "batch",
				Usage:     "Extract multiple files concurrently",
				ArgsUsage: "<path> [path...]",
				Action:    batchCommand,
			},
			{
				Name:  "plugins",
				Usage: "List registered plugins per registry",
				Action: func(c *cli.Context) error {
					e, err := kreuzberg.New()
					if err != nil {
						return err
					}
					fmt.Printf("extractors (%d): %v\n", e.Extractors.Count(), e.Extractors.Names())
					fmt.Printf("ocr backends (%d): %v\n", e.OcrBackends.Count(), e.OcrBackends.Names())
					fmt.Printf("postprocessors (%d): %v\n", e.PostProcessors.Count(), e.PostProcessors.Names())
					fmt.Printf("validators (%d): %v\n", e.Validators.Count(), e.Validators.Names())
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "kreuzberg:", err)
		os.Exit(1)
	}
}

func extractCommand(c *cli.Context) error {
	path := c.Args().Get(0)
	if path == "" {
		return fmt.Errorf("extract requires a file path")
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	e, err := kreuzberg.New()
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	result, err := e.ExtractFileSync(context.Background(), absPath, c.String("mime"), cfg)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Println(result.Content)
	return nil
}

func batchCommand(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("batch requires at least one file path")
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	e, err := kreuzberg.New()
	if err != nil {
		return err
	}

	results, err := e.BatchExtractFiles(context.Background(), paths, cfg)
	if err != nil {
		return err
	}

	for i, result := range results {
		fmt.Printf("=== %s ===\n%s\n", paths[i], result.Content)
	}
	return nil
}

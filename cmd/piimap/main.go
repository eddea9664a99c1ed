// Command piimap runs the PII detection pipeline over text files, or serves
// it as an MCP server with -serve-mcp.
package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/scrubworks/piimap/internal/cache"
	"github.com/scrubworks/piimap/internal/config"
	"github.com/scrubworks/piimap/internal/document"
	"github.com/scrubworks/piimap/internal/export"
	"github.com/scrubworks/piimap/internal/logger"
	"github.com/scrubworks/piimap/internal/mcptools"
	"github.com/scrubworks/piimap/internal/oracle"
	"github.com/scrubworks/piimap/internal/pipeline"
	"github.com/scrubworks/piimap/internal/store"
)

// cliFlags holds command-line options.
type cliFlags struct {
	Output   string
	ServeMCP bool
	Verbose  bool
	Version  bool
}

// version is set at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("piimap", flag.ContinueOnError)
	fs.StringVar(&flags.Output, "output", "-", "path for the JSON report (\"-\" for stdout)")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "serve the pipeline as an MCP server on stdio")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable debug logging")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: piimap [flags] file...\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	cfg := config.Load()
	if flags.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New("piimap", cfg.LogLevel)

	classifier, closeCache, err := buildClassifier(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	p, err := pipeline.New(classifier, pipeline.Options{
		ChunkSize:               cfg.ChunkSize,
		ChunkOverlap:            cfg.ChunkOverlap,
		RepromptingEnabled:      cfg.RepromptingEnabled,
		MaxRounds:               cfg.MaxRounds,
		MaxConcurrentDetections: cfg.MaxConcurrentDetections,
		TaskTimeout:             cfg.OracleTimeout,
		LogLevel:                cfg.LogLevel,
	})
	if err != nil {
		return err
	}
	defer p.Close()

	if flags.Verbose {
		// Drained until Close shuts the reporter down.
		go func() {
			for ev := range p.Progress() {
				fmt.Fprintln(os.Stderr, pipeline.FormatProgress(ev))
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if flags.ServeMCP {
		log.Info("serve_mcp", "serving detection tools on stdio")
		return mcptools.RunStdio(ctx, mcptools.NewServer(p, pipelineOptions(cfg)))
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("no input files")
	}

	descs, err := readDescriptors(fs.Args())
	if err != nil {
		return err
	}

	res, err := p.Run(ctx, descs)
	if err != nil {
		return err
	}

	if err := persist(ctx, cfg, log, res); err != nil {
		return err
	}

	return export.WriteFile(flags.Output, export.Build(res))
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		ChunkSize:               cfg.ChunkSize,
		ChunkOverlap:            cfg.ChunkOverlap,
		RepromptingEnabled:      cfg.RepromptingEnabled,
		MaxRounds:               cfg.MaxRounds,
		MaxConcurrentDetections: cfg.MaxConcurrentDetections,
		TaskTimeout:             cfg.OracleTimeout,
		LogLevel:                cfg.LogLevel,
	}
}

// buildClassifier wires the HTTP oracle client, optionally wrapped with the
// classify cache. The returned func closes the cache store.
func buildClassifier(cfg *config.Config) (oracle.Classifier, func(), error) {
	var classifier oracle.Classifier = oracle.NewClient(oracle.ClientConfig{
		BaseURL:           cfg.OracleBaseURL,
		Model:             cfg.OracleModel,
		APIKey:            cfg.OracleAPIKey,
		Timeout:           cfg.OracleTimeout,
		RequestsPerSecond: cfg.OracleRateLimit,
		LogLevel:          cfg.LogLevel,
	})

	if !cfg.CacheEnabled {
		return classifier, func() {}, nil
	}

	var (
		cstore cache.Store
		err    error
	)
	if cfg.CachePath != "" {
		cstore, err = cache.NewBolt(cfg.CachePath)
		if err != nil {
			return nil, nil, err
		}
	} else {
		cstore = cache.NewMemory()
	}

	return cache.Wrap(classifier, cstore), func() { _ = cstore.Close() }, nil
}

// readDescriptors loads each input file as one document descriptor.
func readDescriptors(paths []string) ([]document.Descriptor, error) {
	descs := make([]document.Descriptor, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		name := filepath.Base(path)
		descs = append(descs, document.Descriptor{
			ID:       name,
			Filename: name,
			MimeType: mime.TypeByExtension(filepath.Ext(name)),
			Content:  string(data),
		})
	}
	return descs, nil
}

// persist writes final detections to the audit store when one is configured.
func persist(ctx context.Context, cfg *config.Config, log *logger.Logger, res *pipeline.RunResult) error {
	if !cfg.Database.Enabled {
		return nil
	}

	db, err := store.NewPostgres(store.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	for _, r := range res.Results {
		if len(r.PII) == 0 {
			continue
		}
		if err := db.SaveDetections(ctx, res.RunID, r.ID, r.PII); err != nil {
			return err
		}
	}

	log.Infof("persist", "run=%s stored detections for %d documents", res.RunID, len(res.Results))
	return nil
}

// Package main is the Kontrakt CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/skriv/kontrakt/internal/batch"
	"github.com/skriv/kontrakt/internal/cli"
	"github.com/skriv/kontrakt/internal/config"
	"github.com/skriv/kontrakt/internal/extract"
	"github.com/skriv/kontrakt/internal/keyword"
	"github.com/skriv/kontrakt/internal/oracle"
	"github.com/skriv/kontrakt/internal/pipeline"
	"github.com/skriv/kontrakt/internal/risk"
	"github.com/skriv/kontrakt/internal/riskcache"
	"github.com/skriv/kontrakt/internal/section"
	"github.com/skriv/kontrakt/internal/server"
	"github.com/skriv/kontrakt/internal/storage"
	"github.com/skriv/kontrakt/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kontrakt/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "serve":
		runServe()
	case "parse":
		runParse()
	case "batch":
		runBatch()
	case "risk":
		runRisk()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kontrakt version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(
		components.Parser,
		components.Analyzer,
		components.Storage,
		components.Clauses,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runParse() {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	save := fs.Bool("save", false, "also persist the parsed contract to storage")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kontrakt parse [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	text, err := extract.NewExtractor().Extract(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Text extraction failed: %v\n", err)
		os.Exit(1)
	}

	doc, err := components.Parser.Parse(context.Background(), text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Parsing failed: %v\n", err)
		os.Exit(1)
	}

	if *save {
		rec := &storage.ContractRecord{ID: doc.ID, Name: filepath.Base(path), Document: doc}
		if err := components.Storage.SaveContract(context.Background(), rec); err != nil {
			fmt.Fprintf(os.Stderr, "Save failed: %v\n", err)
			os.Exit(1)
		}
		if components.Clauses != nil {
			_ = components.Clauses.IndexContract(context.Background(), doc.ID, keyword.ClausesFromDocument(doc))
		}
	}

	if err := cli.WriteDocument(os.Stdout, doc, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runBatch() {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	inputDir := fs.String("input", "", "input directory (default from config)")
	outputDir := fs.String("output", "", "output directory (default from config)")
	watch := fs.Bool("watch", false, "keep watching the input directory for new files")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	in := cfg.Batch.InputDir
	if *inputDir != "" {
		in = *inputDir
	}
	out := cfg.Batch.OutputDir
	if *outputDir != "" {
		out = *outputDir
	}
	if in == "" || out == "" {
		fmt.Println("Input and output directories are required (flags or config batch section)")
		os.Exit(1)
	}

	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	runner := batch.NewRunner(components.Parser, out,
		batch.WithStorage(components.Storage),
		batch.WithClauseIndex(components.Clauses),
		batch.WithDelay(cfg.Batch.Delay()),
		batch.WithExtensions(cfg.Batch.Extensions),
		batch.WithLogger(logger),
	)

	sum, err := runner.Run(context.Background(), in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Batch run failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Processed %d file(s), %d failed, %d skipped\n", sum.Processed, sum.Failed, sum.Skipped)

	if !*watch && !cfg.Batch.Watch {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := batch.NewWatcher(in, cfg.Batch.Extensions, func(path string) {
		if err := runner.ProcessFile(context.Background(), path); err != nil {
			logger.Warn("batch watch: file failed", zap.String("path", path), zap.Error(err))
		}
	}, batch.WithWatcherLogger(logger))
	if err := w.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer w.Stop()

	fmt.Printf("Watching %s for new files (Ctrl+C to stop)\n", in)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
}

func runRisk() {
	fs := flag.NewFlagSet("risk", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	category := fs.String("category", "", "clause category hint")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kontrakt risk [flags] <clause-file-or-text>")
		os.Exit(1)
	}
	arg := strings.Join(fs.Args(), " ")

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	clause := arg
	if info, statErr := os.Stat(arg); statErr == nil && !info.IsDir() {
		text, exErr := extract.NewExtractor().Extract(arg)
		if exErr != nil {
			fmt.Fprintf(os.Stderr, "Text extraction failed: %v\n", exErr)
			os.Exit(1)
		}
		clause = text
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	analysis, err := components.Analyzer.Analyze(context.Background(), clause, "", *category, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Risk analysis failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteRiskAnalysis(os.Stdout, analysis, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Contracts      int64                  `json:"contracts"`
	Clauses        uint64                 `json:"clauses"`
	DiskUsageBytes *int64                 `json:"disk_usage_bytes,omitempty"`
	Config         map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		count, err := components.Storage.CountContracts(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count contracts failed: %v\n", err)
			os.Exit(1)
		}
		status.Contracts = count
		if components.Clauses != nil {
			if n, cErr := components.Clauses.DocCount(); cErr == nil {
				status.Clauses = n
			}
		}
		status.Config = map[string]interface{}{
			"storage_backend": cfg.Storage.Backend,
			"oracle_model":    cfg.Oracle.Model,
			"database_path":   cfg.Storage.DatabasePath,
		}
		diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.ContractsDir, cfg.Storage.BleveIndexPath)
		if err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("contracts:         %d   # stored contracts\n", status.Contracts)
		fmt.Printf("clauses:           %d   # indexed clauses\n", status.Clauses)
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:  %d   # storage + index on disk\n", *status.DiskUsageBytes)
		}
		if len(status.Config) > 0 {
			fmt.Println()
			fmt.Println("# configuration")
			for _, key := range []string{"storage_backend", "oracle_model", "database_path", "bleve_index_path"} {
				if v, ok := status.Config[key]; ok {
					fmt.Printf("%-18s %v\n", key+":", v)
				}
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Storage  storage.Storage
	Clauses  keyword.ClauseIndex
	Parser   *pipeline.Parser
	Analyzer *risk.Analyzer
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Clauses != nil {
		_ = c.Clauses.Close()
	}
}

// sectionTablesFromConfig builds facet keyword tables from the config
// overrides, falling back to the defaults for facets not overridden.
func sectionTablesFromConfig(cfg *config.Config) section.Tables {
	tables := section.DefaultTables()
	for name, keywords := range cfg.Parse.SectionKeywords {
		tables[section.Facet(name)] = keywords
	}
	return tables
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	var store storage.Storage
	var err error
	switch cfg.Storage.Backend {
	case "file":
		store, err = storage.NewFileStorage(cfg.Storage.ContractsDir)
	default:
		store, err = storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	clauses, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize clause index: %w", err)
	}

	clientCfg := oracle.DefaultClientConfig(cfg.Oracle.APIKey)
	clientCfg.BaseURL = cfg.Oracle.BaseURL
	clientCfg.Model = cfg.Oracle.Model
	if cfg.Oracle.Temperature > 0 {
		clientCfg.Temperature = cfg.Oracle.Temperature
	}
	clientCfg.MaxTokens = cfg.Oracle.MaxTokens
	clientCfg.Timeout = cfg.Oracle.Timeout()
	orc := oracle.NewClient(clientCfg)

	parserOpts := []pipeline.ParserOption{
		pipeline.WithMaxTextBytes(cfg.Parse.MaxTextBytes),
		pipeline.WithFacetTables(sectionTablesFromConfig(cfg)),
	}
	if debug && logger != nil {
		parserOpts = append(parserOpts, pipeline.WithLogger(logger))
	}
	parser := pipeline.NewParser(orc, parserOpts...)

	analyzerOpts := []risk.AnalyzerOption{risk.WithTTL(cfg.Risk.TTL())}
	if debug && logger != nil {
		analyzerOpts = append(analyzerOpts, risk.WithLogger(logger))
	}
	analyzer := risk.NewAnalyzer(orc, riskcache.New(), analyzerOpts...)

	return &Components{
		Storage:  store,
		Clauses:  clauses,
		Parser:   parser,
		Analyzer: analyzer,
	}, nil
}

func printUsage() {
	fmt.Println(`kontrakt - Contract extraction and risk analysis

Usage:
  kontrakt serve [flags]            Start the HTTP server
  kontrakt parse [flags] <file>     Parse one contract file
  kontrakt batch [flags]            Process a directory of contract files
  kontrakt risk [flags] <clause>    Analyze a clause (text or file)
  kontrakt status [flags]           Show storage/index status
  kontrakt version                  Show version
  kontrakt help                     Show this help

Serve Flags:
  --config string    Config file path (default: /usr/local/etc/kontrakt/config.yaml)
  --debug            Enable debug logging

Parse Flags:
  --config string    Config file path
  --output string    Output format: text or json (default: text)
  --save             Also persist the parsed contract to storage

Batch Flags:
  --config string    Config file path
  --input string     Input directory (default from config)
  --output string    Output directory for JSON results (default from config)
  --watch            Keep watching the input directory for new files

Risk Flags:
  --config string    Config file path
  --category string  Clause category hint (e.g. "оплата")
  --output string    Output format: text or json (default: text)

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Examples:
  kontrakt serve
  kontrakt parse dogovor.docx
  kontrakt parse --output json --save dogovor.txt
  kontrakt batch --input ./incoming --output ./parsed --watch
  kontrakt risk "Неустойка 0.5% за каждый день просрочки."
  kontrakt status --output json`)
}

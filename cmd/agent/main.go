// Command agent runs the document agent: ingest documents into the vector
// store, ask a one-off question, or serve the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docbrain/internal/config"
	"github.com/Divas-Gupta30/docbrain/internal/graph"
	"github.com/Divas-Gupta30/docbrain/internal/ingestion"
	"github.com/Divas-Gupta30/docbrain/internal/llm"
	"github.com/Divas-Gupta30/docbrain/internal/processing"
	"github.com/Divas-Gupta30/docbrain/internal/server"
	"github.com/Divas-Gupta30/docbrain/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: agent <ingest|query|serve> [flags]")
		os.Exit(1)
	}

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("loading config", zap.Error(err))
	}

	ctx := context.Background()

	embedder := processing.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbedModel)
	store, err := storage.New(ctx, cfg.DatabaseURL, embedder, log)
	if err != nil {
		log.Fatal("connecting store", zap.Error(err))
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal("ensuring schema", zap.Error(err))
	}

	switch os.Args[1] {
	case "ingest":
		runIngest(ctx, cfg, store, log, os.Args[2:])
	case "query":
		runQuery(ctx, cfg, store, log, os.Args[2:])
	case "serve":
		runServe(cfg, store, log, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, "expected 'ingest', 'query' or 'serve' subcommands")
		os.Exit(1)
	}
}

// newVision returns the Gemini client when an API key is configured, else nil
// so callers degrade to text-only behavior.
func newVision(ctx context.Context, cfg *config.Config, log *zap.Logger) *llm.Gemini {
	if cfg.GoogleAPIKey == "" {
		log.Warn("GOOGLE_API_KEY unset, vision features disabled")
		return nil
	}
	gemini, err := llm.NewGemini(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal("creating gemini client", zap.Error(err))
	}
	return gemini
}

func newPipeline(ctx context.Context, cfg *config.Config, store *storage.Store, log *zap.Logger) *ingestion.Pipeline {
	var transcriber ingestion.ImageTranscriber
	if vision := newVision(ctx, cfg, log); vision != nil {
		transcriber = processing.NewTranscriber(vision, log)
	}
	return ingestion.NewPipeline(store, transcriber, log)
}

func newBrain(ctx context.Context, cfg *config.Config, store *storage.Store, log *zap.Logger) *graph.Engine {
	if cfg.GroqAPIKey == "" {
		log.Fatal("GROQ_API_KEY is required for answering queries")
	}
	var opts []llm.GroqOption
	if cfg.GroqBaseURL != "" {
		opts = append(opts, llm.WithGroqBaseURL(cfg.GroqBaseURL))
	}
	return graph.New(store, llm.NewGroq(cfg.GroqAPIKey, cfg.GroqModel, opts...), log)
}

func runIngest(ctx context.Context, cfg *config.Config, store *storage.Store, log *zap.Logger, args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	path := fs.String("path", "", "local file or folder to ingest")
	driveFolder := fs.String("drive-folder", cfg.DriveFolderID, "google drive folder id to ingest")
	fs.Parse(args)

	pipeline := newPipeline(ctx, cfg, store, log)
	pipeline.OnProgress(func(stage string, done, total int) {
		fmt.Printf("\r[%s] %d/%d", stage, done, total)
		if done == total {
			fmt.Println()
		}
	})

	var files []string
	switch {
	case *path != "":
		local, err := ingestion.LoadLocalFiles(*path)
		if err != nil {
			log.Fatal("loading local files", zap.Error(err))
		}
		files = local
	case *driveFolder != "":
		src, err := ingestion.NewDriveSource(ctx, cfg.DriveCredentials, log)
		if err != nil {
			log.Fatal("creating drive source", zap.Error(err))
		}
		downloaded, err := src.DownloadFolder(ctx, *driveFolder, cfg.OutputDir)
		if err != nil {
			log.Fatal("downloading drive folder", zap.Error(err))
		}
		files = downloaded
	default:
		fmt.Fprintln(os.Stderr, "provide -path or -drive-folder")
		os.Exit(1)
	}

	var total ingestion.Stats
	for _, f := range files {
		log.Info("ingesting", zap.String("file", f))
		stats, err := pipeline.IngestFile(ctx, f, cfg.OutputDir)
		if err != nil {
			log.Warn("skipping file", zap.String("file", f), zap.Error(err))
			continue
		}
		total.TextChunks += stats.TextChunks
		total.Tables += stats.Tables
		total.Figures += stats.Figures
		total.Corrections += stats.Corrections
		total.Stored += stats.Stored
		total.TotalElements += stats.TotalElements
	}
	fmt.Printf("Ingestion complete: %d elements stored (%d chunks, %d tables, %d figures)\n",
		total.Stored, total.TextChunks, total.Tables, total.Figures)
}

func runQuery(ctx context.Context, cfg *config.Config, store *storage.Store, log *zap.Logger, args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	q := fs.String("q", "", "query text")
	asJSON := fs.Bool("json", false, "print the full result as JSON")
	fs.Parse(args)

	if *q == "" {
		fmt.Fprintln(os.Stderr, "Please provide -q \"your query\"")
		os.Exit(1)
	}

	result := newBrain(ctx, cfg, store, log).Run(ctx, *q)
	if *asJSON {
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Println("Answer:", result.Generation)
}

func runServe(cfg *config.Config, store *storage.Store, log *zap.Logger, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.String("port", cfg.Port, "http listen port")
	fs.Parse(args)

	ctx := context.Background()
	brain := newBrain(ctx, cfg, store, log)
	pipeline := newPipeline(ctx, cfg, store, log)
	cache := server.NewCache(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB,
		time.Duration(cfg.CacheTTLSecs)*time.Second, log)
	defer cache.Close()

	srv := server.New(brain, pipeline, store, cache, cfg.OutputDir, log)
	if err := srv.Run(*port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

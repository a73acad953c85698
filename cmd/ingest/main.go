package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/annavdvet2000/chatbot11directanswers/internal/adapter/provider"
	"github.com/annavdvet2000/chatbot11directanswers/internal/domain"
	"github.com/annavdvet2000/chatbot11directanswers/internal/infra/config"
	"github.com/annavdvet2000/chatbot11directanswers/internal/ingest"
)

var (
	inputDir    string
	outputPath  string
	batchSize   int
	concurrency int
	batchDelay  time.Duration
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the corpus artifact from transcript text files",
	Long: `ingest reads plain-text interview transcripts from a directory,
chunks them into passages, embeds each passage through the configured
Ollama endpoint, and writes the resulting corpus artifact as JSON.

Transcripts are expected as one .txt file per document, with form-feed
characters separating pages. The artifact can then be served directly
by the chat server.

Example:
  ingest --input ./transcripts --output ./corpus/embeddings.json`,
	SilenceUsage: true,
	RunE:         runIngest,
}

func init() {
	rootCmd.Flags().StringVarP(&inputDir, "input", "i", "", "directory containing transcript .txt files (required)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "embeddings.json", "path for the corpus artifact")
	rootCmd.Flags().IntVar(&batchSize, "batch-size", ingest.DefaultBatchSize, "chunks embedded per batch")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", ingest.DefaultConcurrency, "concurrent embedding requests within a batch")
	rootCmd.Flags().DurationVar(&batchDelay, "delay", ingest.DefaultBatchDelay, "minimum interval between batches")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	_ = rootCmd.MarkFlagRequired("input")
}

func runIngest(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Load()
	embedder := provider.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel, time.Duration(cfg.EmbedTimeout)*time.Second)

	pipeline := ingest.NewPipeline(embedder, domain.NewChunker(), ingest.Options{
		BatchSize:   batchSize,
		Concurrency: concurrency,
		BatchDelay:  batchDelay,
	}, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := pipeline.Run(ctx, inputDir, outputPath)
	if err != nil {
		return err
	}

	fmt.Printf("Ingest complete. Documents: %d, Chunks: %d, Dropped: %d\n",
		summary.Documents, summary.Chunks, summary.Dropped)
	fmt.Printf("Artifact written to %s (model %s)\n", summary.OutputPath, summary.EmbedderModel)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/parser"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/service"
)

var ingestPages int

var ingestCmd = &cobra.Command{
	Use:   "ingest [pdf]",
	Short: "Parse, chunk, embed and store the owner's manual",
	Long: `Reads the manual PDF, cleans and chunks the text, embeds every
chunk and rewrites the vector store collection. The previous collection
is replaced only after all embeddings succeed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVar(&ingestPages, "pages", 0, "ingest only the first N pages, for a quick trial run (0 = all)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(args) == 1 {
		cfg.Document.PDFPath = args[0]
	}

	svc, closer, err := buildComponents(cfg)
	if err != nil {
		return err
	}
	defer closer()

	ctx := context.Background()
	var report service.IngestReport
	if ingestPages > 0 {
		pages, perr := parser.ReadFirstN(cfg.Document.PDFPath, ingestPages)
		if perr != nil {
			return fmt.Errorf("ingest failed: %w", perr)
		}
		report, err = svc.IngestPages(ctx, pages)
		report.PDFPath = cfg.Document.PDFPath
	} else {
		report, err = svc.Ingest(ctx, cfg.Document.PDFPath)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %s\n", report.PDFPath)
	cmd.Printf("  pages:    %d\n", report.Pages)
	cmd.Printf("  sections: %d\n", report.Sections)
	cmd.Printf("  chunks:   %d\n", report.Chunks)
	cmd.Printf("  elapsed:  %s\n", report.Elapsed.Round(time.Millisecond))
	if report.Digest != "" {
		cmd.Printf("\nDigest: %s\n", report.Digest)
	}
	return nil
}

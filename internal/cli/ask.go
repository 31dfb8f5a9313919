package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/service"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/tui"
)

var (
	askChapter string
	askTopK    int
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask about the manual",
	Long: `With a question argument, answers once and exits. Without one,
opens the interactive terminal UI. Commands inside the UI: exit, clear,
history, context, /chapter NAME.`,
	Args: cobra.ArbitraryArgs,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askChapter, "chapter", "", "restrict retrieval to a chapter (default: auto-detect)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, closer, err := buildComponents(cfg)
	if err != nil {
		return err
	}
	defer closer()

	if len(args) > 0 {
		return answerOnce(cmd, svc, strings.Join(args, " "))
	}

	m := tui.New(svc, fmt.Sprintf("Collection %q · model %s", cfg.Document.Collection, cfg.LLM.Model))
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func answerOnce(cmd *cobra.Command, svc *service.RAGService, question string) error {
	ans, err := svc.Answer(context.Background(), service.AnswerRequest{
		Query:   question,
		Chapter: askChapter,
		TopK:    askTopK,
	})
	if err != nil {
		return err
	}
	cmd.Println(ans.Text)
	cmd.Printf("\nretrieval %dms · generation %dms · chunks %d",
		ans.RetrievalLatency.Milliseconds(), ans.GenerationLatency.Milliseconds(), len(ans.Results))
	if ans.Chapter != "" {
		cmd.Printf(" · chapter %s", ans.Chapter)
	}
	cmd.Println()
	return nil
}

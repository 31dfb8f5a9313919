package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web UI",
	Long:  `Starts the browser front end against the ingested collection.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Web.Addr = serveAddr
	}
	svc, closer, err := buildComponents(cfg)
	if err != nil {
		return err
	}
	defer closer()

	return web.NewServer(svc).ListenAndServe(cfg.Web.Addr)
}

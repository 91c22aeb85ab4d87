package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/commitfind/internal/server"
)

var (
	serveAddr     string
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the commitfind HTTP server",
	Long:  `Starts the commitfind HTTP server, exposing /load, /infer-file, /retrieve-file-contents and the rest of the commit- and file-retrieval API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.BindAddr = serveAddr
		}

		srv := server.New(server.Config{
			Addr:     cfg.BindAddr,
			BaseDir:  cfg.BaseDir,
			AllowAll: serveAllowAll,
		}, cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "commitfind %s listening on %s (base dir: %s)\n", Version, cfg.BindAddr, cfg.BaseDir)
		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "address to listen on (overrides config bind_addr)")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "allow CORS from any origin (dev mode)")
	rootCmd.AddCommand(serveCmd)
}

package macrolog

import (
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/saadjs/macrolog/internal/api"
	"github.com/saadjs/macrolog/internal/logger"
	"github.com/saadjs/macrolog/internal/service"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveOffline bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API for the web dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		return withDB(func(sqldb *sql.DB) error {
			client := offClient()
			var remote service.SearchClient = client
			var barcodes service.BarcodeClient = client
			if serveOffline {
				remote, barcodes = nil, nil
			}
			srv := api.NewServer(sqldb, api.Options{
				Suggester:      service.NewSuggester(sqldb, remote, cfg.Search.Cap, cfg.Search.RemoteTimeout),
				Barcodes:       barcodes,
				Logger:         logger.L(),
				AllowedOrigins: cfg.Server.AllowedOrigins,
			})
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "Disable Open Food Facts lookups")
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ogc-reserve-cli/dashboard"
	ogc_reserve "ogc-reserve-cli/solana"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only JSON dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := ogc_reserve.NewReadOnlyClient(cfg)
		if err != nil {
			return err
		}
		db, err := openWalletStorage()
		if err != nil {
			return fmt.Errorf("failed to open wallet storage: %w", err)
		}

		listen := cfg.Dashboard.Listen
		if serveListen != "" {
			listen = serveListen
		}
		server := dashboard.NewServer(dashboard.Config{
			Listen:      listen,
			OgcMint:     client.OgcMint,
			OggMint:     client.OggMint,
			OgcDecimals: cfg.Decimals.Ogc,
			OggDecimals: cfg.Decimals.Ogg,
		}, client, db)

		if err := server.Start(); err != nil {
			return err
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("🌐 Dashboard API on http://%s/api/v1 (Ctrl+C to stop)", listen)))

		<-cmd.Context().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/roadmap-labs/roadmap/internal/daemon"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the daily streak check",
	Long: `Serve the roadmap API (default 127.0.0.1:4747) and run the daily
streak check in the configured time zone. Ctrl+C stops both and saves state.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		if cmd.Flags().Changed("host") {
			d.Config.API.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			d.Config.API.Port = servePort
		}
		if err := d.Config.Validate(); err != nil {
			return err
		}
		return d.Serve(cmd.Context())
	},
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveHost, "host", "", "listen address, replacing api.host")
	f.IntVar(&servePort, "port", 0, "listen port, replacing api.port")
	rootCmd.AddCommand(serveCmd)
}

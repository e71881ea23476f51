package commands

import (
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"tableflip.dev/questlog/pkg/runner/mcp"
)

func addMCP(topLevel *cobra.Command) {
	var (
		transport string
		host      string
		port      int
		path      string
		cert, key string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve quests over the Model Context Protocol.",
		Long: `Launch an MCP server that exposes quests, courses, categories and planner
tools. stdio suits editors that spawn the server; http listens on --host/--port.`,
		Example: `
questlog mcp
questlog mcp --transport http --port 0
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := mcp.ParseTransport(transport)
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Service.Watch(cmd.Context()); err != nil {
				s.log.Warn("live reload off", "error", err)
			}
			runner := mcp.Runner{
				Service:   s.Service,
				Log:       s.log,
				Name:      "questlog",
				Version:   version,
				Transport: t,
				Addr:      net.JoinHostPort(host, strconv.Itoa(port)),
				Path:      path,
				CertFile:  cert,
				KeyFile:   key,
				Out:       cmd.ErrOrStderr(),
			}
			return runner.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&transport, "transport", string(mcp.TransportStdio), "Transport to use: stdio or http.")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Interface for the http transport.")
	cmd.Flags().IntVar(&port, "port", 8080, "Port for the http transport, 0 picks one.")
	cmd.Flags().StringVar(&path, "path", "/mcp", "Endpoint path for the http transport.")
	cmd.Flags().StringVar(&cert, "tls-cert", "", "TLS certificate file for https.")
	cmd.Flags().StringVar(&key, "tls-key", "", "TLS private key file for https.")

	topLevel.AddCommand(cmd)
}

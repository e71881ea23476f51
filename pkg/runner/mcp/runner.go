package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/questlog/pkg/app"
	"tableflip.dev/questlog/pkg/logger"
)

// Transport selects how the server is reached.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

// ParseTransport accepts "stdio" or "http"; empty means stdio.
func ParseTransport(s string) (Transport, error) {
	switch t := Transport(strings.ToLower(strings.TrimSpace(s))); t {
	case "", TransportStdio:
		return TransportStdio, nil
	case TransportHTTP:
		return TransportHTTP, nil
	default:
		return "", fmt.Errorf("unsupported transport %q (expected stdio or http)", s)
	}
}

// Runner serves the planner over the Model Context Protocol.
type Runner struct {
	Service *app.Service
	Log     *logger.Logger
	Name    string
	Version string

	Transport Transport
	// Addr and Path locate the streamable HTTP endpoint.
	Addr string
	Path string
	// CertFile and KeyFile switch HTTP to TLS when both are set.
	CertFile string
	KeyFile  string
	// Out receives the listening URL for HTTP.
	Out io.Writer
}

func (r Runner) Do(ctx context.Context) error {
	if r.Service == nil || r.Service.Engine == nil {
		return errors.New("mcp runner requires a quest service")
	}
	if (r.CertFile == "") != (r.KeyFile == "") {
		return errors.New("both tls cert and key must be provided")
	}
	name := r.Name
	if name == "" {
		name = "questlog"
	}
	version := r.Version
	if version == "" {
		version = "dev"
	}

	srv := server.NewMCPServer(
		name+" MCP",
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Read and plan quests: list them by due date, check a day's load, record progress and completion."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)
	svc := NewService(r.Service)
	registerResources(srv, svc)
	registerTools(srv, svc)

	switch r.Transport {
	case "", TransportStdio:
		logger.OrNop(r.Log).Debug("mcp serving on stdio")
		return server.ServeStdio(srv)
	case TransportHTTP:
		return r.serveHTTP(ctx, srv)
	default:
		return fmt.Errorf("unknown MCP transport %q", r.Transport)
	}
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	log := logger.OrNop(r.Log)
	path := "/" + strings.TrimPrefix(strings.TrimSpace(r.Path), "/")
	if path == "/" {
		path = "/mcp"
	}
	addr := r.Addr
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	mux := http.NewServeMux()
	mux.Handle(path, server.NewStreamableHTTPServer(srv))
	httpSrv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	url := listenURL(ln.Addr(), r.CertFile != "", path)
	log.Info("mcp listening", "url", url)
	if r.Out != nil {
		_, _ = fmt.Fprintf(r.Out, "MCP server listening on %s\n", url)
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdown); err != nil {
			log.Warn("mcp shutdown", "error", err)
		}
	}()

	if r.CertFile != "" {
		err = httpSrv.ServeTLS(ln, r.CertFile, r.KeyFile)
	} else {
		err = httpSrv.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// listenURL names a listener for humans; wildcard hosts print as loopback.
func listenURL(a net.Addr, tls bool, path string) string {
	scheme := "http"
	if tls {
		scheme = "https"
	}
	host, port := "127.0.0.1", ""
	if tcp, ok := a.(*net.TCPAddr); ok {
		if tcp.IP != nil && !tcp.IP.IsUnspecified() {
			host = tcp.IP.String()
		}
		port = fmt.Sprint(tcp.Port)
	} else if h, p, err := net.SplitHostPort(a.String()); err == nil {
		host, port = h, p
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(host, port), path)
}

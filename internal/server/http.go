package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/time/rate"

	"github.com/teemow/weekplanner/internal/instrumentation"
)

// Transport names accepted by NewHTTPServer.
const (
	TransportSSE            = "sse"
	TransportStreamableHTTP = "streamable-http"
)

// HTTPServerConfig configures the MCP HTTP transport.
type HTTPServerConfig struct {
	// Transport is TransportStreamableHTTP or TransportSSE.
	Transport string

	// RateLimit caps accepted MCP requests per second. 0 disables it.
	RateLimit float64
	Burst     int

	Health  *HealthChecker
	Metrics *instrumentation.Metrics
}

// HTTPServer serves an MCP server over HTTP along with health endpoints.
type HTTPServer struct {
	mu         sync.Mutex
	mcpServer  *mcpserver.MCPServer
	httpServer *http.Server
	handler    http.Handler
	serverType string
}

// NewHTTPServer wires mcpServer into an HTTP handler for the configured
// transport.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, config HTTPServerConfig) (*HTTPServer, error) {
	if mcpServer == nil {
		return nil, fmt.Errorf("MCP server cannot be nil")
	}

	mux := http.NewServeMux()
	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = int(config.RateLimit) + 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}
	wrap := func(path string, h http.Handler) http.Handler {
		return instrumentRequests(path, config.Metrics, rateLimit(limiter, h))
	}

	switch config.Transport {
	case TransportSSE:
		sseServer := mcpserver.NewSSEServer(mcpServer,
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
		)
		mux.Handle("/sse", wrap("/sse", sseServer))
		mux.Handle("/message", wrap("/message", sseServer))

	case TransportStreamableHTTP, "":
		config.Transport = TransportStreamableHTTP
		httpServer := mcpserver.NewStreamableHTTPServer(mcpServer,
			mcpserver.WithEndpointPath("/mcp"),
		)
		mux.Handle("/mcp", wrap("/mcp", httpServer))

	default:
		return nil, fmt.Errorf("unsupported server type: %s", config.Transport)
	}

	if config.Health != nil {
		config.Health.RegisterHealthEndpoints(mux)
	}

	return &HTTPServer{
		mcpServer:  mcpServer,
		handler:    mux,
		serverType: config.Transport,
	}, nil
}

// Handler returns the routes of the server.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Transport returns the MCP transport being served.
func (s *HTTPServer) Transport() string {
	return s.serverType
}

// Start listens on addr and serves until Shutdown is called.
func (s *HTTPServer) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	return srv.Serve(ln)
}

// Shutdown gracefully shuts down the server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

func rateLimit(limiter *rate.Limiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func instrumentRequests(path string, metrics *instrumentation.Metrics, next http.Handler) http.Handler {
	if metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.RecordHTTPRequest(r.Context(), r.Method, path, rec.status, time.Since(start))
	})
}

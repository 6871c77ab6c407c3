package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/willcgage/wirelessboard/internal/config"
	"github.com/willcgage/wirelessboard/internal/dcid"
	"github.com/willcgage/wirelessboard/internal/logging"
	"github.com/willcgage/wirelessboard/internal/registry"
	"github.com/willcgage/wirelessboard/internal/version"
)

const (
	// ServiceType is the mDNS service type the dashboard advertises so
	// watch clients can find a running server.
	ServiceType = "_wirelessboard._tcp"

	// ServiceDomain is the mDNS domain (typically "local.").
	ServiceDomain = "local."

	// shutdownTimeout bounds how long graceful shutdown waits for
	// in-flight requests.
	shutdownTimeout = 10 * time.Second
)

// Config holds the server configuration.
type Config struct {
	Host string // empty binds all interfaces
	Port int
}

// Snapshotter provides the current registry view. The discovery engine
// satisfies this.
type Snapshotter interface {
	Snapshot() []registry.Device
}

// Server is the dashboard API: snapshot JSON over HTTP, periodic push
// over WebSocket, and the discovery settings endpoints.
type Server struct {
	config *Config
	store  *config.Store
	db     *dcid.Database
	source Snapshotter

	httpServer *http.Server
	mdns       *zeroconf.Server
	upgrader   websocket.Upgrader

	broadcastEvery time.Duration

	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

// New creates a new Server instance.
func New(conf *Config, store *config.Store, db *dcid.Database, source Snapshotter) *Server {
	s := &Server{
		config:         conf,
		store:          store,
		db:             db,
		source:         source,
		broadcastEvery: broadcastPeriod,
		clients:        make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			// The dashboard is typically opened from another host.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.httpServer = &http.Server{
		Handler:           logRequests(s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// routes builds the endpoint table. Kept separate from New so tests can
// drive the handlers through httptest without a listener.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /data.json", s.handleDataJSON)
	mux.HandleFunc("GET /api/discovery", s.handleDiscovery)
	mux.HandleFunc("GET /api/discovery/status", s.handleDiscoveryStatus)
	mux.HandleFunc("GET /api/discovery/settings", s.handleSettingsGet)
	mux.HandleFunc("POST /api/discovery/settings", s.handleSettingsPost)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// Start serves the dashboard until a shutdown signal arrives, ctx is
// cancelled, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	logging.Info("Starting wirelessboard dashboard server",
		zap.String("addr", addr),
		zap.String("config", s.store.Path()),
		zap.String("version", version.Version),
	)

	s.registerMDNS()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.broadcastLoop(ctx)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
			return
		}
		errChan <- nil
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		return s.Shutdown(context.Background())
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server: mDNS deregistration,
// dashboard clients, then the HTTP listener. Independent failures are
// aggregated rather than masking each other.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down dashboard server...")

	if s.mdns != nil {
		s.mdns.Shutdown()
		s.mdns = nil
	}

	var errs error

	s.mu.Lock()
	for remoteAddr, conn := range s.clients {
		if err := conn.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close client %s: %w", remoteAddr, err))
		}
		delete(s.clients, remoteAddr)
	}
	s.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	logging.Sync()
	return errs
}

// ClientCount reports how many dashboard WebSocket clients are
// connected.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// registerMDNS advertises the dashboard on the local network. Failure
// is not fatal; watch clients fall back to an explicit --server flag.
func (s *Server) registerMDNS() {
	instance, err := os.Hostname()
	if err != nil || instance == "" {
		instance = "wirelessboard"
	}

	mdns, err := zeroconf.Register(instance, ServiceType, ServiceDomain, s.config.Port,
		[]string{"version=" + version.Version}, nil)
	if err != nil {
		logging.Warn("mDNS registration failed; watch clients must use --server",
			zap.Error(err))
		return
	}
	s.mdns = mdns
	logging.Info("Registered mDNS service",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", s.config.Port),
	)
}

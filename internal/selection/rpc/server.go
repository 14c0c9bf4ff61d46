package rpc

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/banshee-data/pointselect/internal/monitoring"
	"github.com/banshee-data/pointselect/internal/selection/wire"
	"google.golang.org/grpc"
)

// Config holds configuration for the selection gRPC server.
type Config struct {
	// ListenAddr is the address to listen on (e.g., "localhost:50061")
	ListenAddr string

	// MaxMessageBytes bounds request and response sizes. A frame of N
	// points needs roughly 12*N bytes.
	MaxMessageBytes int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		ListenAddr:      "localhost:50061",
		MaxMessageBytes: 128 * 1024 * 1024,
	}
}

// Server manages the gRPC server lifecycle.
type Server struct {
	config   Config
	service  SelectionServer
	server   *grpc.Server
	listener net.Listener
	logf     func(format string, v ...interface{})

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewServer creates a Server that serves svc.
func NewServer(cfg Config, svc SelectionServer) *Server {
	return &Server{
		config:  cfg,
		service: svc,
		logf:    monitoring.Component("SelectRPC"),
	}
}

// Start binds to Config.ListenAddr and serves in the background.
func (s *Server) Start() error {
	if s.running.Load() {
		return fmt.Errorf("server already running")
	}

	s.logf("Attempting to bind to %s...", s.config.ListenAddr)
	lis, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(lis)
}

// Serve serves on lis in the background. The server takes ownership of
// lis.
func (s *Server) Serve(lis net.Listener) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("server already running")
	}
	s.listener = lis

	maxMsgSize := s.config.MaxMessageBytes
	if maxMsgSize <= 0 {
		maxMsgSize = DefaultConfig().MaxMessageBytes
	}
	s.server = grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMsgSize),
		grpc.MaxSendMsgSize(maxMsgSize),
		grpc.ForceServerCodec(wire.Codec{}),
	)
	RegisterSelectionServer(s.server, s.service)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logf("gRPC server listening on %s", lis.Addr())
		if err := s.server.Serve(lis); err != nil && s.running.Load() {
			s.logf("gRPC server error: %v", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop gracefully stops the gRPC server, letting in-flight calls finish.
func (s *Server) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}

	if s.server != nil {
		s.server.GracefulStop()
	}
	if s.listener != nil {
		s.listener.Close()
	}

	s.wg.Wait()
	s.logf("gRPC server stopped")
}

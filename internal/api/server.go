package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonesrussell/chatscrape/internal/config"
	"github.com/jonesrussell/chatscrape/internal/logger"
)

// Server represents the ingest API server.
type Server struct {
	log  logger.Interface
	http *http.Server
}

// Params holds the parameters for creating a new API server.
type Params struct {
	Config config.ServerConfig
	Logger logger.Interface
	Ingest *IngestHandler
}

// NewServer creates a new API server instance.
func NewServer(p Params) *Server {
	router := SetupRouter(p.Logger, p.Ingest)

	return &Server{
		log: p.Logger,
		http: &http.Server{
			Addr:         p.Config.Address,
			Handler:      router,
			ReadTimeout:  p.Config.ReadTimeout,
			WriteTimeout: p.Config.WriteTimeout,
		},
	}
}

// Start starts the API server and blocks until it stops.
func (s *Server) Start() error {
	s.log.Info("Starting API server", "address", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Stopping API server")
	return s.http.Shutdown(ctx)
}

package slowserve

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const readHeaderTimeout = 10 * time.Second

// Server is a throttled static file server.
type Server struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	listener   *Listener
}

// NewServer creates a Server for cfg. A nil logger discards all output.
func NewServer(cfg Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Handler: NewHandler(cfg, logger),
			// Transfers are slow on purpose, so only reading the headers is bounded.
			ReadHeaderTimeout: readHeaderTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelDebug),
		},
	}, nil
}

// Listen opens the listening socket. It is called by ListenAndServe if needed.
func (s *Server) Listen() error {
	if s.listener != nil {
		return nil
	}
	l, err := Listen("tcp", s.cfg.Addr(), s.cfg.TotalLimit(), s.logger)
	if err != nil {
		return err
	}
	s.listener = l
	return nil
}

// Addr returns the listening address, nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ActiveConns returns the number of open client connections.
func (s *Server) ActiveConns() int {
	if s.listener == nil {
		return 0
	}
	return s.listener.ActiveConns()
}

// Serve accepts connections until the server is shut down.
// It returns nil after Shutdown.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("slowserve: Serve called before Listen")
	}
	s.logger.Info("serving",
		slog.String("addr", s.listener.Addr().String()),
		slog.String("root", s.cfg.RootDir),
		slog.Int("chunk_size", s.cfg.ChunkSize()),
		slog.Duration("interval", s.cfg.Interval()),
		slog.Bool("cors", s.cfg.CORS),
	)
	err := s.httpServer.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ListenAndServe combines Listen and Serve.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Shutdown stops accepting connections and waits for running transfers until ctx
// is done. Transfers still running at that point are cut off.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down", slog.Int("active_conns", s.ActiveConns()))
	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.logger.Warn("forcing close", slog.Int("active_conns", s.ActiveConns()), slog.String("error", err.Error()))
		if cerr := s.httpServer.Close(); cerr != nil {
			return errors.Join(err, cerr)
		}
	}
	return err
}

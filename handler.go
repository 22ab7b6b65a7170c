package slowserve

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Handler serves files from the root directory through a throttled Engine.
// Every request method is served like GET.
type Handler struct {
	router Router
	engine *Engine
	logger *slog.Logger
}

// NewHandler creates a Handler for cfg. A nil logger discards all output.
func NewHandler(cfg Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = discardLogger()
	}
	return &Handler{
		router: NewRouter(cfg.RootDir),
		engine: NewEngine(cfg),
		logger: logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	target := requestTarget(r)
	reqPath := Clean(target)
	// session ties the lines of one request together, remote ties them to the
	// connection lines of the Listener.
	log := h.logger.With(
		slog.String("session", uuid.NewString()),
		slog.String("remote", r.RemoteAddr),
		slog.String("method", r.Method),
		slog.String("path", reqPath),
	)

	content, err := ReadContent(h.router.Resolve(target), reqPath)
	if err != nil {
		h.engine.NotFound(w, err, reqPath)
		log.Info("file not served",
			slog.Int("status", http.StatusNotFound),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return
	}

	log.Debug("delivery started", slog.Int("size", len(content.Data)))
	n, err := h.engine.Deliver(r.Context(), w, content)
	if err != nil {
		// The peer is gone, so there is nobody left to report to.
		log.Debug("delivery abandoned",
			slog.Int("sent", n),
			slog.Int("size", len(content.Data)),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return
	}
	log.Info("file served",
		slog.Int("status", http.StatusOK),
		slog.Int("bytes", n),
		slog.Duration("duration", time.Since(start)),
	)
}

// requestTarget returns the raw request target, query included.
// Absolute-form targets fall back to the parsed path.
func requestTarget(r *http.Request) string {
	if strings.HasPrefix(r.RequestURI, "/") {
		return r.RequestURI
	}
	if r.URL != nil {
		return r.URL.EscapedPath()
	}
	return "/"
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

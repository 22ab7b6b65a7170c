package slowserve

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// CORS header values sent when cross-origin access is enabled.
const (
	corsAllowOrigin  = "*"
	corsAllowHeaders = "Origin, X-Requested-With, Content-Type, Accept, Range"
)

// Session tracks the delivery of one content.
// It belongs to a single request and is not safe for concurrent use.
type Session struct {
	content     []byte
	chunkSize   int
	transferred int
}

// NewSession creates a Session cutting content into chunks of chunkSize bytes.
// A chunkSize below 1 is treated as 1.
func NewSession(content []byte, chunkSize int) *Session {
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &Session{content: content, chunkSize: chunkSize}
}

// Next returns the next chunk and reports whether it is the last one.
// Calling Next on a finished session returns an empty final chunk.
func (s *Session) Next() (chunk []byte, final bool) {
	size := min(s.chunkSize, len(s.content)-s.transferred)
	chunk = s.content[s.transferred : s.transferred+size]
	s.transferred += size
	return chunk, s.transferred >= len(s.content)
}

// Done reports whether the whole content has been handed out.
func (s *Session) Done() bool { return s.transferred >= len(s.content) }

// Engine writes content to HTTP responses at a paced rate.
// Every chunk is preceded by a full interval of wall-clock delay.
type Engine struct {
	chunkSize int
	interval  time.Duration
	cors      bool
}

// NewEngine creates an Engine pacing deliveries according to cfg.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		chunkSize: cfg.ChunkSize(),
		interval:  cfg.Interval(),
		cors:      cfg.CORS,
	}
}

// Deliver writes the response headers and then the content, one chunk per interval.
// It returns the number of body bytes written. A write error or a done ctx
// abandons the delivery; the error is returned and nothing else is sent.
func (e *Engine) Deliver(ctx context.Context, w http.ResponseWriter, c *Content) (int, error) {
	e.writeHeader(w, c)
	rc := http.NewResponseController(w)

	// Clients see the headers right away, only the body is slow.
	if err := flush(rc); err != nil {
		return 0, err
	}

	s := NewSession(c.Data, e.chunkSize)
	if s.Done() {
		return 0, nil
	}

	written := 0
	for {
		if err := sleep(ctx, e.interval); err != nil {
			return written, err
		}
		chunk, final := s.Next()
		n, err := w.Write(chunk)
		written += n
		if err != nil {
			return written, err
		}
		if err := flush(rc); err != nil {
			return written, err
		}
		if final {
			return written, nil
		}
	}
}

func (e *Engine) writeHeader(w http.ResponseWriter, c *Content) {
	h := w.Header()
	if c.ContentType != "" {
		h.Set("Content-Type", c.ContentType)
	} else {
		// A nil value keeps net/http from sniffing the type.
		h["Content-Type"] = nil
	}
	h.Set("Content-Length", strconv.Itoa(len(c.Data)))
	if e.cors {
		setCORS(h)
	}
	w.WriteHeader(http.StatusOK)
}

// NotFound writes the 404 response describing err.
func (e *Engine) NotFound(w http.ResponseWriter, err error, reqPath string) {
	if e.cors {
		setCORS(w.Header())
	}
	WriteFileError(w, err, reqPath)
}

func setCORS(h http.Header) {
	h.Set("Access-Control-Allow-Origin", corsAllowOrigin)
	h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
}

func flush(rc *http.ResponseController) error {
	if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

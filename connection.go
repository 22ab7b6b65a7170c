package slowserve

import (
	"context"
	"log/slog"
	"math"
	"net"
	"sync"
)

// Conn is a net.Conn wrapper which shares the listener limit with the other connections.
type Conn struct {
	listener *Listener

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	net.Conn
}

// newConn creates new Conn. Pending waits of the Conn end when it is closed.
func newConn(conn net.Conn, listener *Listener) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	return &Conn{
		listener: listener,
		ctx:      ctx,
		cancel:   cancel,
		Conn:     conn,
	}
}

// Write writes data to connection.
// Without a listener limit the data goes straight through, otherwise it is written
// by chunks and every chunk waits for its share of the listener limit.
func (lc *Conn) Write(b []byte) (N int, err error) {
	limiter := lc.listener.limiter
	if limiter == nil {
		return lc.Conn.Write(b)
	}

	for left := 0; left < len(b); {
		right := min(left+lc.getTake(), len(b))
		take := right - left

		n, err := lc.Conn.Write(b[left:right])
		N += n
		if err != nil {
			return N, err
		}
		if err = limiter.WaitN(lc.ctx, take); err != nil {
			return N, err
		}
		left = right
	}
	return N, nil
}

// Close deletes Conn from connections list and closes underlying connection.
func (lc *Conn) Close() error {
	lc.closeOnce.Do(func() {
		lc.cancel()
		lc.listener.deleteConn(lc)
		lc.listener.logger.Debug("connection closed", slog.String("remote", lc.RemoteAddr().String()))
	})
	return lc.Conn.Close()
}

// getTake returns number of bytes which will be written during next round during Write.
// It is the listener limit divided by the connections count, at least 1 byte.
func (lc *Conn) getTake() int {
	total := lc.listener.totalLimit
	connNumber := max(lc.listener.ActiveConns(), 1)

	take := int(math.Round(float64(total) / float64(connNumber)))
	return min(max(take, 1), total)
}

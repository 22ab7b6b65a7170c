package slowserve

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Listener is a net.Listener wrapper which keeps track of the accepted connections.
// When a total limit is set, the connections share it evenly.
type Listener struct {
	mu       sync.RWMutex
	connList map[*Conn]struct{}

	totalLimit int // bytes per second, 0 means unlimited
	limiter    *rate.Limiter
	logger     *slog.Logger

	net.Listener
}

// NewListener creates new Listener.
// totalLimit is the rate in bytes per second of all connections together, 0 disables shaping.
func NewListener(totalLimit int, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = discardLogger()
	}
	ll := &Listener{
		totalLimit: totalLimit,
		connList:   make(map[*Conn]struct{}),
		logger:     logger,
	}
	if totalLimit > 0 {
		ll.limiter = rate.NewLimiter(rate.Limit(totalLimit), totalLimit)
		ll.limiter.AllowN(time.Now(), totalLimit) // to burn all tokens
	}
	return ll
}

// Listen initializes Listener.
// This method accepts the same parameters as net.Listen().
func (ll *Listener) Listen(network, address string) (*Listener, error) {
	l, err := net.Listen(network, address)
	if err != nil {
		return nil, err
	}
	ll.Listener = l
	return ll, nil
}

// Accept waits for the next connection and wraps it into a Conn.
func (ll *Listener) Accept() (net.Conn, error) {
	conn, err := ll.Listener.Accept()
	if err != nil {
		return conn, err
	}
	lconn := newConn(conn, ll)
	ll.addConn(lconn)
	ll.logger.Debug("connection accepted", slog.String("remote", conn.RemoteAddr().String()))
	return lconn, nil
}

// ActiveConns returns the number of open connections.
func (ll *Listener) ActiveConns() int {
	ll.mu.RLock()
	defer ll.mu.RUnlock()
	return len(ll.connList)
}

func (ll *Listener) addConn(conn *Conn) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.connList[conn] = struct{}{}
}

func (ll *Listener) deleteConn(conn *Conn) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	delete(ll.connList, conn)
}

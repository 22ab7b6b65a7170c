package slowserve

import "log/slog"

// Listen announces on the local network address. Under the hood it uses the
// connection tracking Listener, shaping all traffic to totalLimit bytes per second
// when totalLimit is positive.
func Listen(network, address string, totalLimit int, logger *slog.Logger) (*Listener, error) {
	return NewListener(totalLimit, logger).Listen(network, address)
}

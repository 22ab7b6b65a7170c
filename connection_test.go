package slowserve

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestConn_getTake(t *testing.T) {
	type fields struct {
		totalLimit int
		connCount  int
	}
	tests := []struct {
		name   string
		fields fields
		want   int
	}{
		{
			name: "single",
			fields: fields{
				totalLimit: 100,
				connCount:  1,
			},
			want: 100,
		},
		{
			name: "shared",
			fields: fields{
				totalLimit: 100,
				connCount:  2,
			},
			want: 50,
		},
		{
			name: "rounded",
			fields: fields{
				totalLimit: 100,
				connCount:  3,
			},
			want: 33,
		},
		{
			name: "more conns than bytes",
			fields: fields{
				totalLimit: 2,
				connCount:  5,
			},
			want: 1,
		},
		{
			name: "not registered yet",
			fields: fields{
				totalLimit: 100,
				connCount:  0,
			},
			want: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewListener(tt.fields.totalLimit, nil)
			for i := 0; i < tt.fields.connCount; i++ {
				c := Conn{}
				l.connList[&c] = struct{}{}
			}
			lc := &Conn{listener: l}
			if got := lc.getTake(); got != tt.want {
				t.Errorf("getTake() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConn_Write(t *testing.T) {
	type fields struct {
		fileSize   int
		totalLimit int
		connCount  int
	}
	tests := []struct {
		name   string
		fields fields
		// the response is written before the last wait, so only a window is checked
		minDuration time.Duration
		maxDuration time.Duration
	}{
		{
			name: "unlimited",
			fields: fields{
				fileSize:   100_000,
				totalLimit: 0,
				connCount:  1,
			},
			minDuration: 0,
			maxDuration: 500 * time.Millisecond,
		},
		{
			name: "single",
			fields: fields{
				fileSize:   1000,
				totalLimit: 500,
				connCount:  1,
			},
			minDuration: 1900 * time.Millisecond,
			maxDuration: 2600 * time.Millisecond,
		},
		{
			name: "dual",
			fields: fields{
				fileSize:   1000,
				totalLimit: 1000,
				connCount:  2,
			},
			minDuration: 900 * time.Millisecond,
			maxDuration: 3 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handleFunc := func(w http.ResponseWriter, r *http.Request) {
				b := make([]byte, tt.fields.fileSize)
				w.Write(b)
			}
			l, err := Listen("tcp", "127.0.0.1:0", tt.fields.totalLimit, nil)
			if err != nil {
				t.Fatalf("can't create listener for %s: %v", tt.name, err)
			}
			server := httptest.Server{
				Listener: l,
				Config: &http.Server{
					Handler:     http.HandlerFunc(handleFunc),
					ReadTimeout: time.Minute,
				},
			}

			server.Start()
			defer server.Close()
			client := server.Client()

			for i := 0; i < tt.fields.connCount-1; i++ {
				go func() {
					resp, err := client.Get(server.URL)
					if err != nil {
						return
					}
					defer resp.Body.Close()
					_, _ = io.ReadAll(resp.Body)
				}()
			}
			start := time.Now()
			resp, err := client.Get(server.URL)
			if err != nil {
				t.Fatalf("can't execute GET for %s: %v", tt.name, err)
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("can't read body %s: %v", tt.name, err)
			}
			duration := time.Since(start)

			if len(body) != tt.fields.fileSize {
				t.Errorf("body length = %d, want %d", len(body), tt.fields.fileSize)
			}
			if duration < tt.minDuration || duration > tt.maxDuration {
				t.Errorf("test execution is not in range; duration = %v, want [%v, %v]", duration, tt.minDuration, tt.maxDuration)
			}
		})
	}
}

func TestListener_ActiveConns(t *testing.T) {
	l, err := Listen("tcp", "127.0.0.1:0", 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := l.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- c
	}()

	client, err := net.Dial("tcp", l.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	c, ok := <-accepted
	if !ok {
		t.Fatal("accept failed")
	}
	if got := l.ActiveConns(); got != 1 {
		t.Errorf("ActiveConns() = %d, want 1", got)
	}
	if _, ok := c.(*Conn); !ok {
		t.Errorf("Accept() returned %T, want *Conn", c)
	}

	// Closing twice must not underflow the count or panic.
	c.Close()
	c.Close()
	if got := l.ActiveConns(); got != 0 {
		t.Errorf("ActiveConns() after close = %d, want 0", got)
	}
}

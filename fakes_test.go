package hue

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const testCredential = "testuser"

// recordedRequest is one request seen by fakeBridge.
type recordedRequest struct {
	Method string
	Path   string
	Body   string
	At     time.Time
}

// fakeBridge is an httptest server standing in for the bridge. Responses are
// looked up by "METHOD /path"; unknown routes get 404.
type fakeBridge struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []recordedRequest
}

func newFakeBridge(t *testing.T) *fakeBridge {
	t.Helper()
	b := &fakeBridge{routes: make(map[string]http.HandlerFunc)}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

func (b *fakeBridge) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.requests = append(b.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Body:   string(body),
		At:     time.Now(),
	})
	handler, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	handler(w, r)
}

// handle registers a handler for method and path.
func (b *fakeBridge) handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = h
}

// respond registers a fixed JSON body for method and path.
func (b *fakeBridge) respond(method, path, body string) {
	b.handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	})
}

// apiPath returns the authenticated path for a resource.
func apiPath(resource string) string {
	return "/api/" + testCredential + "/" + resource
}

func (b *fakeBridge) address() string {
	return strings.TrimPrefix(b.URL, "http://")
}

func (b *fakeBridge) recorded() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedRequest(nil), b.requests...)
}

// count returns how many requests matched method and path.
func (b *fakeBridge) count(method, path string) int {
	n := 0
	for _, req := range b.recorded() {
		if req.Method == method && req.Path == path {
			n++
		}
	}
	return n
}

// newTestClient returns a silent client already connected to the fake bridge.
func newTestClient(t *testing.T, b *fakeBridge, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithVerbosity(VerbositySilent),
		WithAddress(b.address()),
		WithCredential(testCredential),
	}
	return NewClient(append(base, opts...)...)
}

// timeoutError satisfies net.Error with Timeout() == true.
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// datagram is a scripted SSDP reply.
type datagram struct {
	from string
	data string
}

// fakePacketConn replays scripted datagrams and then times out.
type fakePacketConn struct {
	mu        sync.Mutex
	replies   []datagram
	written   []string
	writtenTo []string
	deadlines []time.Time
	readErr   error
	closed    bool
	block     chan struct{}
}

func (c *fakePacketConn) ReadFrom(p []byte) (int, net.Addr, error) {
	c.mu.Lock()
	if c.readErr != nil {
		err := c.readErr
		c.mu.Unlock()
		return 0, nil, err
	}
	if len(c.replies) == 0 {
		block := c.block
		c.mu.Unlock()
		if block != nil {
			<-block
		}
		return 0, nil, timeoutError{}
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	c.mu.Unlock()

	addr, err := net.ResolveUDPAddr("udp4", reply.from)
	if err != nil {
		return 0, nil, err
	}
	return copy(p, reply.data), addr, nil
}

func (c *fakePacketConn) WriteTo(p []byte, addr net.Addr) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, string(p))
	c.writtenTo = append(c.writtenTo, addr.String())
	return len(p), nil
}

func (c *fakePacketConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakePacketConn) LocalAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4zero}
}

func (c *fakePacketConn) SetDeadline(t time.Time) error {
	return c.SetReadDeadline(t)
}

func (c *fakePacketConn) SetReadDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadlines = append(c.deadlines, t)
	// A deadline in the past releases a blocked read, like a real socket.
	if c.block != nil && !t.IsZero() && t.Before(time.Now()) {
		close(c.block)
		c.block = nil
	}
	return nil
}

func (c *fakePacketConn) SetWriteDeadline(t time.Time) error {
	return nil
}

// ssdpWith returns an SSDPDiscovery reading from conn.
func ssdpWith(conn *fakePacketConn) *SSDPDiscovery {
	d := NewSSDPDiscovery(0)
	d.Listen = func() (net.PacketConn, error) {
		return conn, nil
	}
	return d
}

// stubDiscoverer returns a fixed result and counts calls.
type stubDiscoverer struct {
	mu      sync.Mutex
	address string
	err     error
	calls   int
}

func (s *stubDiscoverer) Discover(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.address == "" {
		return "", ErrBridgeNotFound
	}
	return s.address, nil
}

// failingStore fails every call with err.
type failingStore struct {
	err error
}

func (f failingStore) Load(ctx context.Context) (Settings, bool, error) {
	return Settings{}, false, f.err
}

func (f failingStore) Save(ctx context.Context, s Settings) error {
	return f.err
}

func (f failingStore) Delete(ctx context.Context) error {
	return f.err
}

var errStore = errors.New("store unavailable")

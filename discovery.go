package hue

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"
)

const (
	// DefaultDiscoveryTimeout is how long discovery waits for the next reply.
	DefaultDiscoveryTimeout = 3 * time.Second

	// BridgeProduct is the SERVER header product name announced by Hue bridges,
	// e.g. "Linux/3.14 UPnP/1.0 IpBridge/1.20.0".
	BridgeProduct = "IpBridge"

	// SSDPMulticastAddr is the standard SSDP multicast group and port.
	SSDPMulticastAddr = "239.255.255.250:1900"
)

// searchRequest is the M-SEARCH probe sent to the multicast group.
const searchRequest = "M-SEARCH * HTTP/1.1\r\n" +
	"HOST: " + SSDPMulticastAddr + "\r\n" +
	"MAN: \"ssdp:discover\"\r\n" +
	"ST: ssdp:all\r\n" +
	"MX: 3\r\n" +
	"\r\n"

// Discoverer locates the bridge on the local network and returns its address.
// Implementations return ErrBridgeNotFound when no bridge answered.
type Discoverer interface {
	Discover(ctx context.Context) (string, error)
}

// SSDPDiscovery finds the bridge with a UPnP SSDP search.
type SSDPDiscovery struct {
	// Timeout is how long to wait for the next reply before giving up.
	// It restarts after every reply. Defaults to 3 seconds if zero.
	Timeout time.Duration

	// Product is the SERVER product name to accept. Defaults to BridgeProduct.
	Product string

	// MulticastAddr is where the probe is sent. Defaults to SSDPMulticastAddr.
	MulticastAddr string

	// Listen opens the UDP socket. Defaults to an IPv4 socket on a random port.
	Listen func() (net.PacketConn, error)

	Logger *slog.Logger
}

// NewSSDPDiscovery creates a new SSDPDiscovery instance.
func NewSSDPDiscovery(timeout time.Duration) *SSDPDiscovery {
	if timeout == 0 {
		timeout = DefaultDiscoveryTimeout
	}
	return &SSDPDiscovery{Timeout: timeout}
}

func (d *SSDPDiscovery) timeout() time.Duration {
	if d.Timeout <= 0 {
		return DefaultDiscoveryTimeout
	}
	return d.Timeout
}

func (d *SSDPDiscovery) product() string {
	if d.Product == "" {
		return BridgeProduct
	}
	return d.Product
}

func (d *SSDPDiscovery) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

func (d *SSDPDiscovery) listen() (net.PacketConn, error) {
	if d.Listen != nil {
		return d.Listen()
	}
	return net.ListenPacket("udp4", ":0")
}

// Discover sends the SSDP probe and returns the IP of the first reply whose
// SERVER header names the bridge product. It returns ErrBridgeNotFound once no
// reply has arrived for Timeout.
func (d *SSDPDiscovery) Discover(ctx context.Context) (string, error) {
	conn, err := d.listen()
	if err != nil {
		return "", fmt.Errorf("discovery: listen: %w", err)
	}
	defer conn.Close()

	target := d.MulticastAddr
	if target == "" {
		target = SSDPMulticastAddr
	}
	addr, err := net.ResolveUDPAddr("udp4", target)
	if err != nil {
		return "", fmt.Errorf("discovery: resolve multicast: %w", err)
	}

	if _, err := conn.WriteTo([]byte(searchRequest), addr); err != nil {
		return "", fmt.Errorf("discovery: send: %w", err)
	}

	// Unblock the pending read when the context ends.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	log := d.logger()
	product := d.product()
	buf := make([]byte, 2048)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		deadline := time.Now().Add(d.timeout())
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}
		_ = conn.SetReadDeadline(deadline)

		n, remoteAddr, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if IsTimeout(err) {
				return "", ErrBridgeNotFound
			}
			return "", fmt.Errorf("discovery: receive: %w", err)
		}

		reply := string(buf[:n])
		log.LogAttrs(ctx, slog.LevelDebug, "ssdp_reply",
			slog.String("from", remoteAddr.String()),
			slog.String("data", reply),
		)

		headers := parseSSDPResponse(reply)
		if !serverHasProduct(headers["SERVER"], product) {
			continue
		}

		ip := remoteIP(remoteAddr)
		if ip == "" {
			continue
		}
		return ip, nil
	}
}

// parseSSDPResponse parses an SSDP response into a header map with upper-case keys.
func parseSSDPResponse(response string) map[string]string {
	headers := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(response))

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "HTTP/") {
			continue
		}

		idx := strings.Index(line, ":")
		if idx == -1 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		headers[key] = strings.TrimSpace(line[idx+1:])
	}

	return headers
}

// serverHasProduct reports whether a SERVER header such as
// "Linux/3.14 UPnP/1.0 IpBridge/1.20.0" contains the product token.
func serverHasProduct(server, product string) bool {
	for _, token := range strings.Fields(server) {
		name, _, _ := strings.Cut(token, "/")
		if name == product {
			return true
		}
	}
	return false
}

// remoteIP returns the IP part of a datagram sender address.
func remoteIP(addr net.Addr) string {
	if udpAddr, ok := addr.(*net.UDPAddr); ok {
		return udpAddr.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return ""
	}
	return host
}

// Package discovery locates a Mopidy HTTP endpoint on the local network.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"
)

const (
	Service        = "_mopidy-http._tcp"
	Domain         = "local."
	DefaultTimeout = 5 * time.Second
)

// ErrNoServer is returned when nothing answered before the timeout.
var ErrNoServer = errors.New("no mopidy server found")

// Server is one advertised Mopidy instance.
type Server struct {
	Name string
	Host string
	Port int
}

// Addr returns host:port.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// RPCURL returns the HTTP JSON-RPC endpoint.
func (s Server) RPCURL() string {
	return "http://" + s.Addr() + "/mopidy/rpc"
}

// WSURL returns the WebSocket JSON-RPC endpoint.
func (s Server) WSURL() string {
	return "ws://" + s.Addr() + "/mopidy/ws"
}

type browseFunc func(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error

// Browser finds servers over mDNS.
type Browser struct {
	browse browseFunc
	log    *zap.Logger
}

// NewBrowser builds a Browser on a fresh zeroconf resolver.
func NewBrowser(log *zap.Logger) (*Browser, error) {
	if log == nil {
		log = zap.NewNop()
	}
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("initialize resolver: %w", err)
	}
	return &Browser{browse: resolver.Browse, log: log}, nil
}

// First returns the first server advertising an IPv4 address within timeout.
func (b *Browser) First(ctx context.Context, timeout time.Duration) (Server, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan Server, 1)
	go func() {
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				if entry == nil || len(entry.AddrIPv4) == 0 {
					continue
				}
				srv := Server{Name: entry.Instance, Host: entry.AddrIPv4[0].String(), Port: entry.Port}
				select {
				case found <- srv:
				default:
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := b.browse(ctx, Service, Domain, entries); err != nil {
		return Server{}, fmt.Errorf("browse %s: %w", Service, err)
	}

	select {
	case srv := <-found:
		b.log.Info("discovered mopidy server", zap.String("name", srv.Name), zap.String("addr", srv.Addr()))
		return srv, nil
	case <-ctx.Done():
		if err := parent.Err(); err != nil {
			return Server{}, err
		}
		return Server{}, ErrNoServer
	}
}

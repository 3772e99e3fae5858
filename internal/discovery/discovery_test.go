package discovery

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"
)

func TestServer_URLs(t *testing.T) {
	s := Server{Name: "living-room", Host: "192.168.1.20", Port: 6680}
	if got := s.RPCURL(); got != "http://192.168.1.20:6680/mopidy/rpc" {
		t.Fatalf("RPCURL = %q", got)
	}
	if got := s.WSURL(); got != "ws://192.168.1.20:6680/mopidy/ws" {
		t.Fatalf("WSURL = %q", got)
	}
}

func TestFirst_SkipsEntriesWithoutIPv4(t *testing.T) {
	b := &Browser{browse: func(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
		if service != Service || domain != Domain {
			t.Errorf("browse(%q, %q)", service, domain)
		}
		go func() {
			v6only := zeroconf.NewServiceEntry("v6", service, domain)
			v6only.AddrIPv6 = []net.IP{net.ParseIP("fe80::1")}
			select {
			case entries <- v6only:
			case <-ctx.Done():
				return
			}

			good := zeroconf.NewServiceEntry("kitchen", service, domain)
			good.AddrIPv4 = []net.IP{net.ParseIP("10.0.0.5")}
			good.Port = 6680
			select {
			case entries <- good:
			case <-ctx.Done():
			}
		}()
		return nil
	}}
	b.log = zap.NewNop()

	srv, err := b.First(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("First returned error: %v", err)
	}
	if srv.Name != "kitchen" || srv.Addr() != "10.0.0.5:6680" {
		t.Fatalf("server = %+v", srv)
	}
}

func TestFirst_TimesOut(t *testing.T) {
	b := &Browser{browse: func(context.Context, string, string, chan<- *zeroconf.ServiceEntry) error { return nil }, log: zap.NewNop()}
	if _, err := b.First(context.Background(), 20*time.Millisecond); !errors.Is(err, ErrNoServer) {
		t.Fatalf("First error = %v, want ErrNoServer", err)
	}
}

func TestFirst_BrowseError(t *testing.T) {
	boom := errors.New("no multicast")
	b := &Browser{browse: func(context.Context, string, string, chan<- *zeroconf.ServiceEntry) error { return boom }, log: zap.NewNop()}
	if _, err := b.First(context.Background(), time.Second); !errors.Is(err, boom) {
		t.Fatalf("First error = %v, want %v", err, boom)
	}
}

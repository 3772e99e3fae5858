package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/mopidy-bridge/internal/config"
	"github.com/five82/mopidy-bridge/internal/discovery"
	"github.com/five82/mopidy-bridge/internal/player"
	"github.com/five82/mopidy-bridge/internal/rpc"
)

// newController builds the playback backend named by cfg.Backend. The
// returned func releases any open connection.
func newController(cfg config.Config) (player.Controller, func(), error) {
	if cfg.Backend == config.BackendMPD {
		return player.NewMPD(cfg.MPDAddr, ""), func() {}, nil
	}

	var client *rpc.Client
	switch cfg.Transport {
	case config.TransportWS:
		ws, err := rpc.NewWSTransport(cfg.WSURL)
		if err != nil {
			return nil, nil, fmt.Errorf("init websocket transport: %w", err)
		}
		client = rpc.NewClient(ws)
	default:
		var err error
		client, err = rpc.NewHTTPClient(cfg.RPCURL, cfg.RequestTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("init http transport: %w", err)
		}
	}

	return player.NewMopidy(client), func() { _ = client.Close() }, nil
}

// discover replaces the configured endpoints with the first Mopidy server
// advertised over mDNS. Failures leave the configuration untouched.
func (s *supervisor) discover(ctx context.Context) {
	if !s.cfg.Discover || s.cfg.Backend != config.BackendMopidy {
		return
	}
	browser, err := discovery.NewBrowser(s.log)
	if err != nil {
		s.log.Warn("discovery unavailable", zap.Error(err))
		return
	}
	srv, err := browser.First(ctx, s.cfg.DiscoverTimeout)
	if err != nil {
		s.log.Warn("discovery failed, using configured endpoint", zap.String("rpc_url", s.cfg.RPCURL), zap.Error(err))
		return
	}
	s.cfg.RPCURL = srv.RPCURL()
	s.cfg.WSURL = srv.WSURL()
	// A discovered server is someone else's; never launch a local one.
	s.cfg.ManageServer = false
}

package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/five82/mopidy-bridge/internal/config"
	"github.com/five82/mopidy-bridge/internal/player"
)

func TestNewController_MopidyOverHTTP(t *testing.T) {
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		method = req.Method
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"paused"}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.RPCURL = srv.URL + "/mopidy/rpc"

	ctrl, closeCtrl, err := newController(cfg)
	if err != nil {
		t.Fatalf("newController returned error: %v", err)
	}
	defer closeCtrl()

	if _, ok := ctrl.(*player.Mopidy); !ok {
		t.Fatalf("controller = %T, want *player.Mopidy", ctrl)
	}
	got, err := ctrl.PlaybackState(context.Background())
	if err != nil || got != "paused" {
		t.Fatalf("PlaybackState = %q, %v; want paused", got, err)
	}
	if method != "core.playback.get_state" {
		t.Fatalf("method = %q, want core.playback.get_state", method)
	}
}

func TestNewController_MPD(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = config.BackendMPD

	ctrl, closeCtrl, err := newController(cfg)
	if err != nil {
		t.Fatalf("newController returned error: %v", err)
	}
	defer closeCtrl()
	if _, ok := ctrl.(*player.MPD); !ok {
		t.Fatalf("controller = %T, want *player.MPD", ctrl)
	}
}

func TestParseMode(t *testing.T) {
	for _, name := range Modes() {
		if _, err := ParseMode(name); err != nil {
			t.Fatalf("ParseMode(%q) returned error: %v", name, err)
		}
	}
	if _, err := ParseMode("serial"); err == nil {
		t.Fatalf("ParseMode(serial) returned nil error")
	}
}

package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/angelmondragon/pulse-analytics/pkg/config"
)

func TestNewServerAppliesTimeouts(t *testing.T) {
	cfg := &config.Config{HTTP: config.HTTPConfig{ReadTimeout: 5 * time.Second, WriteTimeout: 20 * time.Second}}
	srv := NewServer(cfg, ":9000", http.NotFoundHandler())
	if srv.Addr != ":9000" {
		t.Fatalf("unexpected addr %q", srv.Addr)
	}
	if srv.ReadTimeout != 5*time.Second || srv.WriteTimeout != 20*time.Second || srv.IdleTimeout != 40*time.Second {
		t.Fatalf("unexpected timeouts %+v", srv)
	}
}

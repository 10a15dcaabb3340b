package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// No config file in the test working directory: Load falls back to
	// defaults.
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port = %d; want 8080", cfg.Port)
	}
	if cfg.Mode != "release" {
		t.Fatalf("mode = %q; want release", cfg.Mode)
	}
	if cfg.SendBuffer != 32 {
		t.Fatalf("send_buffer = %d; want 32", cfg.SendBuffer)
	}
	if cfg.WriteTimeout != 5*time.Second {
		t.Fatalf("write_timeout = %v; want 5s", cfg.WriteTimeout)
	}
	if cfg.RingTimeout != 45*time.Second {
		t.Fatalf("ring_timeout = %v; want 45s", cfg.RingTimeout)
	}
	if len(cfg.ICEServers) == 0 || len(cfg.ICEServers[0].URLs) == 0 {
		t.Fatalf("ice_servers default missing: %+v", cfg.ICEServers)
	}
}

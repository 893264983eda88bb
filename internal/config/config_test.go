package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 3001 {
		t.Fatalf("expected default port 3001, got %d", cfg.Server.Port)
	}
	if cfg.Room.EmptyTTL != 10*time.Minute {
		t.Fatalf("expected default TTL 10m, got %v", cfg.Room.EmptyTTL)
	}
	if !cfg.Room.AllowHostClaim {
		t.Fatal("expected host claim enabled by default")
	}
	if len(cfg.CORS.AllowedOrigins) != 0 {
		t.Fatalf("expected no default origins, got %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.WebSocket.PongWait != 60*time.Second {
		t.Fatalf("expected default pong wait 60s, got %v", cfg.WebSocket.PongWait)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "4005")
	t.Setenv("EMPTY_ROOM_TTL", "90s")
	t.Setenv("CORS_ORIGINS", "https://luba.tv, https://staging.luba.tv")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 4005 {
		t.Fatalf("expected port 4005, got %d", cfg.Server.Port)
	}
	if cfg.Room.EmptyTTL != 90*time.Second {
		t.Fatalf("expected TTL 90s, got %v", cfg.Room.EmptyTTL)
	}
	want := []string{"https://luba.tv", "https://staging.luba.tv"}
	if len(cfg.CORS.AllowedOrigins) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.CORS.AllowedOrigins)
	}
	for i := range want {
		if cfg.CORS.AllowedOrigins[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, cfg.CORS.AllowedOrigins)
		}
	}
}

func TestSplitOrigins(t *testing.T) {
	if got := splitOrigins(""); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	got := splitOrigins(" https://a.example ,, https://b.example ")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("got %v", got)
	}
}

package redis

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Host != "localhost" {
		t.Errorf("Host = %s, want localhost", cfg.Host)
	}
	if cfg.Port != 6379 {
		t.Errorf("Port = %d, want 6379", cfg.Port)
	}
	if cfg.PoolSize != 100 {
		t.Errorf("PoolSize = %d, want 100", cfg.PoolSize)
	}
	if cfg.DialTimeout != 5*time.Second {
		t.Errorf("DialTimeout = %v, want 5s", cfg.DialTimeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
}

func TestConfigAddr(t *testing.T) {
	cfg := &Config{Host: "redis.internal", Port: 6380}

	if got := cfg.Addr(); got != "redis.internal:6380" {
		t.Errorf("Addr() = %s, want redis.internal:6380", got)
	}
}

package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "admission-service",
			Environment: "development",
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:   "localhost",
			DBName: "admission_db",
		},
		JWT: JWTConfig{
			Secret: "test-secret",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing app name",
			mutate:  func(cfg *Config) { cfg.App.Name = "" },
			wantErr: "app name",
		},
		{
			name:    "port zero",
			mutate:  func(cfg *Config) { cfg.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "port out of range",
			mutate:  func(cfg *Config) { cfg.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "missing database host",
			mutate:  func(cfg *Config) { cfg.Database.Host = "" },
			wantErr: "database host",
		},
		{
			name:    "missing database name",
			mutate:  func(cfg *Config) { cfg.Database.DBName = "" },
			wantErr: "database name",
		},
		{
			name:    "missing jwt secret",
			mutate:  func(cfg *Config) { cfg.JWT.Secret = "" },
			wantErr: "JWT secret",
		},
		{
			name: "default jwt secret in production",
			mutate: func(cfg *Config) {
				cfg.App.Environment = "production"
				cfg.JWT.Secret = "your-secret-key-change-in-production"
			},
			wantErr: "changed in production",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := validConfig()
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Error("development config misclassified")
	}

	cfg.App.Environment = "production"
	if cfg.IsDevelopment() || !cfg.IsProduction() {
		t.Error("production config misclassified")
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := &DatabaseConfig{
		Host: "db.internal", Port: 5433, User: "svc", Password: "pw",
		DBName: "admission_db", SSLMode: "require",
	}
	want := "host=db.internal port=5433 user=svc password=pw dbname=admission_db sslmode=require"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestRedisAddr(t *testing.T) {
	r := &RedisConfig{Host: "cache.internal", Port: 6380}
	if got := r.Addr(); got != "cache.internal:6380" {
		t.Errorf("Addr() = %q", got)
	}
}

package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Upstream.BaseURL == "" {
		t.Error("Upstream.BaseURL default is empty")
	}
	if len(cfg.Auth.APIKeys) == 0 {
		t.Error("no default API key")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("BACKEND_BASE_URL", "https://erp.example.com/api")
	t.Setenv("API_KEYS", "k1,k2")
	t.Setenv("SESSION_TTL_MINUTES", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error = %v", err)
	}

	if cfg.Server.Port != "9000" {
		t.Errorf("Port = %s, want 9000", cfg.Server.Port)
	}
	if cfg.Upstream.BaseURL != "https://erp.example.com/api" {
		t.Errorf("BaseURL = %s", cfg.Upstream.BaseURL)
	}
	if len(cfg.Auth.APIKeys) != 2 {
		t.Errorf("APIKeys = %v, want 2 keys", cfg.Auth.APIKeys)
	}
	if cfg.Auth.SessionTTLMinutes != 30 {
		t.Errorf("SessionTTLMinutes = %d, want 30", cfg.Auth.SessionTTLMinutes)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: true,
		},
		{
			name:    "no API keys",
			mutate:  func(c *Config) { c.Auth.APIKeys = nil },
			wantErr: true,
		},
		{
			name:    "missing backend URL",
			mutate:  func(c *Config) { c.Upstream.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "zero session TTL",
			mutate:  func(c *Config) { c.Auth.SessionTTLMinutes = 0 },
			wantErr: true,
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() unexpected error = %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

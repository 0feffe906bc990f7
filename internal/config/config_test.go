package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Store.Type != StoreMemory {
		t.Errorf("expected memory store by default, got %q", cfg.Store.Type)
	}
	if cfg.Chat.Resolver != ResolverRules {
		t.Errorf("expected rules resolver by default, got %q", cfg.Chat.Resolver)
	}
	if cfg.Chat.HistoryLimit != 10 {
		t.Errorf("expected history limit 10, got %d", cfg.Chat.HistoryLimit)
	}
	if cfg.AI.Timeout != 30*time.Second {
		t.Errorf("expected 30s ai timeout, got %s", cfg.AI.Timeout)
	}
	if cfg.College.HOD != "Dr. Nagveeni K" {
		t.Errorf("unexpected default HOD %q", cfg.College.HOD)
	}
	if cfg.Database.MaxOpenConns != 10 {
		t.Errorf("expected pool size 10, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9090
store:
  type: database
database:
  driver: sqlite
  name: chat.db
chat:
  history_limit: 6
college:
  hod: "Dr. Someone Else"
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHAT_RESOLVER", "completion")
	t.Setenv("AI_PROVIDER", "ark")
	t.Setenv("ARK_API_KEY", "secret")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port from file, got %d", cfg.Server.Port)
	}
	if cfg.Store.Type != StoreDatabase || cfg.Database.Driver != "sqlite" {
		t.Errorf("unexpected store config: %+v / %+v", cfg.Store, cfg.Database)
	}
	if cfg.Chat.HistoryLimit != 6 {
		t.Errorf("expected history limit 6, got %d", cfg.Chat.HistoryLimit)
	}
	if cfg.Chat.Resolver != ResolverCompletion || cfg.AI.Provider != ProviderArk {
		t.Errorf("env overrides not applied: resolver=%q provider=%q", cfg.Chat.Resolver, cfg.AI.Provider)
	}
	if cfg.AI.APIKey != "secret" {
		t.Errorf("expected api key from ARK_API_KEY, got %q", cfg.AI.APIKey)
	}
	if cfg.College.HOD != "Dr. Someone Else" {
		t.Errorf("expected HOD from file, got %q", cfg.College.HOD)
	}
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	base := func() Config {
		return Config{
			Store: StoreConfig{Type: StoreMemory},
			Chat:  ChatConfig{Resolver: ResolverRules, HistoryLimit: 10},
			AI:    AIConfig{Provider: ProviderDashScope},
		}
	}

	cfg := base()
	cfg.Store.Type = "redis"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown store type")
	}

	cfg = base()
	cfg.Store.Type = StoreDatabase
	cfg.Database.Driver = "oracle"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown database driver")
	}

	cfg = base()
	cfg.Chat.Resolver = ResolverCompletion
	cfg.AI.Provider = "openai"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown ai provider")
	}

	cfg = base()
	cfg.Chat.HistoryLimit = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero history limit")
	}

	cfg = base()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

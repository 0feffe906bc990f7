package database

import (
	"context"
	"strings"
	"testing"
	"time"

	"fetw-assistant/internal/config"
	"fetw-assistant/internal/model"
	"fetw-assistant/internal/repository"
)

func TestDialectorNames(t *testing.T) {
	cases := map[string]string{
		"mysql":    "mysql",
		"postgres": "postgres",
		"sqlite":   "sqlite",
	}
	for driver, want := range cases {
		d, err := Dialector(config.DatabaseConfig{Driver: driver, Name: ":memory:"})
		if err != nil {
			t.Fatalf("Dialector(%s) err: %v", driver, err)
		}
		if d.Name() != want {
			t.Errorf("Dialector(%s).Name() = %q, want %q", driver, d.Name(), want)
		}
	}

	if _, err := Dialector(config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestDSNBuilders(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "db.example.com",
		Port:     6543,
		Username: "fetw",
		Password: "pw",
		Name:     "chat",
		Charset:  "utf8mb4",
		SSLMode:  "require",
	}

	pg := postgresDSN(cfg)
	for _, part := range []string{"host=db.example.com", "port=6543", "dbname=chat", "sslmode=require"} {
		if !strings.Contains(pg, part) {
			t.Errorf("postgres dsn %q missing %q", pg, part)
		}
	}

	my := mysqlDSN(cfg)
	if !strings.HasPrefix(my, "fetw:pw@tcp(db.example.com:6543)/chat?") {
		t.Errorf("unexpected mysql dsn %q", my)
	}

	cfg.DSN = "postgresql://u:p@host:6543/postgres"
	if got := postgresDSN(cfg); got != cfg.DSN {
		t.Errorf("explicit dsn not used, got %q", got)
	}
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "release"},
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			Name:         t.TempDir() + "/chat.db",
			MaxIdleConns: 1,
			MaxOpenConns: 1,
			MaxLifetime:  30,
		},
	}

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	defer Close(db)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate err: %v", err)
	}
	if !db.Migrator().HasTable("messages") {
		t.Fatal("messages table not created")
	}
}

func unreachablePostgres() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "release"},
		Database: config.DatabaseConfig{
			Driver:       "postgres",
			DSN:          "postgres://u:p@db.invalid.example:5432/x?connect_timeout=2",
			MaxIdleConns: 1,
			MaxOpenConns: 2,
			MaxLifetime:  30,
		},
	}
}

func TestOpenUnreachableDatabaseKeepsRunning(t *testing.T) {
	db, err := Open(unreachablePostgres())
	if err != nil {
		t.Fatalf("Open should not connect eagerly, got %v", err)
	}
	defer Close(db)

	repo := repository.NewMessageRepository(db)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := repo.Ping(ctx); err == nil {
		t.Fatal("expected ping to fail for an unreachable host")
	}

	history, err := repo.GetBySessionID(ctx, "s1")
	if err != nil || len(history) != 0 {
		t.Fatalf("expected empty history and nil error, got %v / %v", history, err)
	}

	msg := &model.Message{SessionID: "s1", Role: model.MessageRoleUser, Content: "hello"}
	if err := repo.Create(ctx, msg); err == nil {
		t.Fatal("expected write to an unreachable database to fail")
	}
}

func TestMigrateWithRetryStopsOnCancel(t *testing.T) {
	db, err := Open(unreachablePostgres())
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	defer Close(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := MigrateWithRetry(ctx, db, time.Hour); err == nil {
		t.Fatal("expected migration error once the context is cancelled")
	}
}

func TestMigrateWithRetrySucceeds(t *testing.T) {
	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: "release"},
		Database: config.DatabaseConfig{Driver: "sqlite", Name: t.TempDir() + "/chat.db", MaxOpenConns: 1},
	}
	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	defer Close(db)

	if err := MigrateWithRetry(context.Background(), db, time.Millisecond); err != nil {
		t.Fatalf("MigrateWithRetry err: %v", err)
	}
	if !db.Migrator().HasTable("messages") {
		t.Fatal("messages table not created")
	}
}

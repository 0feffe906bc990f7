package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fetw-assistant/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(t.TempDir()+"/test.db"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&model.Message{}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestMessageRepositoryCreateAndOrder(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		msg := &model.Message{SessionID: "s1", Role: model.MessageRoleUser, Content: fmt.Sprintf("m%d", i)}
		if err := repo.Create(ctx, msg); err != nil {
			t.Fatalf("Create err: %v", err)
		}
		if msg.ID <= 0 {
			t.Fatalf("expected server-assigned id, got %d", msg.ID)
		}
		if msg.CreatedAt.IsZero() {
			t.Fatal("expected CreatedAt to be filled")
		}
	}

	msgs, err := repo.GetBySessionID(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	for i, msg := range msgs {
		if msg.Content != fmt.Sprintf("m%d", i) {
			t.Errorf("position %d: got %q", i, msg.Content)
		}
	}
}

func TestMessageRepositorySessionIsolation(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t))
	ctx := context.Background()

	_ = repo.Create(ctx, &model.Message{SessionID: "a", Role: model.MessageRoleUser, Content: "hello a"})
	_ = repo.Create(ctx, &model.Message{SessionID: "b", Role: model.MessageRoleUser, Content: "hello b"})
	_ = repo.Create(ctx, &model.Message{SessionID: "a", Role: model.MessageRoleAssistant, Content: "reply a"})

	a, _ := repo.GetBySessionID(ctx, "a")
	if len(a) != 2 {
		t.Fatalf("expected 2 messages for a, got %d", len(a))
	}
	for _, msg := range a {
		if msg.SessionID != "a" {
			t.Fatalf("message from session %q leaked into a", msg.SessionID)
		}
	}

	b, err := repo.GetBySessionID(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 1 || b[0].Content != "hello b" {
		t.Fatalf("expected only hello b in session b, got %+v", b)
	}
}

func TestMessageRepositoryReadFailureDegradesToEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	_ = repo.Create(ctx, &model.Message{SessionID: "s", Role: model.MessageRoleUser, Content: "stored"})

	sqlDB, _ := db.DB()
	sqlDB.Close()

	msgs, err := repo.GetBySessionID(ctx, "s")
	if err != nil {
		t.Fatalf("expected nil error on read failure, got %v", err)
	}
	if msgs == nil || len(msgs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", msgs)
	}
}

func TestMessageRepositoryWriteFailureSurfaces(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)

	sqlDB, _ := db.DB()
	sqlDB.Close()

	err := repo.Create(context.Background(), &model.Message{SessionID: "s", Role: model.MessageRoleUser, Content: "lost?"})
	if err == nil {
		t.Fatal("expected write failure to be returned")
	}
}

func TestMessageRepositoryRejectsInvalid(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t))
	err := repo.Create(context.Background(), &model.Message{SessionID: "s", Role: model.MessageRoleUser})
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

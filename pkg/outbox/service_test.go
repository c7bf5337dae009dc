package outbox

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bingbai-ux/baoflow-backend/pkg/db/models"
	"github.com/bingbai-ux/baoflow-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	schema := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	if err := conn.Exec(schema).Error; err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return conn
}

func TestEmitWritesEnvelope(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepository(db), nil)

	actorID := uuid.New()
	dealID := uuid.New()
	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventDealStatusChanged,
			AggregateType: enums.AggregateDeal,
			AggregateID:   dealID,
			Version:       1,
			Actor:         &ActorRef{ActorID: actorID, Role: "sales"},
			Data:          map[string]string{"from": "M04", "to": "M05"},
		})
	})
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	var row models.OutboxEvent
	if err := db.First(&row).Error; err != nil {
		t.Fatalf("load outbox row: %v", err)
	}
	if row.EventType != enums.EventDealStatusChanged {
		t.Fatalf("unexpected event type %s", row.EventType)
	}
	if row.AggregateID != dealID {
		t.Fatalf("unexpected aggregate id %s", row.AggregateID)
	}

	var envelope PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Actor == nil || envelope.Actor.ActorID != actorID {
		t.Fatalf("actor not preserved: %+v", envelope.Actor)
	}
	if envelope.EventID == "" || envelope.OccurredAt.IsZero() {
		t.Fatalf("envelope metadata missing: %+v", envelope)
	}
}

func TestEmitRequiresTransaction(t *testing.T) {
	svc := NewService(NewRepository(newTestDB(t)), nil)
	if err := svc.Emit(context.Background(), nil, DomainEvent{}); err == nil {
		t.Fatal("expected error without transaction")
	}
}

func TestFetchUnpublishedAndMark(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventQuotingWinnerChosen,
			AggregateType: enums.AggregateFactoryAssignment,
			AggregateID:   uuid.New(),
			Version:       1,
			Data:          map[string]string{},
		})
	})
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	rows, err := repo.FetchUnpublished(10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 unpublished row, got %d", len(rows))
	}

	if err := repo.MarkPublished(rows[0].ID); err != nil {
		t.Fatalf("mark published: %v", err)
	}
	rows, err = repo.FetchUnpublished(10)
	if err != nil {
		t.Fatalf("fetch after publish: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected 0 unpublished rows, got %d", len(rows))
	}
}

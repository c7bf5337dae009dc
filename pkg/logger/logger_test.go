package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &buf})

	ctx := logg.WithDealID(context.Background(), "deal-123")
	ctx = logg.WithActorID(ctx, "actor-9")
	logg.Info(ctx, "status advanced")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid log json: %v", err)
	}
	if entry["deal_id"] != "deal-123" {
		t.Fatalf("deal_id missing: %v", entry)
	}
	if entry["actor_id"] != "actor-9" {
		t.Fatalf("actor_id missing: %v", entry)
	}
	if entry["service"] != "test" {
		t.Fatalf("service missing: %v", entry)
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if lvl := ParseLevel("nonsense"); lvl != zerolog.InfoLevel {
		t.Fatalf("unexpected level %v", lvl)
	}
	if lvl := ParseLevel("debug"); lvl != zerolog.DebugLevel {
		t.Fatalf("unexpected level %v", lvl)
	}
}

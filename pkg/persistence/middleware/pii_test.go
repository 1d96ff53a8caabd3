package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := NewMockStore()
	// Mask fields whose id contains "nick" on top of the default PII kinds.
	mw := middleware.NewPIIMiddleware([]string{"nick"})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	sessionID := "pii-session"
	state := contactState(sessionID)
	state.Memory = state.Memory.
		With("email", domain.TextValue(domain.KindEmail, "mario@example.com")).
		With("nickname", domain.TextValue(domain.KindGeneric, "supermario")).
		Confirm("email")
	state.Transcript = []domain.Turn{
		{Speaker: domain.SpeakerUser, Text: "it is mario@example.com", NodeID: "email"},
		{Speaker: domain.SpeakerBot, Text: "Thanks"},
	}

	if err := secureStore.Save(ctx, sessionID, state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if v, _ := state.Memory.Get("email"); v.String() != "mario@example.com" {
		t.Error("Middleware modified original state in memory!")
	}
	if state.Transcript[0].Text != "it is mario@example.com" {
		t.Error("Middleware modified original transcript in memory!")
	}

	storedState, err := underlyingStore.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}

	if v, _ := storedState.Memory.Get("email"); v.String() != middleware.Mask {
		t.Errorf("Email should be masked, got: %v", v.String())
	}
	if !storedState.Memory.Confirmed("email") {
		t.Error("Masking must keep the confirmation flag")
	}
	if v, _ := storedState.Memory.Get("nickname"); v.String() != middleware.Mask {
		t.Errorf("Pattern-matched field should be masked, got: %v", v.String())
	}
	if storedState.Transcript[0].Text != "it is ***" {
		t.Errorf("Transcript should be redacted, got: %q", storedState.Transcript[0].Text)
	}
	if storedState.Transcript[1].Text != "Thanks" {
		t.Error("Unrelated turns must be left alone")
	}
}

func TestWrap_Order(t *testing.T) {
	underlyingStore := NewMockStore()
	key := generateKey(t)
	store := middleware.Wrap(underlyingStore,
		middleware.NewPIIMiddleware(nil),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)

	ctx := context.Background()
	state := contactState("s1")
	state.Memory = state.Memory.With("email", domain.TextValue(domain.KindEmail, "mario@example.com"))
	if err := store.Save(ctx, "s1", state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v, _ := loaded.Memory.Get("email"); v.String() != middleware.Mask {
		t.Errorf("Expected masking before encryption, got %q", v.String())
	}
}

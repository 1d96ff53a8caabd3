package middleware_test

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/persistence/middleware"
	"github.com/aretw0/slotfill/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func contactState(sessionID string) *domain.State {
	plan := domain.BuildPlan([]domain.Node{
		{ID: "email", Label: "Email", Type: domain.NodeMain, Kind: domain.KindEmail},
		{ID: "nickname", Label: "Nickname", Type: domain.NodeMain, Kind: domain.KindGeneric},
	})
	return domain.NewState(sessionID, plan)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := NewMockStore()
	key := generateKey(t)
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	sessionID := "test-session"
	originalState := contactState(sessionID)
	originalState.Memory = originalState.Memory.With("email", domain.TextValue(domain.KindEmail, "mario@example.com"))

	if err := secureStore.Save(ctx, sessionID, originalState); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	storedState, err := underlyingStore.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if storedState.Memory.Present("email") {
		t.Fatal("Expected email to be hidden inside the envelope")
	}
	if len(storedState.Plan.Order) != 0 {
		t.Fatal("Expected plan to be hidden inside the envelope")
	}
	if storedState.Mode != originalState.Mode {
		t.Errorf("Expected mode %s to stay visible, got %s", originalState.Mode, storedState.Mode)
	}

	loadedState, err := secureStore.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if v, _ := loadedState.Memory.Get("email"); v.String() != "mario@example.com" {
		t.Errorf("Expected 'mario@example.com', got %v", v.String())
	}
	if len(loadedState.Plan.Order) != 2 {
		t.Errorf("Expected plan to survive the round trip")
	}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunStateStoreContract(t, mw(NewMockStore()))
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)

	ctx := context.Background()
	sessionID := "rotation-session"
	originalState := contactState(sessionID)
	originalState.Memory = originalState.Memory.With("nickname", domain.TextValue(domain.KindGeneric, "old"))

	if err := secureStoreOld.Save(ctx, sessionID, originalState); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loadedState, err := secureStoreNew.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Load with rotated key failed: %v", err)
	}
	if v, _ := loadedState.Memory.Get("nickname"); v.String() != "old" {
		t.Errorf("Decryption with fallback key failed")
	}

	loadedState.Memory = loadedState.Memory.With("nickname", domain.TextValue(domain.KindGeneric, "new"))
	if err := secureStoreNew.Save(ctx, sessionID, loadedState); err != nil {
		t.Fatalf("Save with new key failed: %v", err)
	}

	if _, err = secureStoreOld.Load(ctx, sessionID); err == nil {
		t.Error("Expected failure when loading new-key encryption with old-key middleware")
	}
}

func TestEncryptionMiddleware_RejectsPlainState(t *testing.T) {
	underlyingStore := NewMockStore()
	ctx := context.Background()
	_ = underlyingStore.Save(ctx, "plain", contactState("plain"))

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	_, err := secureStore.Load(ctx, "plain")
	if !errors.Is(err, middleware.ErrNotEncrypted) {
		t.Fatalf("Expected ErrNotEncrypted, got %v", err)
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("Expected panic for invalid key size")
			return
		}
		if !strings.Contains(r.(string), "32 bytes") {
			t.Errorf("Unexpected panic: %v", r)
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
}

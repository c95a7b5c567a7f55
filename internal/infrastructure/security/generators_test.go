package security

import (
	"encoding/hex"
	"testing"
	"time"
)

func TestGenerateSecureKey(t *testing.T) {
	key, err := GenerateSecureKey(64)
	if err != nil {
		t.Fatalf("GenerateSecureKey failed: %v", err)
	}
	if len(key) != 64 {
		t.Errorf("generated key has %d characters, want 64", len(key))
	}
	if _, err := hex.DecodeString(key); err != nil {
		t.Errorf("generated key is not hex: %v", err)
	}

	other, err := GenerateSecureKey(64)
	if err != nil {
		t.Fatalf("GenerateSecureKey failed: %v", err)
	}
	if key == other {
		t.Error("two generated keys are identical")
	}
}

// A generated key has to be usable as a JWT secret straight away.
func TestGenerateSecureKeySignsTokens(t *testing.T) {
	secret, err := GenerateSecureKey(64)
	if err != nil {
		t.Fatalf("GenerateSecureKey failed: %v", err)
	}

	token, err := GenerateAdminToken(secret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateAdminToken failed: %v", err)
	}
	if err := ValidateAdminToken(token, secret); err != nil {
		t.Errorf("token signed with a generated secret failed validation: %v", err)
	}
	if err := ValidateAdminToken(token, "wrong-secret"); err == nil {
		t.Error("token validated against a different secret")
	}
}

func TestGenerateULIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateULID()
		if len(id) != 26 {
			t.Fatalf("ULID %q has length %d, want 26", id, len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate ULID %q", id)
		}
		seen[id] = true
	}
}

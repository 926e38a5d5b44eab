package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDTONeverCarriesSecrets(t *testing.T) {
	u := User{
		ID:                  1,
		Username:            "alice",
		Email:               "alice@chat.local",
		Password:            "$2a$10$hash",
		ServerDomain:        "chat.local",
		PublicKey:           "pub",
		EncryptedPrivateKey: "priv",
	}

	raw, err := json.Marshal(u.DTO())
	if err != nil {
		t.Fatalf("marshal dto: %v", err)
	}
	for _, secret := range []string{"$2a$10$hash", "priv", "pub"} {
		if strings.Contains(string(raw), secret) {
			t.Fatalf("dto serialization leaks %q: %s", secret, raw)
		}
	}

	// The entity's own serialization hides them too.
	raw, err = json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}
	for _, secret := range []string{"$2a$10$hash", "priv"} {
		if strings.Contains(string(raw), secret) {
			t.Fatalf("user serialization leaks %q: %s", secret, raw)
		}
	}
}

func TestFederatedID(t *testing.T) {
	u := UserDTO{ID: 7, Username: "bob", ServerDomain: "chat.example.org"}
	if got := u.FederatedID(); got != "7@chat.example.org" {
		t.Fatalf("federated id=%q", got)
	}
	local := UserDTO{ID: 7, Username: "bob"}
	if got := local.FederatedID(); got != "7" {
		t.Fatalf("local id=%q", got)
	}
}

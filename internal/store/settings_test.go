package store

import (
	"context"
	"testing"

	"github.com/officeflow/officeflow/internal/db"
)

func TestGetJWTSecretPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret: %v", err)
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(first))
	}

	second, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret: %v", err)
	}
	if first != second {
		t.Error("expected secret to persist between calls")
	}
}

func TestSecretsAreIndependent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	jwtSecret, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret: %v", err)
	}
	fileSecret, err := GetFileSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetFileSecret: %v", err)
	}

	if jwtSecret == fileSecret {
		t.Error("expected distinct secrets for tokens and download URLs")
	}

	again, err := GetFileSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetFileSecret: %v", err)
	}
	if again != fileSecret {
		t.Error("expected file secret to persist")
	}
}

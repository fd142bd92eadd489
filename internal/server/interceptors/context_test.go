package interceptors

import (
	"context"
	"testing"
)

func TestUserID(t *testing.T) {
	if _, ok := GetUserID(context.Background()); ok {
		t.Fatal("GetUserID should return false when not set")
	}
	ctx := WithUserID(context.Background(), 42)
	got, ok := GetUserID(ctx)
	if !ok || got != 42 {
		t.Errorf("GetUserID = %d, %v; want 42, true", got, ok)
	}
}

func TestRequestID(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID = %q, want empty", got)
	}
	if got := GetRequestID(WithRequestID(context.Background(), "r-1")); got != "r-1" {
		t.Errorf("GetRequestID = %q, want r-1", got)
	}
}

func TestSetAuditTarget(t *testing.T) {
	SetAuditTarget(context.Background(), 3, "ignored")

	ctx, target := withAuditTarget(context.Background())
	if _, _, ok := target.get(); ok {
		t.Fatal("target must start unset")
	}
	SetAuditTarget(ctx, 3, "add_location")
	orgID, action, ok := target.get()
	if !ok || orgID != 3 || action != "add_location" {
		t.Errorf("target = %d %q %v", orgID, action, ok)
	}
}

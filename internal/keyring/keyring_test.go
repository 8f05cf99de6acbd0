package keyring

import (
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

const testAPI = "http://localhost:8000/api/v1"

func TestSetAndGetLoginEmail(t *testing.T) {
	gokeyring.MockInit()

	if err := SetLoginEmail(testAPI, "ada@example.com"); err != nil {
		t.Fatalf("SetLoginEmail() failed: %v", err)
	}

	got, err := GetLoginEmail(testAPI)
	if err != nil {
		t.Fatalf("GetLoginEmail() failed: %v", err)
	}
	if got != "ada@example.com" {
		t.Errorf("GetLoginEmail() = %q, want %q", got, "ada@example.com")
	}

	// Trailing slash addresses the same backend
	got, err = GetLoginEmail(testAPI + "/")
	if err != nil || got != "ada@example.com" {
		t.Errorf("GetLoginEmail(trailing slash) = %q, %v; want ada@example.com", got, err)
	}
}

func TestLoginIsScopedPerBackend(t *testing.T) {
	gokeyring.MockInit()

	if err := SetLoginEmail(testAPI, "ada@example.com"); err != nil {
		t.Fatalf("SetLoginEmail() failed: %v", err)
	}

	if _, err := GetLoginEmail("http://other:9000/api/v1"); err != ErrNotFound {
		t.Errorf("GetLoginEmail(other backend) error = %v, want %v", err, ErrNotFound)
	}
}

func TestSetLoginEmailEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetLoginEmail(testAPI, "  "); err == nil {
		t.Error("SetLoginEmail(blank) should return an error")
	}
}

func TestDeleteLoginEmail(t *testing.T) {
	gokeyring.MockInit()

	if err := SetLoginEmail(testAPI, "ada@example.com"); err != nil {
		t.Fatalf("SetLoginEmail() failed: %v", err)
	}
	if err := DeleteLoginEmail(testAPI); err != nil {
		t.Fatalf("DeleteLoginEmail() failed: %v", err)
	}
	if _, err := GetLoginEmail(testAPI); err != ErrNotFound {
		t.Errorf("GetLoginEmail() after delete error = %v, want %v", err, ErrNotFound)
	}
	if err := DeleteLoginEmail(testAPI); err != ErrNotFound {
		t.Errorf("second DeleteLoginEmail() error = %v, want %v", err, ErrNotFound)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false with mock keyring, want true")
	}
}

package api

import (
	"context"
	"errors"
	"testing"

	"github.com/mcosta/helpchat/internal/config"
	apierrors "github.com/mcosta/helpchat/internal/errors"
)

// ============================================================================
// Client Construction Tests
// ============================================================================

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(&config.Credentials{})
	if !errors.Is(err, apierrors.ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(&config.Credentials{APIKey: "hc-test"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	if client.BaseURL() != config.DefaultBaseURL {
		t.Errorf("expected default base URL %q, got %q", config.DefaultBaseURL, client.BaseURL())
	}
	if client.Model() == "" {
		t.Error("expected a default model")
	}
}

func TestNewClientOptions(t *testing.T) {
	client, err := NewClient(
		&config.Credentials{APIKey: "hc-test", BaseURL: "https://example.test/v1/"},
		WithModel("qa-custom"),
	)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	if client.Model() != "qa-custom" {
		t.Errorf("expected model qa-custom, got %q", client.Model())
	}
	if got := client.endpoint(); got != "https://example.test/v1/chat/completions" {
		t.Errorf("unexpected endpoint %q", got)
	}
}

func TestSetModel(t *testing.T) {
	client, err := NewClient(&config.Credentials{APIKey: "hc-test"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	client.SetModel("qa-next")
	if client.Model() != "qa-next" {
		t.Errorf("expected qa-next, got %q", client.Model())
	}
}

// ============================================================================
// Client Lifecycle Tests
// ============================================================================

func TestClosedClientRejectsStreams(t *testing.T) {
	client, err := NewClient(&config.Credentials{APIKey: "hc-test"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	client.Close()
	if !client.IsClosed() {
		t.Fatal("expected IsClosed after Close")
	}

	fragments, errs := client.StreamAnswer(context.Background(), nil)
	for range fragments {
		t.Error("closed client must not emit fragments")
	}
	select {
	case err := <-errs:
		if err == nil {
			t.Error("expected an error from a closed client")
		}
	default:
		t.Error("expected an error from a closed client")
	}
}

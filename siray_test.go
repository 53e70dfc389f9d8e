package siray

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestNew_APIKeyResolution(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		envKey  string
		wantKey string
		wantErr bool
	}{
		{
			name:    "explicit key",
			opts:    []Option{WithAPIKey("explicit-key")},
			wantKey: "explicit-key",
		},
		{
			name:    "env fallback",
			envKey:  "env-key",
			wantKey: "env-key",
		},
		{
			name:    "explicit key wins over env",
			opts:    []Option{WithAPIKey("explicit-key")},
			envKey:  "env-key",
			wantKey: "explicit-key",
		},
		{
			name:    "no key anywhere",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SIRAY_API_KEY", tt.envKey)

			client, err := New(tt.opts...)
			if tt.wantErr {
				if !errors.Is(err, ErrMissingAPIKey) {
					t.Fatalf("New() error = %v, want ErrMissingAPIKey", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
			if client.APIKey() != tt.wantKey {
				t.Errorf("APIKey() = %q, want %q", client.APIKey(), tt.wantKey)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	client, err := New(WithAPIKey("k"))
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	if client.BaseURL() != "https://api.siray.ai" {
		t.Errorf("BaseURL() = %q, want https://api.siray.ai", client.BaseURL())
	}
	if client.GatewayURL() != client.BaseURL() {
		t.Errorf("GatewayURL() = %q, want base URL by default", client.GatewayURL())
	}
	if client.httpClient.Timeout != 120*time.Second {
		t.Errorf("timeout = %v, want 120s", client.httpClient.Timeout)
	}

	if client.Image == nil || client.Video == nil || client.Files == nil {
		t.Fatal("expected all namespaces to be initialized")
	}
	if client.Image.Action() != "imageGenerate" {
		t.Errorf("Image.Action() = %q, want imageGenerate", client.Image.Action())
	}
	if client.Video.Action() != "videoGenerate" {
		t.Errorf("Video.Action() = %q, want videoGenerate", client.Video.Action())
	}
}

func TestNew_Overrides(t *testing.T) {
	hc := &http.Client{Timeout: 5 * time.Second}
	client, err := New(
		WithAPIKey("k"),
		WithBaseURL("https://api.example.com/"),
		WithGatewayURL("https://gateway.example.com/"),
		WithHTTPClient(hc),
	)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	if client.BaseURL() != "https://api.example.com" {
		t.Errorf("BaseURL() = %q, want trailing slash trimmed", client.BaseURL())
	}
	if client.GatewayURL() != "https://gateway.example.com" {
		t.Errorf("GatewayURL() = %q, want trailing slash trimmed", client.GatewayURL())
	}
	if client.httpClient != hc {
		t.Error("WithHTTPClient did not replace the HTTP client")
	}
}

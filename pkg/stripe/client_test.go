package stripe

import (
	"context"
	"testing"

	"github.com/stitchlink/stitchlink-backend/pkg/config"
)

func TestNewClientValidatesKeyAgainstEnvironment(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.StripeConfig
		wantErr bool
	}{
		{
			name: "test key in test env",
			cfg:  config.StripeConfig{APIKey: "sk_test_123", WebhookSecret: "whsec_x", Env: "test"},
		},
		{
			name:    "live key in test env",
			cfg:     config.StripeConfig{APIKey: "sk_live_123", WebhookSecret: "whsec_x", Env: "test"},
			wantErr: true,
		},
		{
			name:    "missing api key",
			cfg:     config.StripeConfig{WebhookSecret: "whsec_x"},
			wantErr: true,
		},
		{
			name:    "missing webhook secret",
			cfg:     config.StripeConfig{APIKey: "sk_test_123"},
			wantErr: true,
		},
		{
			name:    "unknown environment",
			cfg:     config.StripeConfig{APIKey: "sk_test_123", WebhookSecret: "whsec_x", Env: "staging"},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), tc.cfg, nil)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.SigningSecret() != "whsec_x" {
				t.Fatalf("unexpected signing secret %q", client.SigningSecret())
			}
		})
	}
}

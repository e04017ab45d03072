package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateSessionToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env      string
		wantHead string
	}{
		{EnvLive, "bs_live_"},
		{EnvTest, "bs_test_"},
		{"staging", "bs_live_"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()

			tok, err := GenerateSessionToken(tt.env)
			if err != nil {
				t.Fatalf("GenerateSessionToken failed: %v", err)
			}
			if !strings.HasPrefix(tok.Plaintext, tt.wantHead) {
				t.Errorf("token %q should start with %q", tok.Plaintext, tt.wantHead)
			}
			if len(tok.Prefix) != TokenPrefixLen {
				t.Errorf("prefix length = %d, want %d", len(tok.Prefix), TokenPrefixLen)
			}

			parsed, err := ParseSessionToken(tok.Plaintext)
			if err != nil {
				t.Fatalf("generated token should parse: %v", err)
			}
			if parsed.Prefix != tok.Prefix {
				t.Errorf("parsed prefix %q, want %q", parsed.Prefix, tok.Prefix)
			}

			ok, err := VerifyPassword(tok.Plaintext, tok.Hash)
			if err != nil || !ok {
				t.Errorf("token should verify against its hash: ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestGenerateSessionToken_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		tok, err := GenerateSessionToken(EnvTest)
		if err != nil {
			t.Fatalf("GenerateSessionToken failed: %v", err)
		}
		if seen[tok.Prefix] {
			t.Fatalf("duplicate prefix %q", tok.Prefix)
		}
		seen[tok.Prefix] = true
	}
}

func TestParseSessionToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		token      string
		wantEnv    string
		wantPrefix string
		wantErr    error
	}{
		{
			name:       "valid live token",
			token:      "bs_live_abc123def456_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantEnv:    "live",
			wantPrefix: "abc123def456",
		},
		{
			name:       "valid test token",
			token:      "bs_test_000000000000_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantEnv:    "test",
			wantPrefix: "000000000000",
		},
		{
			name:    "api key style prefix",
			token:   "pk_live_abc123def456_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "unknown env",
			token:   "bs_prod_abc123def456_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "short prefix",
			token:   "bs_live_abc123_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "uppercase hex",
			token:   "bs_live_ABC123DEF456_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
			wantErr: ErrInvalidTokenFormat,
		},
		{
			name:    "empty",
			token:   "",
			wantErr: ErrInvalidTokenFormat,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := ParseSessionToken(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseSessionToken error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if parsed.Env != tt.wantEnv || parsed.Prefix != tt.wantPrefix {
				t.Errorf("parsed = %+v, want env %q prefix %q", parsed, tt.wantEnv, tt.wantPrefix)
			}
		})
	}
}

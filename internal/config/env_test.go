package config

import (
	"errors"
	"strings"
	"testing"
)

func TestCredentialsValidateOrder(t *testing.T) {
	cases := []struct {
		name    string
		creds   Credentials
		wantVar string
	}{
		{"all missing", Credentials{}, EnvSupabaseURL},
		{"url only", Credentials{SupabaseURL: "https://x.supabase.co"}, EnvSupabaseKey},
		{"url and key", Credentials{SupabaseURL: "https://x.supabase.co", SupabaseKey: "k"}, EnvAppEnv},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.creds.Validate()
			var mv MissingVarError
			if !errors.As(err, &mv) {
				t.Fatalf("Validate() = %v, want MissingVarError", err)
			}
			if mv.Name != tc.wantVar {
				t.Errorf("missing var = %s, want %s", mv.Name, tc.wantVar)
			}
			if !strings.Contains(err.Error(), tc.wantVar) {
				t.Errorf("error %q does not name %s", err, tc.wantVar)
			}
		})
	}
}

func TestCredentialsValidateComplete(t *testing.T) {
	creds := Credentials{
		SupabaseURL: "https://x.supabase.co",
		SupabaseKey: "anon",
		Env:         "production",
	}
	if err := creds.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
	if !creds.Production() {
		t.Error("Production() = false for env=production")
	}
}

func TestCredentialsFromEnvLegacyAlias(t *testing.T) {
	t.Setenv(EnvSupabaseURL, "https://x.supabase.co")
	t.Setenv(EnvSupabaseKey, "anon")
	t.Setenv(EnvAppEnv, "")
	t.Setenv(EnvAppEnvLegacy, "production")

	creds := CredentialsFromEnv()
	if creds.Env != "production" {
		t.Errorf("Env = %q, want legacy alias value", creds.Env)
	}

	// The modern name wins when both are set.
	t.Setenv(EnvAppEnv, "staging")
	creds = CredentialsFromEnv()
	if creds.Env != "staging" {
		t.Errorf("Env = %q, want %q", creds.Env, "staging")
	}
}

func TestCredentialsFromEnvTrimsWhitespace(t *testing.T) {
	t.Setenv(EnvSupabaseURL, "  https://x.supabase.co \n")
	t.Setenv(EnvSupabaseKey, " anon ")
	t.Setenv(EnvAppEnv, " production ")

	creds := CredentialsFromEnv()
	if creds.SupabaseURL != "https://x.supabase.co" {
		t.Errorf("SupabaseURL = %q", creds.SupabaseURL)
	}
	if err := creds.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

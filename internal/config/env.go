package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	EnvSupabaseURL = "SUPABASE_URL"
	EnvSupabaseKey = "SUPABASE_ANON_KEY"
	EnvAppEnv      = "APP_ENV"

	// Legacy name carried over from the pre-rewrite deployment; existing
	// CI secrets still set it, so it stays a recognized alias.
	EnvAppEnvLegacy = "FLASK_ENV"
)

// MissingVarError names the environment variable that blocked startup.
type MissingVarError struct {
	Name string
}

func (e MissingVarError) Error() string {
	return fmt.Sprintf("required environment variable %s is not set", e.Name)
}

// Credentials is everything the scrape task needs from the environment.
// It is resolved once at startup; nothing else reads os.Getenv.
type Credentials struct {
	SupabaseURL string
	SupabaseKey string
	Env         string // deployment mode, e.g. "production"
}

// CredentialsFromEnv reads and validates the credential set. The anon key
// may be left unset here and filled from the OS keyring by the caller;
// Validate catches it if both are empty.
func CredentialsFromEnv() Credentials {
	env := strings.TrimSpace(os.Getenv(EnvAppEnv))
	if env == "" {
		env = strings.TrimSpace(os.Getenv(EnvAppEnvLegacy))
	}
	return Credentials{
		SupabaseURL: strings.TrimSpace(os.Getenv(EnvSupabaseURL)),
		SupabaseKey: strings.TrimSpace(os.Getenv(EnvSupabaseKey)),
		Env:         env,
	}
}

func (c Credentials) Validate() error {
	if c.SupabaseURL == "" {
		return MissingVarError{Name: EnvSupabaseURL}
	}
	if c.SupabaseKey == "" {
		return MissingVarError{Name: EnvSupabaseKey}
	}
	if c.Env == "" {
		return MissingVarError{Name: EnvAppEnv}
	}
	return nil
}

func (c Credentials) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "scraperd"

const anonKeyAccount = "supabase:anon_key"

// GetAnonKey reads the Supabase anon key from the keychain. Used as a
// fallback when SUPABASE_ANON_KEY isn't in the environment (desktop use).
func GetAnonKey() (string, error) {
	key, err := keyring.Get(KeyringService, anonKeyAccount)
	if err != nil || strings.TrimSpace(key) == "" {
		return "", errors.New("supabase anon key not found (set it in keychain or via env)")
	}
	return key, nil
}

func SetAnonKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("anon key is empty")
	}
	return keyring.Set(KeyringService, anonKeyAccount, key)
}

func DeleteAnonKey() error {
	return keyring.Delete(KeyringService, anonKeyAccount)
}

// IMAP password for the optional email source, keyed by account identity
// so switching mailboxes doesn't clobber old entries.

func imapAccount(username, host string) string {
	return fmt.Sprintf("imap:%s@%s", username, host)
}

func GetIMAPPassword(username, host string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", errors.New("imap username is empty")
	}
	pw, err := keyring.Get(KeyringService, imapAccount(username, host))
	if err != nil || strings.TrimSpace(pw) == "" {
		return "", errors.New("IMAP password not found (set it in keychain)")
	}
	return pw, nil
}

func SetIMAPPassword(username, host, password string) error {
	if strings.TrimSpace(username) == "" {
		return errors.New("imap username is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, imapAccount(username, host), password)
}

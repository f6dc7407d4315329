package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	keyFileName = "key.bin"
	keySize     = 32 // AES-256

	// sealedPrefix marks config values written by Seal
	sealedPrefix = "enc:v1:"
)

// ErrNotSealed is returned by Open for values without the sealed prefix
var ErrNotSealed = errors.New("value is not sealed")

// DataDir returns the application data directory, creating it if needed.
// RETAIL_DATA_DIR overrides the per-user config directory.
func DataDir() (string, error) {
	dir := os.Getenv("RETAIL_DATA_DIR")
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			home, herr := os.UserHomeDir()
			if herr != nil {
				return "", fmt.Errorf("could not determine home directory: %w", herr)
			}
			base = filepath.Join(home, ".config")
		}
		dir = filepath.Join(base, "RetailPOS")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create data directory: %w", err)
	}
	return dir, nil
}

// Vault seals short secrets such as passwords and API credentials with a
// per-installation AES-GCM key
type Vault struct {
	aead cipher.AEAD
}

// OpenVault loads the key stored in dir, generating it on first use
func OpenVault(dir string) (*Vault, error) {
	key, err := loadOrCreateKey(filepath.Join(dir, keyFileName))
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("could not create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("could not create GCM: %w", err)
	}
	return &Vault{aead: aead}, nil
}

func loadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(key) != keySize {
			return nil, fmt.Errorf("key file %s holds %d bytes, want %d", path, len(key), keySize)
		}
		return key, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("could not read key file: %w", err)
	}

	key = make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("could not generate key: %w", err)
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		return nil, fmt.Errorf("could not write key file: %w", err)
	}
	return key, nil
}

// Seal encrypts plain. Empty values stay empty.
func (v *Vault) Seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("could not generate nonce: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plain), nil)
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal
func (v *Vault) Open(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	encoded, ok := strings.CutPrefix(value, sealedPrefix)
	if !ok {
		return "", ErrNotSealed
	}
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("could not decode sealed value: %w", err)
	}
	n := v.aead.NonceSize()
	if len(data) < n {
		return "", errors.New("sealed value too short")
	}
	plain, err := v.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", fmt.Errorf("could not decrypt: %w", err)
	}
	return string(plain), nil
}

// OpenOrPlain returns value decrypted when it is sealed and unchanged
// otherwise, so hand-edited config files may hold plain secrets
func (v *Vault) OpenOrPlain(value string) (string, error) {
	plain, err := v.Open(value)
	if errors.Is(err, ErrNotSealed) {
		return value, nil
	}
	return plain, err
}

// DefaultVault opens the vault of the application data directory
func DefaultVault() (*Vault, error) {
	dir, err := DataDir()
	if err != nil {
		return nil, err
	}
	return OpenVault(dir)
}

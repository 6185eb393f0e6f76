// Package keys seals and opens the relay operator's signing key so it can sit
// in configuration at rest. A sealed key is "sealed:" followed by base64 of
// nonce || ciphertext || tag under AES-256-GCM. The AES key is derived with
// HKDF-SHA256 from a master secret of at least 32 bytes.
package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/hkdf"
)

// SealedPrefix marks a sealed key in configuration.
const SealedPrefix = "sealed:"

const (
	minMasterSize  = 32
	privateKeySize = 32
	hkdfInfo       = "bridge-relay-operator-key"
)

// ErrMasterKeyRequired is returned when a sealed key is configured without a master secret.
var ErrMasterKeyRequired = errors.New("master key is required to open a sealed operator key")

// GenerateMasterKey returns a random 32 byte master secret.
func GenerateMasterKey() ([]byte, error) {
	key := make([]byte, minMasterSize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}
	return key, nil
}

// MasterKeyToBase64 encodes a master secret for storage in the environment.
func MasterKeyToBase64(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// MasterKeyFromBase64 decodes a master secret.
func MasterKeyFromBase64(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("failed to decode master key: %w", err)
	}
	if len(key) < minMasterSize {
		return nil, fmt.Errorf("master key must be at least %d bytes, got %d", minMasterSize, len(key))
	}
	return key, nil
}

func newGCM(master []byte) (cipher.AEAD, error) {
	if len(master) < minMasterSize {
		return nil, fmt.Errorf("master key must be at least %d bytes", minMasterSize)
	}
	aesKey := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(hkdfInfo)), aesKey); err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}
	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Seal encrypts key under master and returns the prefixed configuration value.
func Seal(key *ecdsa.PrivateKey, master []byte) (string, error) {
	gcm, err := newGCM(master)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, crypto.FromECDSA(key), nil)
	return SealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
func Open(sealed string, master []byte) (*ecdsa.PrivateKey, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, SealedPrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to decode sealed key: %w", err)
	}
	gcm, err := newGCM(master)
	if err != nil {
		return nil, err
	}
	if len(raw) < gcm.NonceSize() {
		return nil, errors.New("sealed key too short")
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt operator key: %w", err)
	}
	if len(plain) != privateKeySize {
		return nil, fmt.Errorf("decrypted key has wrong size: got %d, want %d", len(plain), privateKeySize)
	}
	return crypto.ToECDSA(plain)
}

// LoadOperatorKey parses a configured operator key, either a hex secp256k1
// key (with or without 0x) or a sealed one opened with the base64 master secret.
func LoadOperatorKey(value, masterB64 string) (*ecdsa.PrivateKey, error) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, SealedPrefix) {
		raw := strings.TrimPrefix(value, "0x")
		if _, err := hex.DecodeString(raw); err != nil {
			return nil, fmt.Errorf("operator key is not hex: %w", err)
		}
		return crypto.HexToECDSA(raw)
	}
	if masterB64 == "" {
		return nil, ErrMasterKeyRequired
	}
	master, err := MasterKeyFromBase64(masterB64)
	if err != nil {
		return nil, err
	}
	return Open(value, master)
}

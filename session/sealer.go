package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"

	"github.com/atriumhq/atrium/domain"
)

// ErrInvalidSession is returned by Unseal for every verification failure:
// bad MAC, expired, malformed, wrong version. Callers never learn which, to
// avoid oracle leakage.
var ErrInvalidSession = errors.New("invalid session")

const (
	// MinPasswordLength is the minimum seal password strength. Seal and
	// Unseal both fail closed below it.
	MinPasswordLength = 32

	tokenPrefix = "v1."
	saltSize    = 16
	keySize     = chacha20poly1305.KeySize
	kdfIters    = 10000
)

// timeNow is swapped in tests to simulate expiry.
var timeNow = time.Now

// sealedPayload is the plaintext serialized inside the AEAD box. IssuedAt
// lives inside the box so expiry is integrity-protected too.
type sealedPayload struct {
	Record   domain.SessionRecord `json:"record"`
	IssuedAt int64                `json:"iat"`
}

func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, kdfIters, keySize, sha256.New)
}

// Seal encrypts and integrity-protects a session record into an opaque token.
// The token format is "v1." + base64url(salt | nonce | aead box).
func Seal(record *domain.SessionRecord, password string, ttl time.Duration) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("seal password must be at least %d characters", MinPasswordLength)
	}
	if record == nil {
		return "", errors.New("nil session record")
	}
	if ttl <= 0 {
		return "", errors.New("non-positive session ttl")
	}

	plaintext, err := json.Marshal(sealedPayload{Record: *record, IssuedAt: timeNow().Unix()})
	if err != nil {
		return "", fmt.Errorf("marshal session payload: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	aead, err := chacha20poly1305.New(deriveKey(password, salt))
	if err != nil {
		return "", fmt.Errorf("init aead: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	box := aead.Seal(nil, nonce, plaintext, nil)

	raw := make([]byte, 0, len(salt)+len(nonce)+len(box))
	raw = append(raw, salt...)
	raw = append(raw, nonce...)
	raw = append(raw, box...)

	return tokenPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}

// Unseal verifies and decrypts a sealed token. Expiry is checked after the
// MAC: a token older than ttl fails exactly like a tampered one.
func Unseal(token, password string, ttl time.Duration) (*domain.SessionRecord, error) {
	if len(password) < MinPasswordLength {
		return nil, ErrInvalidSession
	}
	if !strings.HasPrefix(token, tokenPrefix) {
		return nil, ErrInvalidSession
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(token, tokenPrefix))
	if err != nil {
		return nil, ErrInvalidSession
	}
	if len(raw) < saltSize+chacha20poly1305.NonceSize {
		return nil, ErrInvalidSession
	}

	salt := raw[:saltSize]
	nonce := raw[saltSize : saltSize+chacha20poly1305.NonceSize]
	box := raw[saltSize+chacha20poly1305.NonceSize:]

	aead, err := chacha20poly1305.New(deriveKey(password, salt))
	if err != nil {
		return nil, ErrInvalidSession
	}

	plaintext, err := aead.Open(nil, nonce, box, nil)
	if err != nil {
		return nil, ErrInvalidSession
	}

	var payload sealedPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, ErrInvalidSession
	}

	issued := time.Unix(payload.IssuedAt, 0)
	if timeNow().After(issued.Add(ttl)) {
		return nil, ErrInvalidSession
	}

	return &payload.Record, nil
}

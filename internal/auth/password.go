package auth

// STORED FORMAT:
//
//	<hex salt>:<hex digest>
//	 ^ 16 random bytes, fresh on every Hash call
//	                ^ argon2id(password, salt), 32 bytes
//
// The salt travels with the digest, so Verify needs nothing but the stored
// string. Two Hash calls for the same password never return the same
// credential.
//
// The argon2 parameters are not encoded in the credential. Changing them
// invalidates every stored password, so they live in one place below.

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltLength = 16
	keyLength  = 32

	// MaxPasswordLength bounds the work a single sign-in can cause.
	MaxPasswordLength = 256
)

// argonParams are the argon2id cost settings.
type argonParams struct {
	time    uint32
	memory  uint32 // KiB
	threads uint8
}

var defaultParams = argonParams{time: 1, memory: 64 * 1024, threads: 4}

// PasswordService hashes and verifies password credentials.
//
// It's a struct (not free functions) so tests can run with a much cheaper
// memory cost.
type PasswordService struct {
	params argonParams
}

// NewPasswordService uses the production argon2id parameters.
func NewPasswordService() *PasswordService {
	return &PasswordService{params: defaultParams}
}

// NewPasswordServiceForTest uses a tiny memory cost. Credentials it makes
// only verify with another test service. Do NOT use in production.
func NewPasswordServiceForTest() *PasswordService {
	return &PasswordService{params: argonParams{time: 1, memory: 1024, threads: 1}}
}

// Hash returns a new "salt:digest" credential for plaintext.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordLength {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordLength)
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: generating salt: %w", err)
	}

	digest := p.digest(plaintext, salt, keyLength)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(digest), nil
}

// Verify reports whether plaintext matches credential. A malformed
// credential never matches.
func (p *PasswordService) Verify(plaintext, credential string) bool {
	salt, want, err := splitCredential(credential)
	if err != nil {
		return false
	}
	if len(plaintext) > MaxPasswordLength {
		return false
	}

	got := p.digest(plaintext, salt, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

func (p *PasswordService) digest(plaintext string, salt []byte, n uint32) []byte {
	return argon2.IDKey([]byte(plaintext), salt, p.params.time, p.params.memory, p.params.threads, n)
}

var errMalformedCredential = errors.New("auth: malformed credential")

func splitCredential(credential string) (salt, digest []byte, err error) {
	saltHex, digestHex, ok := strings.Cut(credential, ":")
	if !ok || saltHex == "" || digestHex == "" || strings.Contains(digestHex, ":") {
		return nil, nil, errMalformedCredential
	}
	if salt, err = hex.DecodeString(saltHex); err != nil {
		return nil, nil, errMalformedCredential
	}
	if digest, err = hex.DecodeString(digestHex); err != nil {
		return nil, nil, errMalformedCredential
	}
	if len(digest) != keyLength {
		return nil, nil, errMalformedCredential
	}
	return salt, digest, nil
}

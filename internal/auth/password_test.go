package auth

import (
	"strings"
	"testing"
)

// =========================================================================
// Hash TESTS
// =========================================================================

func TestHash_Format(t *testing.T) {
	ps := NewPasswordServiceForTest()

	cred, err := ps.Hash("my-secret-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	salt, digest, ok := strings.Cut(cred, ":")
	if !ok {
		t.Fatalf("Hash() = %q, want salt:digest", cred)
	}
	if len(salt) != saltLength*2 {
		t.Errorf("salt hex length = %d, want %d", len(salt), saltLength*2)
	}
	if len(digest) != keyLength*2 {
		t.Errorf("digest hex length = %d, want %d", len(digest), keyLength*2)
	}
}

func TestHash_SamePasswordProducesDifferentCredentials(t *testing.T) {
	ps := NewPasswordServiceForTest()

	c1, _ := ps.Hash("same-password")
	c2, _ := ps.Hash("same-password")

	if c1 == c2 {
		t.Error("Hash() produced identical credentials for the same password (salt must be random)")
	}
}

func TestHash_RejectsOverlongPassword(t *testing.T) {
	ps := NewPasswordServiceForTest()

	if _, err := ps.Hash(strings.Repeat("a", MaxPasswordLength+1)); err == nil {
		t.Fatal("Hash() should reject passwords over the maximum length")
	}
	if _, err := ps.Hash(strings.Repeat("a", MaxPasswordLength)); err != nil {
		t.Fatalf("Hash() should accept a password of exactly the maximum length: %v", err)
	}
}

// =========================================================================
// Verify TESTS
// =========================================================================

func TestVerify_CorrectAndWrong(t *testing.T) {
	ps := NewPasswordServiceForTest()

	cred, err := ps.Hash("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !ps.Verify("correct-horse-battery-staple", cred) {
		t.Error("Verify() = false for the correct password")
	}
	if ps.Verify("Correct-horse-battery-staple", cred) {
		t.Error("Verify() = true for a wrong password")
	}
	if ps.Verify("", cred) {
		t.Error("Verify() = true for an empty password")
	}
}

func TestVerify_MalformedCredentialIsFalse(t *testing.T) {
	ps := NewPasswordServiceForTest()
	good, _ := ps.Hash("pw")
	salt, digest, _ := strings.Cut(good, ":")

	cases := map[string]string{
		"empty":             "",
		"no separator":      salt + digest,
		"empty salt":        ":" + digest,
		"empty digest":      salt + ":",
		"non-hex salt":      "zz" + salt[2:] + ":" + digest,
		"non-hex digest":    salt + ":" + "xy" + digest[2:],
		"short digest":      salt + ":" + digest[:10],
		"extra separator":   salt + ":" + digest + ":" + digest,
		"bcrypt-looking":    "$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		"whitespace around": " " + good + " ",
	}

	for name, cred := range cases {
		t.Run(name, func(t *testing.T) {
			if ps.Verify("pw", cred) {
				t.Errorf("Verify(%q) = true, want false", cred)
			}
		})
	}
}

func TestVerify_DifferentParamsDoNotMatch(t *testing.T) {
	testPS := NewPasswordServiceForTest()
	cheaper := &PasswordService{params: argonParams{time: 2, memory: 1024, threads: 1}}

	cred, _ := testPS.Hash("pw")
	if cheaper.Verify("pw", cred) {
		t.Error("Verify() matched a credential made with different argon2 parameters")
	}
}

// =========================================================================
// ROUND-TRIP TEST
// =========================================================================

func TestHashVerify_RoundTrip(t *testing.T) {
	ps := NewPasswordServiceForTest()

	cases := []struct {
		name     string
		password string
	}{
		{"simple alphanumeric", "hello123"},
		{"special characters", "p@$$w0rd!#%:"},
		{"unicode", "пароль-密码"},
		{"whitespace", "  leading and trailing  "},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cred, err := ps.Hash(tc.password)
			if err != nil {
				t.Fatalf("Hash(%q) error = %v", tc.password, err)
			}
			if !ps.Verify(tc.password, cred) {
				t.Errorf("Verify() failed for %q", tc.password)
			}
		})
	}
}

package password

import (
	"errors"
	"strings"
	"testing"
)

func testParams() Params {
	// Small costs keep the suite fast; production uses DefaultParams.
	return Params{MemoryKB: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}
}

func TestNewHasherRejectsWeakParams(t *testing.T) {
	cases := []struct {
		name string
		p    Params
	}{
		{"low memory", Params{MemoryKB: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}},
		{"zero iterations", Params{MemoryKB: 8192, Iterations: 0, Parallelism: 1, SaltLength: 16, KeyLength: 16}},
		{"zero parallelism", Params{MemoryKB: 8192, Iterations: 1, Parallelism: 0, SaltLength: 16, KeyLength: 16}},
		{"short salt", Params{MemoryKB: 8192, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}},
		{"short key", Params{MemoryKB: 8192, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8}},
	}

	for _, tc := range cases {
		if _, err := NewHasher(tc.p); err == nil {
			t.Errorf("%s: expected constructor error", tc.name)
		}
	}
}

func TestHashVerifyRoundTrip(t *testing.T) {
	h, err := NewHasher(testParams())
	if err != nil {
		t.Fatalf("new hasher failed: %v", err)
	}

	encoded, err := h.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected hash format: %q", encoded)
	}

	ok, err := h.Verify("correct horse battery", encoded)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !ok {
		t.Fatal("correct password must verify")
	}

	ok, err = h.Verify("wrong password!", encoded)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestHashProducesUniqueSalts(t *testing.T) {
	h, err := NewHasher(testParams())
	if err != nil {
		t.Fatalf("new hasher failed: %v", err)
	}

	a, err := h.Hash("same password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	b, err := h.Hash("same password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestHashRejectsShortPassword(t *testing.T) {
	h, err := NewHasher(testParams())
	if err != nil {
		t.Fatalf("new hasher failed: %v", err)
	}

	if _, err := h.Hash("short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	h, err := NewHasher(testParams())
	if err != nil {
		t.Fatalf("new hasher failed: %v", err)
	}

	cases := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=8192,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAA",
		"$argon2id$v=18$m=8192,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAA",
		"$argon2id$v=19$m=8192,t=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$AAAAAAAAAAAAAAAAAAAAAA",
	}

	for _, bad := range cases {
		if _, err := h.Verify("whatever password", bad); !errors.Is(err, ErrMalformedHash) {
			t.Errorf("hash %q: expected ErrMalformedHash, got %v", bad, err)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	weak, err := NewHasher(testParams())
	if err != nil {
		t.Fatalf("new hasher failed: %v", err)
	}
	encoded, err := weak.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	same, err := weak.NeedsRehash(encoded)
	if err != nil {
		t.Fatalf("needs rehash failed: %v", err)
	}
	if same {
		t.Fatal("hash at current params must not need rehash")
	}

	stronger, err := NewHasher(Params{MemoryKB: 16 * 1024, Iterations: 2, Parallelism: 1, SaltLength: 16, KeyLength: 16})
	if err != nil {
		t.Fatalf("new hasher failed: %v", err)
	}
	upgrade, err := stronger.NeedsRehash(encoded)
	if err != nil {
		t.Fatalf("needs rehash failed: %v", err)
	}
	if !upgrade {
		t.Fatal("hash below current params must need rehash")
	}

	// Old hash still verifies with the stronger hasher: parameters come from
	// the stored PHC string, not the hasher.
	ok, err := stronger.Verify("correct horse battery", encoded)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !ok {
		t.Fatal("old hash must keep verifying after a cost bump")
	}
}

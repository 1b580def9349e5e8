package password

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if !Verify("correct horse", hash) {
		t.Fatalf("expected password to verify")
	}
	if Verify("wrong", hash) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestHashesAreSalted(t *testing.T) {
	first, err := Hash("correct horse")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	second, err := Hash("correct horse")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct salts to produce distinct hashes")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	if Verify("anything", "") {
		t.Fatalf("expected empty hash to fail")
	}
	if Verify("anything", "$2a$10$legacybcrypt") {
		t.Fatalf("expected foreign format to fail")
	}
}

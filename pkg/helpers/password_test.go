package helpers

import "testing"

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plain password")
	}
	if !CompareHashAndPassword(hash, "correct horse battery staple") {
		t.Error("expected matching password to verify")
	}
	if CompareHashAndPassword(hash, "wrong password") {
		t.Error("expected non-matching password to fail")
	}
	if CompareHashAndPassword("not-a-bcrypt-hash", "anything") {
		t.Error("expected garbage hash to fail")
	}
}

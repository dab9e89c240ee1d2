package service

import "testing"

func TestJWT_RoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateJWT(77)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	userID, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if userID != 77 {
		t.Fatalf("userID = %d; want 77", userID)
	}
}

func TestJWT_Garbage(t *testing.T) {
	InitJWT("test-secret")
	if _, err := ParseJWT("not-a-token"); err == nil {
		t.Fatal("expected error for garbage token")
	}
}

func TestJWT_WrongSecret(t *testing.T) {
	InitJWT("secret-a")
	token, _ := GenerateJWT(1)
	InitJWT("secret-b")
	if _, err := ParseJWT(token); err == nil {
		t.Fatal("expected error for token signed with another secret")
	}
}

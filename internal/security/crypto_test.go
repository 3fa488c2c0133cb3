package security_test

import (
	"bytes"
	"testing"

	"github.com/Rrens/workspace-insights/internal/security"
)

func TestEncryptor_EncryptDecrypt(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	encryptor, err := security.NewEncryptor(key)
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}

	tests := []struct {
		name      string
		plaintext string
	}{
		{"empty", ""},
		{"short", "hello"},
		{"token", `{"access_token":"ya29.a0AfH6SMB","board_id":"5f2b"}`},
		{"unicode", "unicode: 日本語 中文 한국어"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext, err := encryptor.Encrypt([]byte(tt.plaintext))
			if err != nil {
				t.Fatalf("encrypt failed: %v", err)
			}

			if tt.plaintext != "" && bytes.Contains(ciphertext, []byte(tt.plaintext)) {
				t.Error("ciphertext contains plaintext")
			}

			decrypted, err := encryptor.Decrypt(ciphertext)
			if err != nil {
				t.Fatalf("decrypt failed: %v", err)
			}

			if string(decrypted) != tt.plaintext {
				t.Errorf("decrypted text does not match: got %q, want %q", decrypted, tt.plaintext)
			}
		})
	}
}

func TestEncryptor_InvalidKeyLength(t *testing.T) {
	for _, size := range []int{0, 8, 15, 33} {
		if _, err := security.NewEncryptor(make([]byte, size)); err == nil {
			t.Errorf("expected error for key length %d", size)
		}
	}
}

func TestEncryptor_FromSecret(t *testing.T) {
	a, err := security.NewEncryptorFromSecret("a passphrase of any length")
	if err != nil {
		t.Fatalf("failed to derive encryptor: %v", err)
	}
	b, err := security.NewEncryptorFromSecret("a passphrase of any length")
	if err != nil {
		t.Fatalf("failed to derive encryptor: %v", err)
	}

	ciphertext, err := a.EncryptJSON(map[string]string{"token": "secret"})
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	raw, err := b.DecryptJSON(ciphertext)
	if err != nil {
		t.Fatalf("same secret should decrypt: %v", err)
	}
	if string(raw) != `{"token":"secret"}` {
		t.Errorf("unexpected payload: %s", raw)
	}

	other, _ := security.NewEncryptorFromSecret("another secret")
	if _, err := other.DecryptJSON(ciphertext); err == nil {
		t.Error("expected decryption with a different secret to fail")
	}

	if _, err := security.NewEncryptorFromSecret(""); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestEncryptor_TamperedCiphertext(t *testing.T) {
	encryptor, _ := security.NewEncryptorFromSecret("secret")

	ciphertext, err := encryptor.Encrypt([]byte("payload"))
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	ciphertext[len(ciphertext)-1] ^= 0xff
	if _, err := encryptor.Decrypt(ciphertext); err == nil {
		t.Error("expected tampered ciphertext to fail")
	}

	if _, err := encryptor.Decrypt([]byte{1, 2}); err == nil {
		t.Error("expected short ciphertext to fail")
	}
}

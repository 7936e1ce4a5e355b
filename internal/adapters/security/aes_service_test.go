package security

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// helper function to generate a valid key
func generateKey(length int) []byte {
	key := make([]byte, length)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	return key
}

func TestAESService_EncryptDecrypt_Roundtrip(t *testing.T) {
	nopLogger := zerolog.Nop()

	testCases := []struct {
		name    string
		key     []byte
		payload []byte
	}{
		{
			name:    "AES-128 (16-byte key)",
			key:     generateKey(16),
			payload: []byte("Ali Valiyev"),
		},
		{
			name:    "AES-256 (32-byte key)",
			key:     generateKey(32),
			payload: []byte("Нодира Каримова 🌳"),
		},
		{
			name:    "Empty Payload",
			key:     generateKey(32),
			payload: []byte(""),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			service, err := NewAESService(tc.key, &nopLogger)
			if err != nil {
				t.Fatalf("Failed to create service: %v", err)
			}

			// 1. Encrypt
			ciphertext, err := service.Encrypt(tc.payload)
			if err != nil {
				t.Fatalf("Encryption failed: %v", err)
			}
			if bytes.Equal(ciphertext, tc.payload) {
				t.Fatal("Encryption did not change the data")
			}

			// 2. Decrypt
			plaintext, err := service.Decrypt(ciphertext)
			if err != nil {
				t.Fatalf("Decryption failed: %v", err)
			}

			// 3. Verify
			if !bytes.Equal(plaintext, tc.payload) {
				t.Fatalf("Decrypted data does not match original. \nGot: %s\nWant: %s",
					string(plaintext), string(tc.payload))
			}
		})
	}
}

func TestAESService_StringRoundtrip(t *testing.T) {
	nopLogger := zerolog.Nop()
	service, err := NewAESServiceFromHex(hex.EncodeToString(generateKey(32)), &nopLogger)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	encoded, err := service.EncryptString("Ali Valiyev")
	if err != nil {
		t.Fatalf("EncryptString failed: %v", err)
	}
	if strings.Contains(encoded, "Ali") {
		t.Fatal("Encoded ciphertext leaks the plaintext")
	}

	// Two encryptions of the same name must differ (random nonce)
	again, _ := service.EncryptString("Ali Valiyev")
	if again == encoded {
		t.Fatal("EncryptString is deterministic")
	}

	plain, err := service.DecryptString(encoded)
	if err != nil {
		t.Fatalf("DecryptString failed: %v", err)
	}
	if plain != "Ali Valiyev" {
		t.Fatalf("Got %q, want %q", plain, "Ali Valiyev")
	}

	if _, err := service.DecryptString("%%%not-base64"); err == nil {
		t.Fatal("DecryptString accepted non-base64 input")
	}
}

func TestAESService_Decrypt_Tampered(t *testing.T) {
	nopLogger := zerolog.Nop()
	service, err := NewAESService(generateKey(32), &nopLogger)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	ciphertext, err := service.Encrypt([]byte("do not tamper with this"))
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}

	// Flip a bit
	ciphertext[len(ciphertext)-1] = ^ciphertext[len(ciphertext)-1]

	if _, err = service.Decrypt(ciphertext); err == nil {
		t.Fatal("Decryption succeeded on tampered data, but it should have failed.")
	}
	if _, err = service.Decrypt([]byte{1, 2, 3}); err == nil {
		t.Fatal("Decryption succeeded on short data")
	}
}

func TestNewAESService_InvalidKey(t *testing.T) {
	nopLogger := zerolog.Nop()
	if _, err := NewAESService([]byte("badkey"), &nopLogger); err == nil {
		t.Fatal("Service creation should fail with invalid key length")
	}
	if _, err := NewAESServiceFromHex("zz", &nopLogger); err == nil {
		t.Fatal("Service creation should fail with non-hex key")
	}
}

package ports

// SecurityPort encrypts personal data (the submitter's display name)
// before it is written to the submissions table.
type SecurityPort interface {
	// Encrypt takes a plaintext and returns nonce||ciphertext.
	Encrypt(plaintext []byte) (ciphertext []byte, err error)

	// Decrypt reverses Encrypt. Tampered input is an error.
	Decrypt(ciphertext []byte) (plaintext []byte, err error)

	// EncryptString encrypts s and returns it base64 encoded for TEXT columns.
	EncryptString(s string) (string, error)

	// DecryptString reverses EncryptString.
	DecryptString(encoded string) (string, error)
}

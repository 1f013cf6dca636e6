package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.CreateForUser(42)
	assert.NoError(t, err)

	id, err := svc.Parse(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a", time.Hour).CreateForUser(42)
	assert.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.CreateWithTTL(42, -time.Minute)
	assert.NoError(t, err)

	_, err = svc.Parse(token)
	assert.Error(t, err)
}

func TestEncryptRoundTrip(t *testing.T) {
	enc, err := NewEncryptor([]byte("any length secret works"))
	assert.NoError(t, err)

	ciphertext, err := enc.Encrypt("hello world")
	assert.NoError(t, err)
	assert.NotEqual(t, "hello world", ciphertext)

	plain, err := enc.Decrypt(ciphertext)
	assert.NoError(t, err)
	assert.Equal(t, "hello world", plain)
}

func TestDecryptGarbage(t *testing.T) {
	enc, err := NewEncryptor([]byte("key"))
	assert.NoError(t, err)

	_, err = enc.Decrypt("not base64!!")
	assert.Error(t, err)

	_, err = enc.Decrypt("c2hvcnQ=")
	assert.Error(t, err)
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(4)

	hashed, err := h.Hash("password1")
	assert.NoError(t, err)
	assert.NotEqual(t, "password1", hashed)

	assert.NoError(t, h.Verify("password1", hashed))
	assert.Error(t, h.Verify("wrong", hashed))
}

package secret

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"

	"bot-for-order/internal/pkg/errs"

	"golang.org/x/crypto/chacha20poly1305"
)

var ErrCiphertext = errs.New("malformed ciphertext")

// Encryptor seals short texts with XChaCha20-Poly1305. Output is
// base64(nonce || ciphertext).
type Encryptor struct {
	aead cipher.AEAD
}

func NewEncryptor(base64Key string) (*Encryptor, error) {
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, errs.Wrap(err, "failed to decode encryption key")
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errs.Wrap(err, "failed to init cipher")
	}
	return &Encryptor{aead: aead}, nil
}

func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(plaintext)+e.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", errs.Wrap(err, "failed to read nonce")
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (e *Encryptor) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errs.Mark(errs.Wrap(err, "decode"), ErrCiphertext)
	}
	if len(raw) < e.aead.NonceSize() {
		return "", ErrCiphertext
	}
	nonce, sealed := raw[:e.aead.NonceSize()], raw[e.aead.NonceSize():]
	plain, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errs.Mark(errs.Wrap(err, "open"), ErrCiphertext)
	}
	return string(plain), nil
}

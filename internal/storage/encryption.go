package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLength   = 32
	nonceLength = 12
	saltLength  = 32
	iterations  = 100000
)

var ErrWrongPassphrase = errors.New("invalid passphrase or corrupted data")

// sealedEnvelope is the on-disk form of an encrypted value.
type sealedEnvelope struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// Sealer encrypts stored values with a key derived from a passphrase.
// Every Seal call uses a fresh salt and nonce.
type Sealer struct {
	passphrase []byte
}

func NewSealer(passphrase string) *Sealer {
	return &Sealer{passphrase: []byte(passphrase)}
}

// Seal encrypts plaintext into a JSON envelope.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	aesGCM, err := s.aead(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	envelope := sealedEnvelope{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aesGCM.Seal(nil, nonce, plaintext, nil),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return data, nil
}

// Open decrypts an envelope written by Seal. A wrong passphrase and a
// tampered ciphertext both return ErrWrongPassphrase.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	var envelope sealedEnvelope
	if err := json.Unmarshal(sealed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	if len(envelope.Salt) == 0 || len(envelope.Nonce) != nonceLength {
		return nil, errors.New("malformed envelope")
	}

	aesGCM, err := s.aead(envelope.Salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesGCM.Open(nil, envelope.Nonce, envelope.Ciphertext, nil)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return plaintext, nil
}

// isSealed reports whether data is an envelope written by Seal.
func isSealed(data []byte) bool {
	var envelope sealedEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return false
	}
	return len(envelope.Salt) > 0 && len(envelope.Nonce) > 0 && len(envelope.Ciphertext) > 0
}

func (s *Sealer) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(s.passphrase, salt, iterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/hkdf"
)

const (
	// masterKeyLen is the size of the random key file on disk.
	masterKeyLen = 32

	// sealKeyLen is the AES-256 key length derived from the master key.
	sealKeyLen = 32
)

// sealInfo binds derived keys to this store's format version. Bumping it
// invalidates everything sealed under the old derivation.
var sealInfo = []byte("folio/credstore/v1")

// box seals and opens credential values with AES-GCM under a key derived
// from a machine-local key file. Sealed format: [12-byte nonce][ciphertext].
type box struct {
	aead cipher.AEAD
}

// newBox loads the master key at keyPath, generating it on first use, and
// derives the sealing key with HKDF-SHA256.
func newBox(keyPath string) (*box, error) {
	master, err := loadOrCreateKey(keyPath)
	if err != nil {
		return nil, err
	}

	sealKey := make([]byte, sealKeyLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, sealInfo), sealKey); err != nil {
		return nil, fmt.Errorf("deriving sealing key: %w", err)
	}

	block, err := aes.NewCipher(sealKey)
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}

	return &box{aead: aead}, nil
}

func loadOrCreateKey(keyPath string) ([]byte, error) {
	key, err := os.ReadFile(keyPath)
	if err == nil {
		if len(key) != masterKeyLen {
			return nil, fmt.Errorf("key file %s: expected %d bytes, got %d", keyPath, masterKeyLen, len(key))
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	key = make([]byte, masterKeyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	if err := os.WriteFile(keyPath, key, filePerm); err != nil {
		return nil, fmt.Errorf("writing key file: %w", err)
	}

	return key, nil
}

func (b *box) seal(plain []byte) ([]byte, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	return b.aead.Seal(nonce, nonce, plain, nil), nil
}

func (b *box) open(sealed []byte) ([]byte, error) {
	ns := b.aead.NonceSize()
	if len(sealed) < ns {
		return nil, fmt.Errorf("sealed value too short")
	}

	plain, err := b.aead.Open(nil, sealed[:ns], sealed[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("opening sealed value: %w", err)
	}

	return plain, nil
}

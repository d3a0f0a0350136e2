// Package credstore persists the session's credential pair in a local bbolt
// database so a restart resumes the session instead of forcing re-login.
// Values are sealed at rest under a machine-local key file.
package credstore

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/foliodocs/folio/pkg/session"
	bolt "go.etcd.io/bbolt"
)

const (
	// dirPerm is the permission mode for the state directory.
	dirPerm = fs.FileMode(0o700)

	// filePerm is the permission mode for the database file.
	filePerm = fs.FileMode(0o600)

	// openTimeout is the maximum time to wait for the bolt database lock.
	openTimeout = 5 * time.Second
)

var (
	sessionBucket   = []byte("session")
	accessTokenKey  = []byte("access_token")
	refreshTokenKey = []byte("refresh_token")
)

// Store is a durable session.CredentialStore backed by bbolt.
type Store struct {
	db  *bolt.DB
	box *box
}

var _ session.CredentialStore = (*Store)(nil)

// Open opens (creating if needed) the credential database at dbPath. The
// sealing key lives at keyPath and is generated on first use.
func Open(dbPath, keyPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), dirPerm); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	box, err := newBox(keyPath)
	if err != nil {
		return nil, err
	}

	db, err := bolt.Open(dbPath, filePerm, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening credential db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating session bucket: %w", err)
	}

	return &Store{db: db, box: box}, nil
}

// Save persists the pair, replacing whatever was stored.
func (s *Store) Save(pair session.Pair) error {
	access, err := s.box.seal([]byte(pair.AccessToken))
	if err != nil {
		return fmt.Errorf("sealing access token: %w", err)
	}

	refresh, err := s.box.seal([]byte(pair.RefreshToken))
	if err != nil {
		return fmt.Errorf("sealing refresh token: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if err := b.Put(accessTokenKey, access); err != nil {
			return err
		}
		return b.Put(refreshTokenKey, refresh)
	})
}

// Load returns the persisted pair, or a zero pair when nothing is stored.
// An unsealing failure (corrupt record, wrong key) is returned as an error
// so the caller can treat the stored state as unusable.
func (s *Store) Load() (session.Pair, error) {
	var access, refresh []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if v := b.Get(accessTokenKey); v != nil {
			access = append([]byte(nil), v...)
		}
		if v := b.Get(refreshTokenKey); v != nil {
			refresh = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return session.Pair{}, fmt.Errorf("reading credential db: %w", err)
	}

	if access == nil && refresh == nil {
		return session.Pair{}, nil
	}

	var pair session.Pair

	if access != nil {
		plain, err := s.box.open(access)
		if err != nil {
			return session.Pair{}, fmt.Errorf("unsealing access token: %w", err)
		}
		pair.AccessToken = string(plain)
	}

	if refresh != nil {
		plain, err := s.box.open(refresh)
		if err != nil {
			return session.Pair{}, fmt.Errorf("unsealing refresh token: %w", err)
		}
		pair.RefreshToken = string(plain)
	}

	return pair, nil
}

// Clear removes any persisted pair. Clearing an empty store is a no-op.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if err := b.Delete(accessTokenKey); err != nil {
			return err
		}
		return b.Delete(refreshTokenKey)
	})
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

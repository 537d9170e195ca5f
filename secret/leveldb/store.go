// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package leveldb provides a passphrase encrypted secret store on LevelDB for
// hosts without an OS keychain.
//
// Each secret is sealed with NaCl secretbox. The box key is derived with
// scrypt from the passphrase and a random salt that is created together with
// the store and kept in it.
package leveldb // import "perun.network/go-algowallet/secret/leveldb"

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	"perun.network/go-algowallet/wallet"
)

const (
	keyLen   = 32
	saltLen  = 32
	nonceLen = 24

	saltKey    = "meta/salt"
	checkKey   = "meta/check"
	secretPref = "secret/"
)

// scrypt cost parameters.
var scryptN, scryptR, scryptP = 1 << 15, 8, 1

// checkPlaintext is sealed into every store to detect a wrong passphrase at
// open time.
var checkPlaintext = []byte("go-algowallet secret store")

// ErrWrongPassphrase is returned when the passphrase does not open the store.
var ErrWrongPassphrase = errors.New("wrong passphrase")

// Store is a wallet.SecretStore on an encrypted LevelDB.
type Store struct {
	db  *leveldb.DB
	key [keyLen]byte
}

var _ wallet.SecretStore = (*Store)(nil)

var syncWrite = &opt.WriteOptions{Sync: true}

// Open opens or creates the store in directory path.
func Open(path string, passphrase []byte) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "opening secret store %s", path)
	}
	return newStore(db, passphrase)
}

// OpenStorage opens or creates the store on stor, for example a
// storage.NewMemStorage().
func OpenStorage(stor storage.Storage, passphrase []byte) (*Store, error) {
	db, err := leveldb.Open(stor, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening secret store")
	}
	return newStore(db, passphrase)
}

func newStore(db *leveldb.DB, passphrase []byte) (*Store, error) {
	if len(passphrase) == 0 {
		db.Close()
		return nil, errors.New("empty passphrase")
	}
	s := &Store{db: db}
	if err := s.unlock(passphrase); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// unlock derives the box key. A new store gets a salt and a check value, an
// existing one must open its check value with the derived key.
func (s *Store) unlock(passphrase []byte) error {
	salt, err := s.db.Get([]byte(saltKey), nil)
	fresh := errors.Is(err, leveldb.ErrNotFound)
	if fresh {
		salt = make([]byte, saltLen)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return errors.Wrap(err, "generating salt")
		}
	} else if err != nil {
		return errors.Wrap(err, "reading salt")
	}

	key, err := scrypt.Key(passphrase, salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return errors.Wrap(err, "deriving key")
	}
	copy(s.key[:], key)

	if fresh {
		check, err := s.seal(checkPlaintext)
		if err != nil {
			return err
		}
		batch := new(leveldb.Batch)
		batch.Put([]byte(saltKey), salt)
		batch.Put([]byte(checkKey), check)
		return errors.Wrap(s.db.Write(batch, syncWrite), "initializing secret store")
	}

	check, err := s.db.Get([]byte(checkKey), nil)
	if err != nil {
		return errors.Wrap(err, "reading check value")
	}
	_, err = s.open(check)
	return err
}

func (s *Store) seal(plain []byte) ([]byte, error) {
	var nonce [nonceLen]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "generating nonce")
	}
	return secretbox.Seal(nonce[:], plain, &nonce, &s.key), nil
}

func (s *Store) open(box []byte) ([]byte, error) {
	if len(box) < nonceLen+secretbox.Overhead {
		return nil, errors.New("sealed value too short")
	}
	var nonce [nonceLen]byte
	copy(nonce[:], box[:nonceLen])
	plain, ok := secretbox.Open(nil, box[nonceLen:], &nonce, &s.key)
	if !ok {
		return nil, ErrWrongPassphrase
	}
	return plain, nil
}

func secretKey(address string) []byte {
	return []byte(secretPref + address)
}

// Put implements wallet.SecretStore. The write is synced to disk.
func (s *Store) Put(address, secret string) error {
	if secret == "" {
		return errors.New("empty secret")
	}
	box, err := s.seal([]byte(secret))
	if err != nil {
		return err
	}
	return errors.Wrap(s.db.Put(secretKey(address), box, syncWrite), "writing secret")
}

// Get implements wallet.SecretStore.
func (s *Store) Get(address string) (string, error) {
	box, err := s.db.Get(secretKey(address), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", errors.WithMessage(wallet.ErrSecretNotFound, address)
	} else if err != nil {
		return "", errors.Wrap(err, "reading secret")
	}
	plain, err := s.open(box)
	if err != nil {
		return "", errors.WithMessagef(err, "opening secret of %s", address)
	}
	return string(plain), nil
}

// Delete implements wallet.SecretStore.
func (s *Store) Delete(address string) error {
	key := secretKey(address)
	ok, err := s.db.Has(key, nil)
	if err != nil {
		return errors.Wrap(err, "reading secret")
	}
	if !ok {
		return errors.WithMessage(wallet.ErrSecretNotFound, address)
	}
	return errors.Wrap(s.db.Delete(key, syncWrite), "deleting secret")
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return errors.Wrap(s.db.Close(), "closing secret store")
}

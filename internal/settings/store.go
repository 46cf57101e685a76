// Package settings persists device settings across restarts, standing in for
// the firmware's EEPROM block.
package settings

import (
	"errors"

	"github.com/dgraph-io/badger"
)

// MaxDeviceNameLen matches the firmware's stored_devicename[20] field
// (19 characters plus terminator).
const MaxDeviceNameLen = 19

// DefaultDeviceName is used until a name is configured.
const DefaultDeviceName = "NewDevice"

var keyDeviceName = []byte("devicename")

type Store struct {
	db *badger.DB
}

func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions
	opts.Dir, opts.ValueDir = dir, dir
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DeviceName returns the persisted device name, or DefaultDeviceName if none
// has been stored yet.
func (s *Store) DeviceName() (string, error) {
	var name string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyDeviceName)
		if err != nil {
			return err
		}
		val, err := item.Value()
		if err != nil {
			return err
		}
		name = string(val)
		return nil
	})
	if err == badger.ErrKeyNotFound {
		return DefaultDeviceName, nil
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

func (s *Store) SetDeviceName(name string) error {
	if err := ValidateDeviceName(name); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyDeviceName, []byte(name))
	})
}

// ValidateDeviceName enforces the firmware's constraints: 1-19 printable
// ASCII characters. The name is embedded verbatim in JSON discovery
// documents, so quotes and backslashes are rejected too.
func ValidateDeviceName(name string) error {
	if len(name) == 0 || len(name) > MaxDeviceNameLen {
		return errors.New("device name must be 1-19 characters")
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 0x21 || c > 0x7E || c == '"' || c == '\\' {
			return errors.New("device name contains invalid character")
		}
	}
	return nil
}

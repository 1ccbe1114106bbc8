package store

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"strconv"
	"strings"

	badger "github.com/dgraph-io/badger/v2"
)

type badgerDB struct {
	db *badger.DB
}

// OpenBadgerDB opens a badger DB with the given options as a preset store.
func OpenBadgerDB(options badger.Options) (Store, error) {
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("unable to open badger db: %w", err)
	}

	return &badgerDB{db: db}, nil
}

const badgerPresetPrefix = "presets/"

func badgerPresetKey(pin int) []byte {
	return []byte(badgerPresetPrefix + strconv.Itoa(pin))
}

func (b *badgerDB) Close() error {
	return b.db.Close()
}

func decodePreset(item *badger.Item) (Preset, error) {
	var p Preset

	err := item.Value(func(val []byte) error {
		if err := gob.NewDecoder(bytes.NewReader(val)).Decode(&p); err != nil {
			return fmt.Errorf("couldn't decode preset with gob: %w", err)
		}

		return nil
	})

	return p, err
}

func (b *badgerDB) Preset(pin int) (Preset, error) {
	var p Preset

	err := b.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(badgerPresetKey(pin))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("couldn't get raw preset: %w", err)
		}

		p, err = decodePreset(item)
		return err
	})
	if err != nil {
		return p, fmt.Errorf("couldn't get preset for pin %d: %w", pin, err)
	}

	return p, nil
}

func (b *badgerDB) Presets() (map[int]Preset, error) {
	presets := make(map[int]Preset)

	err := b.db.View(func(tx *badger.Txn) error {
		it := tx.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(badgerPresetPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			key := strings.TrimPrefix(string(item.Key()), badgerPresetPrefix)
			pin, err := strconv.Atoi(key)
			if err != nil {
				return fmt.Errorf("invalid preset key %q: %w", item.Key(), err)
			}

			p, err := decodePreset(item)
			if err != nil {
				return err
			}

			presets[pin] = p
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't list presets: %w", err)
	}

	return presets, nil
}

func (b *badgerDB) PutPreset(pin int, p Preset) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return fmt.Errorf("couldn't encode preset with gob: %w", err)
	}

	err := b.db.Update(func(tx *badger.Txn) error {
		return tx.Set(badgerPresetKey(pin), buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("couldn't put preset for pin %d: %w", pin, err)
	}

	return nil
}

func (b *badgerDB) DeletePreset(pin int) error {
	err := b.db.Update(func(tx *badger.Txn) error {
		if _, err := tx.Get(badgerPresetKey(pin)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		return tx.Delete(badgerPresetKey(pin))
	})
	if err != nil {
		return fmt.Errorf("couldn't delete preset for pin %d: %w", pin, err)
	}

	return nil
}

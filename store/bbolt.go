package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"go.etcd.io/bbolt"
)

type BBolt struct {
	db *bbolt.DB
}

const (
	bboltPigpioBucket = "pigpio"
	bboltPresetBucket = "presets" // child of pigpio
)

// OpenBBolt opens a BBoltDB database at the given path and creates the needed buckets
// if they don't exist.
func OpenBBolt(path string, mode os.FileMode, options *bbolt.Options) (Store, error) {
	db, err := bbolt.Open(path, mode, options)
	if err != nil {
		return nil, fmt.Errorf("unable to open bbolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		pigpioBucket, err := tx.CreateBucketIfNotExists([]byte(bboltPigpioBucket))
		if err != nil {
			return fmt.Errorf("unable to create bucket %q: %w", bboltPigpioBucket, err)
		}

		_, err = pigpioBucket.CreateBucketIfNotExists([]byte(bboltPresetBucket))
		if err != nil {
			return fmt.Errorf("unable to create bucket %q: %w", bboltPresetBucket, err)
		}

		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to create bbolt buckets: %w", err)
	}

	return &BBolt{
		db: db,
	}, nil
}

func (b *BBolt) Close() error {
	return b.db.Close()
}

func presetBucket(tx *bbolt.Tx) *bbolt.Bucket {
	return tx.Bucket([]byte(bboltPigpioBucket)).Bucket([]byte(bboltPresetBucket))
}

func (b *BBolt) Preset(pin int) (Preset, error) {
	var p Preset
	err := b.db.View(func(tx *bbolt.Tx) error {
		presetJSON := presetBucket(tx).Get([]byte(strconv.Itoa(pin)))
		if presetJSON == nil {
			return ErrNotFound
		}

		if err := json.Unmarshal(presetJSON, &p); err != nil {
			return fmt.Errorf("unable to unmarshal preset JSON: %w", err)
		}

		return nil
	})
	if err != nil {
		return p, fmt.Errorf("unable to get preset for pin %d: %w", pin, err)
	}

	return p, nil
}

func (b *BBolt) Presets() (map[int]Preset, error) {
	presets := make(map[int]Preset)

	err := b.db.View(func(tx *bbolt.Tx) error {
		err := presetBucket(tx).ForEach(func(k, v []byte) error {
			pin, err := strconv.Atoi(string(k))
			if err != nil {
				return fmt.Errorf("invalid preset key %q: %w", k, err)
			}

			var p Preset
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("unable to unmarshal preset JSON for pin %d: %w", pin, err)
			}

			presets[pin] = p
			return nil
		})
		if err != nil {
			return fmt.Errorf("unable to iterate over preset bucket: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list presets: %w", err)
	}

	return presets, nil
}

func (b *BBolt) PutPreset(pin int, p Preset) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		presetJSON, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("unable to marshal preset: %w", err)
		}

		if err := presetBucket(tx).Put([]byte(strconv.Itoa(pin)), presetJSON); err != nil {
			return fmt.Errorf("unable to put preset for pin %d: %w", pin, err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("unable to update preset: %w", err)
	}

	return nil
}

func (b *BBolt) DeletePreset(pin int) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := presetBucket(tx)
		key := []byte(strconv.Itoa(pin))
		if bucket.Get(key) == nil {
			return ErrNotFound
		}

		return bucket.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("unable to delete preset for pin %d: %w", pin, err)
	}

	return nil
}

package bolt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"
	bberrors "go.etcd.io/bbolt/errors"

	"github.com/haukened/etld/internal/etld/domain"
	"github.com/haukened/etld/internal/etld/repos/ruleset"
)

var (
	bucketRules = []byte("rules") // rule key -> section byte + raw line
	bucketOrder = []byte("order") // big-endian file position -> rule key
	bucketMeta  = []byte("meta")
)

var (
	metaVersion    = []byte("version")
	metaUpdated    = []byte("updated")
	metaWildcards  = []byte("wildcards")
	metaExceptions = []byte("exceptions")
	metaDuplicates = []byte("duplicates")
	metaComments   = []byte("comments")
	metaWhitespace = []byte("whitespace")
	metaInvalid    = []byte("invalid")
)

// ErrCorruptRecord is returned when a stored value cannot be decoded.
var ErrCorruptRecord = errors.New("corrupt rule record")

// boltStore implements ruleset.Store using bbolt.
type boltStore struct {
	db *bbolt.DB
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (ruleset.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(ensureBuckets); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func ensureBuckets(tx *bbolt.Tx) error {
	for _, name := range [][]byte{bucketRules, bucketOrder, bucketMeta} {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return err
		}
	}
	return nil
}

func dropBuckets(tx *bbolt.Tx) error {
	for _, name := range [][]byte{bucketRules, bucketOrder, bucketMeta} {
		if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bberrors.ErrBucketNotFound) {
			return err
		}
	}
	return nil
}

func (s *boltStore) Close() error { return s.db.Close() }

// RebuildAll replaces the whole snapshot in a single transaction, so readers
// see either the previous snapshot or the new one.
func (s *boltStore) RebuildAll(result domain.ParseResult, version uint64, updatedUnix int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := dropBuckets(tx); err != nil {
			return err
		}
		if err := ensureBuckets(tx); err != nil {
			return err
		}
		rules := tx.Bucket(bucketRules)
		order := tx.Bucket(bucketOrder)

		var pos, wildcards, exceptions, duplicates uint64
		for _, rule := range result.Rules {
			key := []byte(rule.Key())
			if rules.Get(key) != nil {
				duplicates++
				continue
			}
			if err := rules.Put(key, encodeRecord(rule)); err != nil {
				return err
			}
			if err := order.Put(u64(pos), key); err != nil {
				return err
			}
			pos++
			if rule.Wildcard {
				wildcards++
			}
			if rule.Exception {
				exceptions++
			}
		}

		meta := tx.Bucket(bucketMeta)
		for k, v := range map[string]uint64{
			string(metaVersion):    version,
			string(metaUpdated):    uint64(updatedUnix),
			string(metaWildcards):  wildcards,
			string(metaExceptions): exceptions,
			string(metaDuplicates): duplicates,
			string(metaComments):   uint64(result.CommentLines),
			string(metaWhitespace): uint64(result.WhitespaceLines),
			string(metaInvalid):    uint64(result.InvalidRules),
		} {
			if err := meta.Put([]byte(k), u64(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get returns the stored rule for key, re-parsed from its raw line.
func (s *boltStore) Get(key string) (domain.Rule, bool, error) {
	var (
		rule  domain.Rule
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRules)
		if b == nil {
			return nil
		}
		v := b.Get([]byte(key))
		if v == nil {
			return nil
		}
		r, err := decodeRecord(v)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		rule, found = r, true
		return nil
	})
	if err != nil {
		return domain.Rule{}, false, err
	}
	return rule, found, nil
}

// Visit walks rules in file order until fn returns false.
func (s *boltStore) Visit(fn func(domain.Rule) bool) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		order := tx.Bucket(bucketOrder)
		rules := tx.Bucket(bucketRules)
		if order == nil || rules == nil {
			return nil
		}
		c := order.Cursor()
		for _, key := c.First(); key != nil; _, key = c.Next() {
			v := rules.Get(key)
			if v == nil {
				return fmt.Errorf("order entry %q: %w", key, ErrCorruptRecord)
			}
			r, err := decodeRecord(v)
			if err != nil {
				return fmt.Errorf("key %q: %w", key, err)
			}
			if !fn(r) {
				return nil
			}
		}
		return nil
	})
}

func (s *boltStore) Stats() ruleset.StoreStats {
	st := ruleset.StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketRules); b != nil {
			st.Rules = uint64(b.Stats().KeyN)
		}
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return nil
		}
		st.Version = readU64(b, metaVersion)
		st.UpdatedUnix = int64(readU64(b, metaUpdated))
		st.Wildcards = readU64(b, metaWildcards)
		st.Exceptions = readU64(b, metaExceptions)
		st.Duplicates = readU64(b, metaDuplicates)
		st.CommentLines = readU64(b, metaComments)
		st.WhitespaceLines = readU64(b, metaWhitespace)
		st.InvalidRules = readU64(b, metaInvalid)
		return nil
	})
	return st
}

// Purge removes every rule and all metadata.
func (s *boltStore) Purge() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := dropBuckets(tx); err != nil {
			return err
		}
		return ensureBuckets(tx)
	})
}

// encodeRecord stores the section in the first byte followed by the raw line.
func encodeRecord(r domain.Rule) []byte {
	out := make([]byte, 0, 1+len(r.Raw))
	out = append(out, byte(r.Section))
	return append(out, r.Raw...)
}

func decodeRecord(v []byte) (domain.Rule, error) {
	if len(v) < 2 {
		return domain.Rule{}, ErrCorruptRecord
	}
	r, err := domain.NewRule(string(v[1:]))
	if err != nil {
		return domain.Rule{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return r.WithSection(domain.Section(v[0])), nil
}

func u64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func readU64(b *bbolt.Bucket, key []byte) uint64 {
	if v := b.Get(key); len(v) == 8 {
		return binary.BigEndian.Uint64(v)
	}
	return 0
}

var _ ruleset.Store = (*boltStore)(nil)

// Package lutcache memoizes finished tables in a Badger key-value store,
// keyed by a digest of everything that determines their contents.
package lutcache

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"skylut/lutexport"
	"skylut/texture"
	"skylut/vmath/vec3"

	"github.com/dgraph-io/badger"
	"github.com/golang/glog"
	"golang.org/x/xerrors"
)

const keyPrefix = "lut/"

// Key digests a table name and the parameters it was built from.  Callers
// should pass values whose %v rendering is exact, such as
// planet.Properties.Fingerprint().
func Key(table string, params ...interface{}) []byte {
	h := sha256.New()
	fmt.Fprintf(h, "%s", table)
	for _, p := range params {
		fmt.Fprintf(h, "\x00%v", p)
	}
	return append([]byte(keyPrefix), h.Sum(nil)...)
}

type Cache struct {
	DB *badger.DB
}

// glogLogger routes badger's internal logging through glog.
type glogLogger struct{}

func (glogLogger) Errorf(f string, v ...interface{})   { glog.Errorf("badger: "+f, v...) }
func (glogLogger) Warningf(f string, v ...interface{}) { glog.Warningf("badger: "+f, v...) }
func (glogLogger) Infof(f string, v ...interface{})    { glog.V(2).Infof("badger: "+f, v...) }
func (glogLogger) Debugf(f string, v ...interface{})   { glog.V(3).Infof("badger: "+f, v...) }

// Open opens or creates the cache database in dataDir.
func Open(dataDir string) (*Cache, error) {
	db, err := badger.Open(badger.DefaultOptions(dataDir).WithLogger(glogLogger{}))
	if err != nil {
		return nil, xerrors.Errorf("while opening badger kv dir: %w", err)
	}
	return &Cache{DB: db}, nil
}

func (c *Cache) Close() error {
	if err := c.DB.Close(); err != nil {
		return xerrors.Errorf("while closing database: %w", err)
	}
	return nil
}

// Get returns the table stored under key.  The boolean is false on a miss.
func (c *Cache) Get(key []byte) (*lutexport.Image, bool, error) {
	var im *lutexport.Image
	err := c.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		val, err := item.ValueCopy(nil)
		if err != nil {
			return xerrors.Errorf("while copying value: %w", err)
		}

		im, err = lutexport.ReadRaw(bytes.NewReader(val))
		if err != nil {
			return xerrors.Errorf("while decoding cached table: %w", err)
		}
		return nil
	})
	if xerrors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, xerrors.Errorf("while reading key %x: %w", key, err)
	}
	return im, true, nil
}

// Put stores g under key, replacing any previous entry.
func (c *Cache) Put(key []byte, g texture.Grid[vec3.T]) error {
	buf := &bytes.Buffer{}
	if err := lutexport.WriteRaw(buf, g); err != nil {
		return xerrors.Errorf("while encoding table: %w", err)
	}

CommitRetry:
	err := c.DB.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf.Bytes())
	})
	if xerrors.Is(err, badger.ErrConflict) {
		goto CommitRetry
	} else if err != nil {
		return xerrors.Errorf("while writing key %x: %w", key, err)
	}
	return nil
}

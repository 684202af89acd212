// Package dbkeys implements the bucket/key scheme every store built on
// model.DBReader/DBWriter uses to namespace its entries.
package dbkeys

import (
	"bytes"

	"github.com/kaspanet/kaspad/domain/consensus/model"
)

const bucketSeparator = byte('/')

type bucket struct {
	path []byte
}

// MakeBucket creates a top-level bucket from the given path segment.
func MakeBucket(pathPart []byte) model.DBBucket {
	return &bucket{path: append([]byte{}, pathPart...)}
}

func (b *bucket) Bucket(pathPart []byte) model.DBBucket {
	newPath := make([]byte, 0, len(b.path)+len(pathPart)+1)
	newPath = append(newPath, b.path...)
	newPath = append(newPath, bucketSeparator)
	newPath = append(newPath, pathPart...)
	return &bucket{path: newPath}
}

func (b *bucket) Key(suffix []byte) model.DBKey {
	fullBytes := make([]byte, 0, len(b.path)+len(suffix)+1)
	fullBytes = append(fullBytes, b.path...)
	fullBytes = append(fullBytes, bucketSeparator)
	fullBytes = append(fullBytes, suffix...)
	return &dbKey{bytes: fullBytes, path: b.path}
}

type dbKey struct {
	bytes []byte
	path  []byte
}

func (k *dbKey) Bytes() []byte {
	return k.bytes
}

// Path returns the bucket path a key was created under, used by cursor
// implementations to filter keys belonging to a bucket.
func Path(b model.DBBucket) []byte {
	return b.(*bucket).path
}

// HasPrefix reports whether key lives directly under the given bucket path.
func HasPrefix(key []byte, path []byte) bool {
	prefix := append(append([]byte{}, path...), bucketSeparator)
	return bytes.HasPrefix(key, prefix)
}

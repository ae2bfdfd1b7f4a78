package kv

import "sync"

// keyPool provides reusable byte slices for building database keys.
var keyPool = sync.Pool{
	New: func() any {
		// Prefix + "idx:" + index name + value + id fits comfortably.
		return make([]byte, 0, 256)
	},
}

// buildKey constructs prefix+suffix in a pooled buffer.
// Callers MUST call releaseKey when done with the key.
func buildKey(prefix, suffix string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	buf = append(buf, suffix...)
	return buf
}

// buildIndexKey constructs prefix+"idx:"+name+":"+value, plus ":"+id for
// non-unique indexes. Callers MUST call releaseKey when done with the key.
func buildIndexKey(prefix, indexName, value, id string) []byte {
	buf, _ := keyPool.Get().([]byte)
	buf = buf[:0]
	buf = append(buf, prefix...)
	buf = append(buf, indexPrefix...)
	buf = append(buf, indexName...)
	buf = append(buf, ':')
	buf = append(buf, value...)
	if id != "" {
		buf = append(buf, ':')
		buf = append(buf, id...)
	}
	return buf
}

// releaseKey returns a key buffer to the pool.
// After calling this, the key slice must not be used.
func releaseKey(key []byte) {
	if cap(key) <= 512 {
		keyPool.Put(key[:0])
	}
}

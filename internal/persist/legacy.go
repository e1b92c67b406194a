package persist

import (
	"fmt"

	"github.com/prantlf/litevec/internal/vecdb"
)

// decodeLegacyStore parses the single-file layout predating the per-collection
// store: a count, followed by each collection's name-prefixed record. The record
// body after the name is byte-for-byte the same format encodeCollection produces,
// so decodeCollection does the actual per-collection parsing.
func decodeLegacyStore(b []byte) (map[string]*vecdb.Collection, error) {
	r := &reader{buf: b}

	count, err := r.uint32()
	if err != nil {
		return nil, fmt.Errorf("reading collection count: %w", err)
	}

	out := make(map[string]*vecdb.Collection, count)
	for i := uint32(0); i < count; i++ {
		nameLen, err := r.uint32()
		if err != nil {
			return nil, fmt.Errorf("reading name length of collection %d: %w", i, err)
		}
		nameBytes, err := r.bytes(int(nameLen))
		if err != nil {
			return nil, fmt.Errorf("reading name of collection %d: %w", i, err)
		}
		name := string(nameBytes)

		recordLen, err := r.uint32()
		if err != nil {
			return nil, fmt.Errorf("reading record length of collection %q: %w", name, err)
		}
		recordBytes, err := r.bytes(int(recordLen))
		if err != nil {
			return nil, fmt.Errorf("reading record of collection %q: %w", name, err)
		}

		c, err := decodeCollection(recordBytes)
		if err != nil {
			return nil, fmt.Errorf("decoding collection %q: %w", name, err)
		}
		out[name] = c
	}
	return out, nil
}

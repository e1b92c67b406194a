// Package persist implements durable, per-collection on-disk storage for
// vecdb.Database: a binary record format, atomic flush of dirty collections and
// pending tombstones, and loading a database back from a store directory
// (including migrating the legacy single-file layout).
package persist

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/prantlf/litevec/internal/vecdb"
)

// formatVersion is written as the first byte of every collection record so a
// future format change can be detected instead of silently misparsed.
const formatVersion = 1

// encodeCollection serializes a collection to the on-disk binary record format:
//
//	byte    version
//	byte    distance metric tag
//	uint32  dimension
//	uint32  embedding count
//	for each embedding:
//	  uint32 id length, id bytes
//	  4 * dimension vector bytes, little-endian float32 (no length prefix)
//	  uint32 metadata entry count
//	  for each entry: uint32 key length, key bytes, uint32 value length, value bytes
//
// This mirrors the teacher's little-endian float32 codec (encodeFloat32s /
// decodeFloat32s in internal/retrieval/store.go), extended with the length-prefixed
// framing a whole collection record needs.
func encodeCollection(c *vecdb.Collection) []byte {
	size := 2 + 4 + 4
	for _, e := range c.Embeddings {
		size += 4 + len(e.ID)
		size += 4 * c.Dimension
		size += 4
		for k, v := range e.Metadata {
			size += 4 + len(k) + 4 + len(v)
		}
	}

	buf := make([]byte, size)
	pos := 0
	buf[pos] = formatVersion
	pos++
	buf[pos] = byte(c.Distance)
	pos++
	binary.LittleEndian.PutUint32(buf[pos:], uint32(c.Dimension))
	pos += 4
	binary.LittleEndian.PutUint32(buf[pos:], uint32(len(c.Embeddings)))
	pos += 4

	for _, e := range c.Embeddings {
		binary.LittleEndian.PutUint32(buf[pos:], uint32(len(e.ID)))
		pos += 4
		pos += copy(buf[pos:], e.ID)

		for _, f := range e.Vector {
			binary.LittleEndian.PutUint32(buf[pos:], math.Float32bits(f))
			pos += 4
		}

		binary.LittleEndian.PutUint32(buf[pos:], uint32(len(e.Metadata)))
		pos += 4
		for k, v := range e.Metadata {
			binary.LittleEndian.PutUint32(buf[pos:], uint32(len(k)))
			pos += 4
			pos += copy(buf[pos:], k)
			binary.LittleEndian.PutUint32(buf[pos:], uint32(len(v)))
			pos += 4
			pos += copy(buf[pos:], v)
		}
	}

	return buf[:pos]
}

// decodeCollection parses a binary record produced by encodeCollection. It
// returns an error if the buffer is truncated or its version or distance tag is
// unrecognized. Each vector is read as exactly the record's declared dimension of
// float32 values; vectors carry no length of their own to check against it.
func decodeCollection(b []byte) (*vecdb.Collection, error) {
	r := &reader{buf: b}

	version, err := r.byte_()
	if err != nil {
		return nil, fmt.Errorf("reading format version: %w", err)
	}
	if version != formatVersion {
		return nil, fmt.Errorf("unsupported collection record version %d", version)
	}

	distanceTag, err := r.byte_()
	if err != nil {
		return nil, fmt.Errorf("reading distance tag: %w", err)
	}
	distance, ok := vecdb.DistanceFromTag(distanceTag)
	if !ok {
		return nil, fmt.Errorf("unknown distance tag %d", distanceTag)
	}

	dimension, err := r.uint32()
	if err != nil {
		return nil, fmt.Errorf("reading dimension: %w", err)
	}
	count, err := r.uint32()
	if err != nil {
		return nil, fmt.Errorf("reading embedding count: %w", err)
	}

	c := vecdb.NewCollection(int(dimension), distance)
	c.Embeddings = make([]vecdb.Embedding, 0, count)

	for i := uint32(0); i < count; i++ {
		idLen, err := r.uint32()
		if err != nil {
			return nil, fmt.Errorf("reading id length of embedding %d: %w", i, err)
		}
		id, err := r.bytes(int(idLen))
		if err != nil {
			return nil, fmt.Errorf("reading id of embedding %d: %w", i, err)
		}

		vector := make([]float32, dimension)
		for j := range vector {
			bits, err := r.uint32()
			if err != nil {
				return nil, fmt.Errorf("reading vector component %d of embedding %d: %w", j, i, err)
			}
			vector[j] = math.Float32frombits(bits)
		}

		metaCount, err := r.uint32()
		if err != nil {
			return nil, fmt.Errorf("reading metadata count of embedding %d: %w", i, err)
		}
		var metadata map[string]string
		if metaCount > 0 {
			metadata = make(map[string]string, metaCount)
		}
		for j := uint32(0); j < metaCount; j++ {
			keyLen, err := r.uint32()
			if err != nil {
				return nil, fmt.Errorf("reading metadata key length %d of embedding %d: %w", j, i, err)
			}
			key, err := r.bytes(int(keyLen))
			if err != nil {
				return nil, fmt.Errorf("reading metadata key %d of embedding %d: %w", j, i, err)
			}
			valLen, err := r.uint32()
			if err != nil {
				return nil, fmt.Errorf("reading metadata value length %d of embedding %d: %w", j, i, err)
			}
			val, err := r.bytes(int(valLen))
			if err != nil {
				return nil, fmt.Errorf("reading metadata value %d of embedding %d: %w", j, i, err)
			}
			metadata[string(key)] = string(val)
		}

		c.Embeddings = append(c.Embeddings, vecdb.Embedding{
			ID:       string(id),
			Vector:   vector,
			Metadata: metadata,
		})
	}

	c.UnsetDirty()
	return c, nil
}

// reader walks a byte slice left to right, erroring on any out-of-bounds read
// instead of panicking on a truncated or corrupted record.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) byte_() (byte, error) {
	if r.pos+1 > len(r.buf) {
		return 0, fmt.Errorf("unexpected end of record at offset %d", r.pos)
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) uint32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, fmt.Errorf("unexpected end of record at offset %d", r.pos)
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("unexpected end of record at offset %d, wanted %d bytes", r.pos, n)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

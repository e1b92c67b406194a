package persist

import (
	"testing"

	"github.com/prantlf/litevec/internal/vecdb"
)

func TestEncodeDecodeCollection_RoundTrips(t *testing.T) {
	c := vecdb.NewCollection(3, vecdb.Cosine)
	if err := c.Insert(vecdb.Embedding{ID: "a", Vector: []float32{1, 0, 0}, Metadata: map[string]string{"tag": "x"}}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := c.Insert(vecdb.Embedding{ID: "b", Vector: []float32{0, 1, 0}}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	encoded := encodeCollection(c)
	decoded, err := decodeCollection(encoded)
	if err != nil {
		t.Fatalf("decodeCollection: %v", err)
	}

	if decoded.Dimension != c.Dimension {
		t.Errorf("Dimension = %d, want %d", decoded.Dimension, c.Dimension)
	}
	if decoded.Distance != c.Distance {
		t.Errorf("Distance = %v, want %v", decoded.Distance, c.Distance)
	}
	if decoded.IsDirty() {
		t.Error("a decoded collection should not be dirty")
	}
	if decoded.Count() != 2 {
		t.Fatalf("Count = %d, want 2", decoded.Count())
	}

	a, err := decoded.Get("a")
	if err != nil {
		t.Fatalf("Get(a): %v", err)
	}
	if len(a.Vector) != 3 || a.Vector[0] != 1 {
		t.Errorf("a.Vector = %v, want [1 0 0]", a.Vector)
	}
	if a.Metadata["tag"] != "x" {
		t.Errorf("a.Metadata = %v, want tag=x", a.Metadata)
	}

	b, err := decoded.Get("b")
	if err != nil {
		t.Fatalf("Get(b): %v", err)
	}
	if b.Metadata != nil {
		t.Errorf("b.Metadata = %v, want nil", b.Metadata)
	}
}

func TestEncodeDecodeCollection_Empty(t *testing.T) {
	c := vecdb.NewCollection(4, vecdb.Euclidean)
	decoded, err := decodeCollection(encodeCollection(c))
	if err != nil {
		t.Fatalf("decodeCollection: %v", err)
	}
	if decoded.Count() != 0 {
		t.Errorf("Count = %d, want 0", decoded.Count())
	}
}

func TestDecodeCollection_RejectsUnknownVersion(t *testing.T) {
	b := encodeCollection(vecdb.NewCollection(2, vecdb.Dot))
	b[0] = 0xFF
	if _, err := decodeCollection(b); err == nil {
		t.Error("expected an error decoding an unrecognized format version")
	}
}

func TestDecodeCollection_RejectsTruncatedRecord(t *testing.T) {
	c := vecdb.NewCollection(2, vecdb.Dot)
	_ = c.Insert(vecdb.Embedding{ID: "a", Vector: []float32{1, 2}})
	b := encodeCollection(c)
	if _, err := decodeCollection(b[:len(b)-2]); err == nil {
		t.Error("expected an error decoding a truncated record")
	}
}

func TestDecodeCollection_RejectsUnknownDistanceTag(t *testing.T) {
	b := encodeCollection(vecdb.NewCollection(2, vecdb.Cosine))
	b[1] = 0x7F
	if _, err := decodeCollection(b); err == nil {
		t.Error("expected an error decoding an unrecognized distance tag")
	}
}

package vecdb

import (
	"errors"
	"testing"
)

func TestCollection_InsertAndGet(t *testing.T) {
	c := NewCollection(3, Euclidean)
	if !c.IsDirty() {
		t.Error("a freshly created collection should be dirty")
	}
	if err := c.Insert(Embedding{ID: "a", Vector: []float32{1, 2, 3}}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := c.Get("a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "a" || len(got.Vector) != 3 {
		t.Errorf("Get returned %+v", got)
	}
}

func TestCollection_InsertDuplicateID(t *testing.T) {
	c := NewCollection(2, Euclidean)
	if err := c.Insert(Embedding{ID: "a", Vector: []float32{1, 2}}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := c.Insert(Embedding{ID: "a", Vector: []float32{3, 4}})
	if !errors.Is(err, ErrUniqueViolation) {
		t.Errorf("Insert duplicate id: err = %v, want ErrUniqueViolation", err)
	}
}

func TestCollection_InsertDimensionMismatch(t *testing.T) {
	c := NewCollection(3, Euclidean)
	err := c.Insert(Embedding{ID: "a", Vector: []float32{1, 2}})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Insert wrong dimension: err = %v, want ErrDimensionMismatch", err)
	}
}

func TestCollection_InsertNormalizesForCosine(t *testing.T) {
	c := NewCollection(2, Cosine)
	if err := c.Insert(Embedding{ID: "a", Vector: []float32{3, 4}}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	stored, _ := c.Get("a")
	if !almostEqual(l2Norm(stored.Vector), 1, 1e-5) {
		t.Errorf("cosine collection should normalize on insert, norm = %f", l2Norm(stored.Vector))
	}
}

func TestCollection_GetNotFound(t *testing.T) {
	c := NewCollection(2, Euclidean)
	_, err := c.Get("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing id: err = %v, want ErrNotFound", err)
	}
}

func TestCollection_UpdateMetadata(t *testing.T) {
	c := NewCollection(2, Euclidean)
	_ = c.Insert(Embedding{ID: "a", Vector: []float32{1, 1}})
	c.UnsetDirty()

	if !c.UpdateMetadata("a", map[string]string{"k": "v"}) {
		t.Error("UpdateMetadata should report found")
	}
	if !c.IsDirty() {
		t.Error("UpdateMetadata should mark the collection dirty")
	}
	got, _ := c.Get("a")
	if got.Metadata["k"] != "v" {
		t.Errorf("metadata not updated: %+v", got.Metadata)
	}
	if c.UpdateMetadata("missing", nil) {
		t.Error("UpdateMetadata on missing id should report not found")
	}
}

func TestCollection_Delete(t *testing.T) {
	c := NewCollection(2, Euclidean)
	_ = c.Insert(Embedding{ID: "a", Vector: []float32{1, 1}})
	_ = c.Insert(Embedding{ID: "b", Vector: []float32{2, 2}})

	if !c.Delete("a") {
		t.Error("Delete existing id should report true")
	}
	if c.Delete("a") {
		t.Error("second Delete of same id should report false")
	}
	if c.Count() != 1 {
		t.Errorf("Count after delete = %d, want 1", c.Count())
	}
}

func TestCollection_DeleteByMetadata_EmptyFilterClearsAll(t *testing.T) {
	c := NewCollection(2, Euclidean)
	_ = c.Insert(Embedding{ID: "a", Vector: []float32{1, 1}})
	_ = c.Insert(Embedding{ID: "b", Vector: []float32{2, 2}})

	if !c.DeleteByMetadata(nil) {
		t.Error("DeleteByMetadata(nil) on non-empty collection should report true")
	}
	if c.Count() != 0 {
		t.Errorf("Count after clear = %d, want 0", c.Count())
	}
}

func TestCollection_DeleteByMetadata_FilterSelectsSubset(t *testing.T) {
	c := NewCollection(2, Euclidean)
	_ = c.Insert(Embedding{ID: "a", Vector: []float32{1, 1}, Metadata: map[string]string{"lang": "go"}})
	_ = c.Insert(Embedding{ID: "b", Vector: []float32{2, 2}, Metadata: map[string]string{"lang": "rust"}})
	_ = c.Insert(Embedding{ID: "c", Vector: []float32{3, 3}, Metadata: map[string]string{"lang": "go"}})

	removed := c.DeleteByMetadata(Filter{{"lang": "go"}})
	if !removed {
		t.Error("DeleteByMetadata should report true when something matched")
	}
	if c.Count() != 1 {
		t.Fatalf("Count after filtered delete = %d, want 1", c.Count())
	}
	remaining, _ := c.Get("b")
	if remaining.ID != "b" {
		t.Errorf("survivor = %+v, want id b", remaining)
	}
}

func TestCollection_DeleteByMetadata_NoMatchReportsFalse(t *testing.T) {
	c := NewCollection(2, Euclidean)
	_ = c.Insert(Embedding{ID: "a", Vector: []float32{1, 1}, Metadata: map[string]string{"lang": "go"}})

	if c.DeleteByMetadata(Filter{{"lang": "python"}}) {
		t.Error("DeleteByMetadata with no match should report false")
	}
	if c.Count() != 1 {
		t.Errorf("Count should be unchanged, got %d", c.Count())
	}
}

func TestCollection_GetByMetadata_RespectsKAndNovector(t *testing.T) {
	c := NewCollection(2, Euclidean)
	for i := 0; i < 5; i++ {
		_ = c.Insert(Embedding{
			ID:       string(rune('a' + i)),
			Vector:   []float32{float32(i), float32(i)},
			Metadata: map[string]string{"tag": "x"},
		})
	}

	out := c.GetByMetadata(Filter{{"tag": "x"}}, 2, true)
	if len(out) != 2 {
		t.Fatalf("got %d results, want 2", len(out))
	}
	for _, e := range out {
		if e.Vector != nil {
			t.Errorf("novector=true should clear vectors, got %v", e.Vector)
		}
	}
}

func TestCollection_Query_ReturnsBestFirst(t *testing.T) {
	c := NewCollection(2, Euclidean)
	_ = c.Insert(Embedding{ID: "far", Vector: []float32{10, 10}})
	_ = c.Insert(Embedding{ID: "near", Vector: []float32{1, 1}})
	_ = c.Insert(Embedding{ID: "mid", Vector: []float32{5, 5}})

	results := c.Query(nil, []float32{0, 0}, 2)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Embedding.ID != "near" {
		t.Errorf("results[0].ID = %q, want near", results[0].Embedding.ID)
	}
	if results[1].Embedding.ID != "mid" {
		t.Errorf("results[1].ID = %q, want mid", results[1].Embedding.ID)
	}
}

func TestCollection_Query_AppliesFilter(t *testing.T) {
	c := NewCollection(2, Euclidean)
	_ = c.Insert(Embedding{ID: "a", Vector: []float32{1, 1}, Metadata: map[string]string{"tag": "keep"}})
	_ = c.Insert(Embedding{ID: "b", Vector: []float32{0, 0}, Metadata: map[string]string{"tag": "skip"}})

	results := c.Query(Filter{{"tag": "keep"}}, []float32{0, 0}, 5)
	if len(results) != 1 || results[0].Embedding.ID != "a" {
		t.Errorf("filtered query = %+v, want only id a", results)
	}
}

func TestCollection_Query_NoCandidatesReturnsNil(t *testing.T) {
	c := NewCollection(2, Euclidean)
	_ = c.Insert(Embedding{ID: "a", Vector: []float32{1, 1}})

	results := c.Query(Filter{{"tag": "absent"}}, []float32{0, 0}, 5)
	if results != nil {
		t.Errorf("Query with no matches = %v, want nil", results)
	}
}

func TestCollection_ListIDs_PreservesInsertionOrder(t *testing.T) {
	c := NewCollection(1, Euclidean)
	_ = c.Insert(Embedding{ID: "z", Vector: []float32{1}})
	_ = c.Insert(Embedding{ID: "a", Vector: []float32{2}})

	ids := c.ListIDs()
	if len(ids) != 2 || ids[0] != "z" || ids[1] != "a" {
		t.Errorf("ListIDs = %v, want [z a]", ids)
	}
}

package vecdb

// Collection is a named, dimension-fixed, metric-fixed sequence of embeddings.
//
// Collection methods are not safe for concurrent use on their own: Database holds
// the single reader-writer lock that guards every Collection it owns (§5 of
// SPEC_FULL.md), so all access must go through a Database handle.
type Collection struct {
	Dimension int
	Distance  Distance
	Embeddings []Embedding
	dirty     bool
}

// NewCollection creates an empty, dirty collection (a freshly created collection is
// born dirty since it has never been flushed).
func NewCollection(dimension int, distance Distance) *Collection {
	return &Collection{
		Dimension: dimension,
		Distance:  distance,
		dirty:     true,
	}
}

// IsDirty reports whether the collection has been modified since its last flush.
func (c *Collection) IsDirty() bool { return c.dirty }

// SetDirty marks the collection as modified since its last flush.
func (c *Collection) SetDirty() { c.dirty = true }

// UnsetDirty clears the dirty flag; called only by a successful flush.
func (c *Collection) UnsetDirty() { c.dirty = false }

// Count returns the number of embeddings currently in the collection.
func (c *Collection) Count() int { return len(c.Embeddings) }

// ListIDs returns embedding identifiers in insertion order.
func (c *Collection) ListIDs() []string {
	ids := make([]string, len(c.Embeddings))
	for i, e := range c.Embeddings {
		ids[i] = e.ID
	}
	return ids
}

// Get returns the embedding with the given id, or ErrNotFound.
func (c *Collection) Get(id string) (Embedding, error) {
	for _, e := range c.Embeddings {
		if e.ID == id {
			return e, nil
		}
	}
	return Embedding{}, ErrNotFound
}

func (c *Collection) indexOf(id string) int {
	for i, e := range c.Embeddings {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// GetByMetadata returns up to k embeddings, in insertion order, whose metadata
// matches filter. If novector is true, returned copies have their Vector cleared to
// save bandwidth; the stored embeddings are unaffected.
func (c *Collection) GetByMetadata(filter Filter, k int, novector bool) []Embedding {
	var out []Embedding
	for _, e := range c.Embeddings {
		if len(out) >= k {
			break
		}
		if !Match(filter, e) {
			continue
		}
		if novector {
			clone := e
			clone.Vector = nil
			out = append(out, clone)
		} else {
			out = append(out, e)
		}
	}
	return out
}

// Query applies filter to produce a candidate set, scores each candidate in
// parallel under the collection's metric, and returns the k best matches ascending
// by sortable score (smaller is better; see Score). query must already have length
// Dimension — callers are responsible for the dimension check so the mismatch can
// be reported before any scoring work starts.
func (c *Collection) Query(filter Filter, query []float32, k int) []SimilarityResult {
	var candidates []int
	for i, e := range c.Embeddings {
		if Match(filter, e) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	scored := scoreCandidates(c.Embeddings, candidates, c.Distance, query)
	top := selectTopK(scored, k)

	out := make([]SimilarityResult, len(top))
	for i, s := range top {
		out[i] = SimilarityResult{Score: s.score, Embedding: c.Embeddings[s.index]}
	}
	return out
}

// Insert appends embedding to the collection, rejecting a duplicate id
// (ErrUniqueViolation) or a vector whose length doesn't match Dimension
// (ErrDimensionMismatch). Cosine collections normalize the vector before storing it.
func (c *Collection) Insert(e Embedding) error {
	if c.indexOf(e.ID) >= 0 {
		return ErrUniqueViolation
	}
	if len(e.Vector) != c.Dimension {
		return ErrDimensionMismatch
	}
	if c.Distance == Cosine {
		e.Vector = Normalize(e.Vector)
	}
	c.Embeddings = append(c.Embeddings, e)
	c.SetDirty()
	return nil
}

// UpdateMetadata replaces the entire metadata mapping of the embedding with the
// given id (nil clears it). It reports whether a matching embedding was found.
func (c *Collection) UpdateMetadata(id string, metadata map[string]string) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.Embeddings[idx].Metadata = metadata
	c.SetDirty()
	return true
}

// Delete removes the embedding with the given id. It reports whether anything was
// removed.
func (c *Collection) Delete(id string) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.Embeddings = append(c.Embeddings[:idx], c.Embeddings[idx+1:]...)
	c.SetDirty()
	return true
}

// DeleteByMetadata removes every embedding matching filter (or every embedding, if
// filter is empty). It reports whether anything was removed.
func (c *Collection) DeleteByMetadata(filter Filter) bool {
	if len(filter) == 0 {
		removed := len(c.Embeddings) > 0
		c.Embeddings = nil
		if removed {
			c.SetDirty()
		}
		return removed
	}

	matched := matchAll(c.Embeddings, filter)

	kept := c.Embeddings[:0:0]
	removed := false
	for i, e := range c.Embeddings {
		if matched[i] {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	c.Embeddings = kept
	if removed {
		c.SetDirty()
	}
	return removed
}

package vecdb

// Distance identifies the metric a collection scores queries with.
type Distance int

const (
	// Cosine scores by dot product of L2-normalized vectors.
	Cosine Distance = iota
	// Euclidean scores by squared L2 distance.
	Euclidean
	// Dot scores by plain dot product, unnormalized.
	Dot
)

// String renders the metric name used in the HTTP/MCP wire formats.
func (d Distance) String() string {
	switch d {
	case Cosine:
		return "cosine"
	case Euclidean:
		return "euclidean"
	case Dot:
		return "dot"
	default:
		return "unknown"
	}
}

// DistanceFromTag maps a persisted record's one-byte distance tag back to a
// Distance, reporting false for a tag outside the known metrics. The tag is simply
// the Distance value's underlying int, so the meaning of a stored tag follows the
// iota order of the constants above.
func DistanceFromTag(tag byte) (Distance, bool) {
	switch Distance(tag) {
	case Cosine, Euclidean, Dot:
		return Distance(tag), true
	default:
		return 0, false
	}
}

// ParseDistance parses the wire representation of a distance metric.
func ParseDistance(s string) (Distance, bool) {
	switch s {
	case "cosine":
		return Cosine, true
	case "euclidean":
		return Euclidean, true
	case "dot":
		return Dot, true
	default:
		return 0, false
	}
}

// Embedding is a single vector record stored in a collection.
type Embedding struct {
	ID       string            `json:"id"`
	Vector   []float32         `json:"vector"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SimilarityResult pairs an embedding with its sortable score from a KNN query.
// The score is already negated for Cosine and Dot metrics (see Collection.Query),
// so that smaller is always better across every metric.
type SimilarityResult struct {
	Score     float32   `json:"score"`
	Embedding Embedding `json:"embedding"`
}

// Filter is a disjunction of conjunctions over embedding metadata: an embedding
// matches the filter if it matches any one clause, and it matches a clause if it
// carries every (key, value) pair the clause names. An empty Filter matches every
// embedding; an empty Clause inside a non-empty Filter matches every embedding that
// carries metadata (a vacuous conjunction — see Match).
type Filter []Clause

// Clause is a conjunction of exact string-equality requirements on metadata.
type Clause map[string]string

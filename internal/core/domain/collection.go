package domain

// CollectionProfile names a vector collection and carries the fixed
// natural-language descriptions used to route questions to it. Profiles
// exist purely for routing; they are not stored per document.
type CollectionProfile struct {
	// Name is the collection name in the vector store.
	Name string

	// Descriptions are short natural-language summaries of the
	// collection's topical scope. Their mean embedding is compared
	// against the question embedding.
	Descriptions []string
}

// CollectionInfo is the vector store's view of a collection.
type CollectionInfo struct {
	Name          string
	Status        string
	PointsCount   uint64
	SegmentsCount uint64
}

// ExpandStrategy selects how an initial hit-set is widened into the answer
// context.
type ExpandStrategy int

const (
	// ExpandDocument retrieves every chunk of each matched document plus
	// its one-hop relatives (parent and children).
	ExpandDocument ExpandStrategy = iota

	// ExpandWindow retrieves chunks within a page window around the
	// matched pages of each document.
	ExpandWindow
)

// String returns the strategy name for logging.
func (s ExpandStrategy) String() string {
	switch s {
	case ExpandWindow:
		return "page-window"
	case ExpandDocument:
		return "whole-document"
	default:
		return "unknown"
	}
}

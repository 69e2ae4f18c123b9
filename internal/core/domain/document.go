package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// DocumentRecord is the catalog entry for one logical document.
// There is exactly one record per logical document; updating content swaps
// ActiveVersionHash and BlobRef in place but preserves ID.
type DocumentRecord struct {
	// ID is the store-assigned identifier. Immutable.
	ID string

	// OriginalFilename is the filename the document was uploaded with.
	OriginalFilename string

	// CollectionName is the vector collection the document is indexed in.
	CollectionName string

	// ActiveVersionHash is the content hash of the currently indexed
	// version; vectors for older hashes are purged on update.
	ActiveVersionHash string

	// BlobRef references the stored file content. Blobs are content
	// addressed, so two records may share one ref.
	BlobRef string

	// ParentID links to another record for a single-level "belongs to"
	// relation (an amendment belonging to a contract). Callers must not
	// create cycles; the model does not check beyond one hop.
	ParentID *string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document version last changed.
	UpdatedAt time.Time
}

// Blob is stored file content together with the metadata declared at put
// time. Content is raw bytes addressed by hash.
type Blob struct {
	Content     []byte
	ContentType string
	Filename    string
}

// HashContent returns the hex-encoded SHA-256 of the document bytes.
// This is the document version hash used across all three stores.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// CleanIdentifier normalises identifiers that arrive as "key=value" pairs
// from sloppy clients, keeping only the value part. A plain identifier is
// returned unchanged.
func CleanIdentifier(id string) string {
	if idx := strings.LastIndex(id, "="); idx >= 0 {
		return strings.TrimSpace(id[idx+1:])
	}
	return strings.TrimSpace(id)
}

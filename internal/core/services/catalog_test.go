package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

func newTestCatalog() (*DocumentCatalog, *memory.CatalogStore, *memory.BlobStore) {
	store := memory.NewCatalogStore()
	blobs := memory.NewBlobStore()
	return NewDocumentCatalog(store, blobs), store, blobs
}

func TestCreateDocument(t *testing.T) {
	catalog, _, _ := newTestCatalog()
	ctx := context.Background()

	content := []byte("contract body")
	hash := domain.HashContent(content)

	id, err := catalog.CreateDocument(ctx, "contract.pdf", "contracts", hash, content, "")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := catalog.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "contract.pdf", rec.OriginalFilename)
	assert.Equal(t, hash, rec.ActiveVersionHash)
	assert.Equal(t, hash, rec.BlobRef)
	assert.Nil(t, rec.ParentID)

	blob, err := catalog.GetBlob(ctx, rec.BlobRef)
	require.NoError(t, err)
	assert.Equal(t, content, blob.Content)
	assert.Equal(t, "application/pdf", blob.ContentType)
}

func TestCreateDocument_WithParent(t *testing.T) {
	catalog, _, _ := newTestCatalog()
	ctx := context.Background()

	parentID, err := catalog.CreateDocument(ctx, "contract.pdf", "contracts", "hash-p", []byte("p"), "")
	require.NoError(t, err)

	childID, err := catalog.CreateDocument(ctx, "amendment.pdf", "contracts", "hash-c", []byte("c"), "id="+parentID)
	require.NoError(t, err)

	child, err := catalog.GetByID(ctx, childID)
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parentID, *child.ParentID)
}

func TestUpdateDocument_ReleasesUnreferencedBlob(t *testing.T) {
	catalog, _, blobs := newTestCatalog()
	ctx := context.Background()

	id, err := catalog.CreateDocument(ctx, "doc.pdf", "contracts", "hash-old", []byte("old"), "")
	require.NoError(t, err)

	rec, err := catalog.GetByID(ctx, id)
	require.NoError(t, err)

	require.NoError(t, catalog.UpdateDocument(ctx, rec, "hash-new", "doc-v2.pdf", []byte("new")))

	updated, err := catalog.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hash-new", updated.ActiveVersionHash)
	assert.Equal(t, "doc-v2.pdf", updated.OriginalFilename)

	exists, err := blobs.Exists(ctx, "hash-old")
	require.NoError(t, err)
	assert.False(t, exists, "old blob should be gone once unreferenced")

	exists, err = blobs.Exists(ctx, "hash-new")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpdateDocument_KeepsSharedBlob(t *testing.T) {
	catalog, _, blobs := newTestCatalog()
	ctx := context.Background()

	// Two records share the same content-addressed blob.
	firstID, err := catalog.CreateDocument(ctx, "a.pdf", "contracts", "hash-shared", []byte("same"), "")
	require.NoError(t, err)
	_, err = catalog.CreateDocument(ctx, "b.pdf", "invoices", "hash-shared", []byte("same"), "")
	require.NoError(t, err)

	rec, err := catalog.GetByID(ctx, firstID)
	require.NoError(t, err)
	require.NoError(t, catalog.UpdateDocument(ctx, rec, "hash-solo", "a-v2.pdf", []byte("changed")))

	exists, err := blobs.Exists(ctx, "hash-shared")
	require.NoError(t, err)
	assert.True(t, exists, "blob still referenced by the other record")
}

func TestDeleteDocument_ReferenceCounted(t *testing.T) {
	catalog, _, blobs := newTestCatalog()
	ctx := context.Background()

	firstID, err := catalog.CreateDocument(ctx, "a.pdf", "contracts", "hash-shared", []byte("same"), "")
	require.NoError(t, err)
	secondID, err := catalog.CreateDocument(ctx, "b.pdf", "invoices", "hash-shared", []byte("same"), "")
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteDocument(ctx, firstID))
	exists, err := blobs.Exists(ctx, "hash-shared")
	require.NoError(t, err)
	assert.True(t, exists, "blob survives while the second record references it")

	require.NoError(t, catalog.DeleteDocument(ctx, secondID))
	exists, err = blobs.Exists(ctx, "hash-shared")
	require.NoError(t, err)
	assert.False(t, exists, "last delete releases the blob")

	err = catalog.DeleteDocument(ctx, firstID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByID_CleansIdentifier(t *testing.T) {
	catalog, _, _ := newTestCatalog()
	ctx := context.Background()

	id, err := catalog.CreateDocument(ctx, "doc.pdf", "contracts", "hash-1", []byte("x"), "")
	require.NoError(t, err)

	rec, err := catalog.GetByID(ctx, "document_id="+id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
}

func TestFindRelatedDocuments(t *testing.T) {
	catalog, _, _ := newTestCatalog()
	ctx := context.Background()

	grandparentID, err := catalog.CreateDocument(ctx, "root.pdf", "contracts", "hash-gp", []byte("gp"), "")
	require.NoError(t, err)
	parentID, err := catalog.CreateDocument(ctx, "contract.pdf", "contracts", "hash-p", []byte("p"), grandparentID)
	require.NoError(t, err)
	childID, err := catalog.CreateDocument(ctx, "amendment.pdf", "contracts", "hash-c", []byte("c"), parentID)
	require.NoError(t, err)
	_, err = catalog.CreateDocument(ctx, "other.pdf", "contracts", "hash-o", []byte("o"), "")
	require.NoError(t, err)

	related, err := catalog.FindRelatedDocuments(ctx, []string{parentID})
	require.NoError(t, err)

	ids := make([]string, 0, len(related))
	for _, rec := range related {
		ids = append(ids, rec.ID)
	}
	// One hop each way: the record, its parent, and its children.
	assert.ElementsMatch(t, []string{grandparentID, parentID, childID}, ids)
}

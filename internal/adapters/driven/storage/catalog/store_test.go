package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestRecord(collection, hash string) *domain.DocumentRecord {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.DocumentRecord{
		ID:                uuid.New().String(),
		OriginalFilename:  "contract.pdf",
		CollectionName:    collection,
		ActiveVersionHash: hash,
		BlobRef:           hash,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestInsertAndGetByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := newTestRecord("contracts", "hash-1")
	require.NoError(t, store.Insert(ctx, rec))

	got, err := store.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "contract.pdf", got.OriginalFilename)
	assert.Equal(t, "contracts", got.CollectionName)
	assert.Equal(t, "hash-1", got.ActiveVersionHash)
	assert.Nil(t, got.ParentID)
}

func TestInsert_MissingID(t *testing.T) {
	store := newTestStore(t)

	rec := newTestRecord("contracts", "hash-1")
	rec.ID = ""

	err := store.Insert(context.Background(), rec)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetByID_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetByID(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Malformed ids are not found, never a format error.
	_, err = store.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := newTestRecord("contracts", "hash-1")
	require.NoError(t, store.Insert(ctx, rec))

	rec.OriginalFilename = "contract-v2.pdf"
	rec.ActiveVersionHash = "hash-2"
	rec.BlobRef = "hash-2"
	rec.UpdatedAt = rec.UpdatedAt.Add(time.Hour)
	require.NoError(t, store.Update(ctx, rec))

	got, err := store.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "contract-v2.pdf", got.OriginalFilename)
	assert.Equal(t, "hash-2", got.ActiveVersionHash)
	assert.Equal(t, "hash-2", got.BlobRef)
	assert.Equal(t, "contracts", got.CollectionName)
	assert.Equal(t, rec.CreatedAt, got.CreatedAt.UTC())
}

func TestUpdate_NotFound(t *testing.T) {
	store := newTestStore(t)

	rec := newTestRecord("contracts", "hash-1")
	err := store.Update(context.Background(), rec)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := newTestRecord("contracts", "hash-1")
	require.NoError(t, store.Insert(ctx, rec))
	require.NoError(t, store.Delete(ctx, rec.ID))

	_, err := store.GetByID(ctx, rec.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = store.Delete(ctx, rec.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByHash_ScopedToCollection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, newTestRecord("contracts", "shared-hash")))
	require.NoError(t, store.Insert(ctx, newTestRecord("invoices", "shared-hash")))

	got, err := store.GetByHash(ctx, "invoices", "shared-hash")
	require.NoError(t, err)
	assert.Equal(t, "invoices", got.CollectionName)

	_, err = store.GetByHash(ctx, "reports", "shared-hash")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFirstByHash(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, newTestRecord("contracts", "hash-x")))

	got, err := store.FirstByHash(ctx, "hash-x")
	require.NoError(t, err)
	assert.Equal(t, "hash-x", got.ActiveVersionHash)

	_, err = store.FirstByHash(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFindByHashes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, newTestRecord("contracts", "hash-a")))
	require.NoError(t, store.Insert(ctx, newTestRecord("contracts", "hash-b")))
	require.NoError(t, store.Insert(ctx, newTestRecord("invoices", "hash-c")))

	records, err := store.FindByHashes(ctx, "contracts", []string{"hash-a", "hash-b", "hash-c"})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = store.FindByHashes(ctx, "contracts", nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFindByIDs_SkipsUnknown(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := newTestRecord("contracts", "hash-a")
	require.NoError(t, store.Insert(ctx, rec))

	records, err := store.FindByIDs(ctx, []string{rec.ID, uuid.New().String()})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
}

func TestFindByIDsOrParents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	parent := newTestRecord("contracts", "hash-parent")
	require.NoError(t, store.Insert(ctx, parent))

	child := newTestRecord("contracts", "hash-child")
	child.ParentID = &parent.ID
	require.NoError(t, store.Insert(ctx, child))

	unrelated := newTestRecord("contracts", "hash-other")
	require.NoError(t, store.Insert(ctx, unrelated))

	records, err := store.FindByIDsOrParents(ctx, []string{parent.ID})
	require.NoError(t, err)
	require.Len(t, records, 2)

	ids := []string{records[0].ID, records[1].ID}
	assert.Contains(t, ids, parent.ID)
	assert.Contains(t, ids, child.ID)
}

func TestCountByBlobRef(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := newTestRecord("contracts", "hash-a")
	first.BlobRef = "blob-1"
	require.NoError(t, store.Insert(ctx, first))

	second := newTestRecord("invoices", "hash-b")
	second.BlobRef = "blob-1"
	require.NoError(t, store.Insert(ctx, second))

	count, err := store.CountByBlobRef(ctx, "blob-1", first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = store.CountByBlobRef(ctx, "blob-1", uuid.New().String())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = store.CountByBlobRef(ctx, "blob-unknown", first.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDocumentStore_StoreInvoiceDocument(t *testing.T) {
	store := NewMemoryDocumentStore()

	stored, err := store.StoreInvoiceDocument(context.Background(), "INV-2026-001", []byte("pdf-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "memory", stored.DriveID)
	assert.Equal(t, "INV-2026-001", stored.ItemID)
	assert.Equal(t, "memory://INV-2026-001", stored.WebURL)

	content, ok := store.Document("INV-2026-001")
	require.True(t, ok)
	assert.Equal(t, []byte("pdf-bytes"), content)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryDocumentStore_RequiresInvoiceNumber(t *testing.T) {
	store := NewMemoryDocumentStore()

	_, err := store.StoreInvoiceDocument(context.Background(), "", []byte("content"))
	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryDocumentStore_OverwritesOnReArchive(t *testing.T) {
	store := NewMemoryDocumentStore()

	_, err := store.StoreInvoiceDocument(context.Background(), "INV-2026-002", []byte("v1"))
	require.NoError(t, err)
	_, err = store.StoreInvoiceDocument(context.Background(), "INV-2026-002", []byte("v2"))
	require.NoError(t, err)

	content, ok := store.Document("INV-2026-002")
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), content)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryDocumentStore_CopiesContent(t *testing.T) {
	store := NewMemoryDocumentStore()

	original := []byte("immutable")
	_, err := store.StoreInvoiceDocument(context.Background(), "INV-2026-003", original)
	require.NoError(t, err)

	original[0] = 'X'

	content, _ := store.Document("INV-2026-003")
	assert.Equal(t, []byte("immutable"), content)
}

package storage

import (
	"context"
	"fmt"
	"sync"

	billingapp "github.com/kontor/backend/internal/application/billing"
)

var _ billingapp.DocumentStore = (*MemoryDocumentStore)(nil)

// MemoryDocumentStore keeps archived documents in process memory. It backs
// deployments without object storage configured, and tests.
type MemoryDocumentStore struct {
	mu        sync.RWMutex
	documents map[string][]byte
}

// NewMemoryDocumentStore creates an empty MemoryDocumentStore
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		documents: make(map[string][]byte),
	}
}

// StoreInvoiceDocument stores the document content under the invoice number.
// Re-archiving the same invoice overwrites the previous content.
func (s *MemoryDocumentStore) StoreInvoiceDocument(_ context.Context, invoiceNumber string, content []byte) (*billingapp.StoredDocument, error) {
	if invoiceNumber == "" {
		return nil, fmt.Errorf("invoice number is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(content))
	copy(buf, content)
	s.documents[invoiceNumber] = buf

	return &billingapp.StoredDocument{
		DriveID: "memory",
		ItemID:  invoiceNumber,
		WebURL:  "memory://" + invoiceNumber,
	}, nil
}

// Document returns the stored content for an invoice number
func (s *MemoryDocumentStore) Document(invoiceNumber string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.documents[invoiceNumber]
	return content, ok
}

// Len returns the number of stored documents
func (s *MemoryDocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

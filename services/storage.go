package services

import (
	"context"
	"log"
	"time"

	"github.com/desainhub/desainhub-api/storage"
)

const (
	DeliverableFolder = "desainhub_deliverables"
	ReceiptFolder     = "desainhub_receipts"
)

// FileStore is the storage backend used for deliverable files and receipts,
// set once at startup.
var FileStore storage.Storage

// releaseFile deletes a stored file best-effort. Callers invoke it only after
// the replacement reference is durably persisted, so a failure here orphans a
// file but never loses one.
func releaseFile(handle string) {
	if FileStore == nil || handle == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := FileStore.Delete(ctx, handle); err != nil {
		log.Printf("🔥 Failed to release stored file %s: %v", handle, err)
	}
}

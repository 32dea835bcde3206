package services

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
)

// EventArchive stores raw verified webhook payloads for manual
// reconciliation of events that keep failing.
type EventArchive struct {
	client *minio.Client
	bucket string
}

func NewEventArchive(client *minio.Client, bucket string) *EventArchive {
	return &EventArchive{client: client, bucket: bucket}
}

func ArchiveKey(eventID string) string {
	return "webhooks/" + eventID + ".json"
}

func (a *EventArchive) Archive(ctx context.Context, eventID string, payload []byte) error {
	key := ArchiveKey(eventID)
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}
	log.Printf("🗄️ Event archived to %s/%s", a.bucket, key)
	return nil
}

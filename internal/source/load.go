package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/yaldosari/sms-expense-tracker/internal/domain"
)

// Load reads and parses an SMS export from uri. gs:// URIs are fetched from
// Cloud Storage using ambient credentials; anything else is a local path.
func Load(ctx context.Context, uri string) ([]domain.RawMessage, error) {
	var data []byte
	var err error
	if strings.HasPrefix(uri, "gs://") {
		data, err = fetchFromGCS(ctx, uri)
	} else {
		data, err = os.ReadFile(uri)
		if err != nil {
			err = fmt.Errorf("source: read %s: %w", uri, err)
		}
	}
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(data))
}

func fetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	trimmed := strings.TrimPrefix(gcsURI, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("source: invalid GCS URI (no object path): %s", gcsURI)
	}
	bucketName, objectPath := parts[0], parts[1]

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("source: creating storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("source: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("source: reading bytes: %w", err)
	}
	return data, nil
}

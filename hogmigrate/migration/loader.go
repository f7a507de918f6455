package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ObjectFetcher fetches a remote object, see services.SpacesService.
type ObjectFetcher interface {
	FetchObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// LoadPersistenceDocument reads and decodes the legacy persistence file.
// The path is either a local file or s3://bucket/key, in which case the
// fetcher must be configured.
func LoadPersistenceDocument(ctx context.Context, path string, fetcher ObjectFetcher) (*PersistenceDocument, error) {
	logProgress(fmt.Sprintf("Reading %s...", path))

	var data []byte
	var err error
	if bucket, key, ok := splitSpacesPath(path); ok {
		if fetcher == nil {
			return nil, fmt.Errorf("input path %q requires spaces credentials in the config", path)
		}
		data, err = fetcher.FetchObject(ctx, bucket, key)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc PersistenceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	// Both sections must be present; a document without them is not a
	// persistence file from the old bot.
	if doc.LifetimeSums == nil {
		return nil, fmt.Errorf("%s: missing lifetime_sums section", path)
	}
	if doc.ThisWeekTimeSums == nil {
		return nil, fmt.Errorf("%s: missing this_week_time_sums section", path)
	}

	logProgress(fmt.Sprintf("Successfully read %s", path))
	return &doc, nil
}

func splitSpacesPath(path string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(path, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

package actors

import (
	stdctx "context"
	"encoding/json"
	"log/slog"

	"fedit/internal/database"
	"fedit/internal/utils"
)

// loadCollection decodes the JSON list stored under key. A missing key is an
// empty collection. Content that does not decode is logged and also read as
// empty; the next write under the key replaces it. Only backend failures are
// returned as errors.
func loadCollection[T any](ctx stdctx.Context, kv database.KeyValue, key string, logger *slog.Logger) ([]*T, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, utils.NewDatabaseError("Failed to read "+key, err)
	}
	if !ok {
		return []*T{}, nil
	}

	var decoded []*T
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		logger.Warn("stored collection is malformed, treating it as empty", "key", key, "error", err)
		return []*T{}, nil
	}

	records := make([]*T, 0, len(decoded))
	for _, record := range decoded {
		if record != nil {
			records = append(records, record)
		}
	}
	return records, nil
}

func saveCollection[T any](ctx stdctx.Context, kv database.KeyValue, key string, records []*T) error {
	data, err := json.Marshal(records)
	if err != nil {
		return utils.NewDatabaseError("Failed to encode "+key, err)
	}
	if err := kv.Set(ctx, key, string(data)); err != nil {
		return utils.NewDatabaseError("Failed to write "+key, err)
	}
	return nil
}

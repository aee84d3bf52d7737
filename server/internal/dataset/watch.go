package dataset

import (
	"context"
	"log/slog"

	"github.com/marocz/launchdash/server/internal/config"
)

// Watch calls onLoad with a freshly loaded Table each time the file at path
// is written or replaced. It runs until ctx is cancelled.
//
// A reload that fails (partial write, malformed row) is logged and skipped;
// whatever table the caller already holds stays in use.
func Watch(ctx context.Context, path string, cols config.ColumnsConfig, onLoad func(*Table)) error {
	return config.WatchFile(ctx, path, func() {
		t, err := Load(path, cols)
		if err != nil {
			slog.Error("dataset: reload failed, keeping previous table",
				"path", path, "err", err)
			return
		}
		slog.Info("dataset: reloaded", "path", path, "records", t.Len(), "sites", len(t.sites))
		onLoad(t)
	})
}

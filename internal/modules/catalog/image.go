package catalog

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/bhutan-travel/core/internal/modules/storage/image"
	"go.uber.org/zap"
)

// StoreImage uploads fh for a new row and returns the URL to persist.
// Storage failures are logged and the store's fallback URL is used so the
// entity save goes ahead.
func StoreImage(ctx context.Context, store image.Store, logger *zap.Logger, fh *multipart.FileHeader) string {
	return StageImage(ctx, store, logger, "", fh).URL
}

// ImageSwap is an image change staged on an existing row. URL is the value
// to persist; the previous image stays on storage until Finish.
type ImageSwap struct {
	URL   string
	fresh string
	stale string
}

// StageImage uploads fh without touching existing. A failed upload keeps
// existing, or the store's placeholder when there was none.
func StageImage(ctx context.Context, store image.Store, logger *zap.Logger, existing string, fh *multipart.FileHeader) ImageSwap {
	if fh == nil || store == nil {
		return ImageSwap{URL: existing}
	}
	url, err := store.Upload(ctx, fh)
	if err != nil {
		if strings.TrimSpace(existing) != "" {
			url = existing
		}
		logger.Warn("image upload failed, using fallback", zap.String("file", fh.Filename), zap.String("url", url), zap.Error(err))
		return ImageSwap{URL: url}
	}
	return ImageSwap{URL: url, fresh: url, stale: existing}
}

// Finish releases the replaced image once the row is saved. When the save
// failed the fresh upload is released instead and the row keeps pointing
// at its old image.
func (s ImageSwap) Finish(ctx context.Context, store image.Store, logger *zap.Logger, saved bool) {
	if saved {
		ReleaseImage(ctx, store, logger, s.stale)
		return
	}
	ReleaseImage(ctx, store, logger, s.fresh)
}

// ReleaseImage deletes url best-effort.
func ReleaseImage(ctx context.Context, store image.Store, logger *zap.Logger, url string) {
	if store == nil || url == "" {
		return
	}
	if _, err := store.Delete(ctx, url); err != nil {
		logger.Warn("release image", zap.String("url", url), zap.Error(err))
	}
}

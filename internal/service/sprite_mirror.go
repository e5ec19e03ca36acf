package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/timmy/pokedex/internal/domain"
	"github.com/timmy/pokedex/internal/logger"
	"github.com/timmy/pokedex/internal/storage"
	_ "golang.org/x/image/webp"
)

const defaultMirrorBatchSize = 100

// AssetDownloader fetches remote assets by URL.
type AssetDownloader interface {
	Download(ctx context.Context, url string) ([]byte, string, error)
}

// SpriteCatalog pages pokemon that still need a mirrored sprite and records the result.
type SpriteCatalog interface {
	ListSpritesToMirror(ctx context.Context, afterDexID, limit int) ([]domain.Pokemon, error)
	SetSpriteKey(ctx context.Context, dexID int, key string) error
}

// MirrorStats holds statistics for a sprite mirror run
type MirrorStats struct {
	Total    int `json:"total"`
	Uploaded int `json:"uploaded"`
	Reused   int `json:"reused"`
	Failed   int `json:"failed"`
}

// SpriteMirrorService copies upstream sprite images into object storage.
type SpriteMirrorService struct {
	catalog    SpriteCatalog
	downloader AssetDownloader
	storage    storage.ObjectStorage
	logger     *logger.Logger
}

// NewSpriteMirrorService creates a new sprite mirror service
func NewSpriteMirrorService(catalog SpriteCatalog, downloader AssetDownloader, objectStorage storage.ObjectStorage, log *logger.Logger) *SpriteMirrorService {
	return &SpriteMirrorService{
		catalog:    catalog,
		downloader: downloader,
		storage:    objectStorage,
		logger:     log,
	}
}

func (s *SpriteMirrorService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// SpriteKey returns the object key of a sprite, sharded by the last two digits of the dex id.
func SpriteKey(dexID int, ext string) string {
	return fmt.Sprintf("sprites/%02d/%d.%s", dexID%100, dexID, ext)
}

// MirrorSprites mirrors every sprite that has no stored key yet.
// Item failures are logged and counted; only catalog read failures stop the job.
func (s *SpriteMirrorService) MirrorSprites(ctx context.Context, batchSize int) (*MirrorStats, error) {
	if batchSize <= 0 {
		batchSize = defaultMirrorBatchSize
	}
	ctx = logger.SetComponent(ctx, "sprite_mirror")
	start := time.Now()
	stats := &MirrorStats{}

	after := 0
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		page, err := s.catalog.ListSpritesToMirror(ctx, after, batchSize)
		if err != nil {
			return stats, err
		}
		if len(page) == 0 {
			break
		}
		after = page[len(page)-1].DexID

		for _, p := range page {
			stats.Total++
			reused, err := s.mirrorOne(ctx, &p)
			if err != nil {
				stats.Failed++
				s.log(ctx).WithField(logger.FieldDexID, p.DexID).WithError(err).Warn("Sprite mirror failed")
				continue
			}
			if reused {
				stats.Reused++
			} else {
				stats.Uploaded++
			}
		}
	}

	logger.With(logger.Fields{
		"uploaded": stats.Uploaded,
		"reused":   stats.Reused,
		"failed":   stats.Failed,
	}).WithCount(stats.Total).
		WithElapsed(start).
		Info(ctx, "Sprite mirror finished")

	return stats, nil
}

func (s *SpriteMirrorService) mirrorOne(ctx context.Context, p *domain.Pokemon) (bool, error) {
	if p.SpriteDefault == nil || *p.SpriteDefault == "" {
		return false, fmt.Errorf("pokemon %d has no sprite url", p.DexID)
	}

	data, _, err := s.downloader.Download(ctx, *p.SpriteDefault)
	if err != nil {
		return false, err
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("sprite is not a decodable image: %w", err)
	}
	ext, contentType := imageFormat(format)
	key := SpriteKey(p.DexID, ext)

	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		return false, err
	}
	if !exists {
		if err := s.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
			return false, err
		}
	}

	if err := s.catalog.SetSpriteKey(ctx, p.DexID, key); err != nil {
		return false, err
	}
	return exists, nil
}

func imageFormat(format string) (ext, contentType string) {
	switch format {
	case "jpeg":
		return "jpg", "image/jpeg"
	case "gif":
		return "gif", "image/gif"
	case "webp":
		return "webp", "image/webp"
	default:
		return "png", "image/png"
	}
}

package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/inkwellapp/inkwell-server/internal/config"
	"github.com/inkwellapp/inkwell-server/internal/logger"
	"github.com/inkwellapp/inkwell-server/internal/media/covers"
	"github.com/inkwellapp/inkwell-server/internal/media/images"
)

// MediaHandle groups the image processing services. Processor and
// Downloader are nil when media is disabled by configuration.
type MediaHandle struct {
	Processor  *images.Processor
	Downloader *covers.Downloader
}

// ProvideMedia provides the image processor and cover downloader.
func ProvideMedia(i do.Injector) (*MediaHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Media.Enabled {
		log.Info("Media processing disabled by configuration")
		return &MediaHandle{}, nil
	}

	avatars, err := images.NewAvatarStorage(cfg.Media.BasePath)
	if err != nil {
		return nil, fmt.Errorf("avatar storage: %w", err)
	}

	coverStorage, err := images.NewCoverStorage(cfg.Media.BasePath)
	if err != nil {
		return nil, fmt.Errorf("cover storage: %w", err)
	}

	processor := images.NewProcessor(avatars, coverStorage, log.Logger)
	downloader := covers.NewDownloader(processor, log.Logger)

	log.Info("Media storage initialized", "path", cfg.Media.BasePath)

	return &MediaHandle{
		Processor:  processor,
		Downloader: downloader,
	}, nil
}

package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/somniaapp/somnia-server/internal/config"
	"github.com/somniaapp/somnia-server/internal/logger"
	"github.com/somniaapp/somnia-server/internal/media/images"
)

// ProvideAvatarStorage provides the avatar image storage.
func ProvideAvatarStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	avatars, err := images.NewStorage(cfg.Storage.DataPath)
	if err != nil {
		return nil, fmt.Errorf("avatar storage: %w", err)
	}

	log.Info("Avatar storage initialized")

	return avatars, nil
}

// ProvideImageProcessor provides the avatar image processor.
func ProvideImageProcessor(i do.Injector) (*images.Processor, error) {
	storage := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return images.NewProcessor(storage, log.Logger), nil
}

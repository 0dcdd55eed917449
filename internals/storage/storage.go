package storage

import (
	"fmt"

	"notesku_backend/internals/configs"
	"notesku_backend/internals/gateway"
)

// New memilih backend dari STORAGE_DRIVER.
func New(cfg configs.App) (gateway.Storage, error) {
	switch cfg.StorageDriver {
	case "oss":
		s, err := NewOSS(OSSConfig{
			Endpoint:      cfg.OSSEndpoint,
			AccessKey:     cfg.OSSAccessKey,
			SecretKey:     cfg.OSSSecretKey,
			SecurityToken: cfg.OSSSecurityToken,
			PublicBase:    cfg.OSSPublicBase,
		})
		if err != nil {
			return nil, err
		}
		if err := s.Verify(cfg.StorageBucket); err != nil {
			return nil, err
		}
		return s, nil
	case "local", "":
		return NewLocal(cfg.StorageLocalDir, cfg.PublicBaseURL)
	}
	return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
}

package classifier

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"screening-workers/internal/common/config"
	"screening-workers/internal/common/logger"
)

// NewFromConfig builds the configured Model. It returns (nil, nil) for type "none".
// rdb may be nil; the prediction cache is then skipped even when enabled.
func NewFromConfig(cfg config.ClassifierConfig, rdb *redis.Client, log logger.Logger) (Model, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	var (
		model Model
		err   error
	)

	switch cfg.Type {
	case "", config.ClassifierNone:
		return nil, nil
	case config.ClassifierONNX:
		model, err = NewONNXModel(ONNXConfig{
			ModelPath:         cfg.ModelPath,
			SharedLibraryPath: cfg.SharedLibraryPath,
			InputName:         cfg.InputName,
			OutputName:        cfg.OutputName,
		})
	case config.ClassifierRemote:
		model, err = NewRemoteModel(cfg.Endpoint, cfg.APIKey, config.GetDuration(cfg.Timeout))
	default:
		return nil, fmt.Errorf("unknown classifier type %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Classifier loaded", map[string]interface{}{
		"type":    cfg.Type,
		"modelId": cfg.ModelID,
	})

	if cfg.Cache.Enabled {
		if rdb == nil {
			log.Warn("Prediction cache enabled but Redis is unavailable; caching disabled", nil)
			return model, nil
		}
		model = NewCachedModel(model, rdb, cfg.ModelID, time.Duration(cfg.Cache.TTL)*time.Second, log)
	}

	return model, nil
}

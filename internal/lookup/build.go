package lookup

import (
	"log/slog"
	"time"

	"github.com/joseph-ayodele/receipts-collator/internal/common"
)

// Build assembles the configured lookup: the hints file first, then the
// remote search page behind the cache and the politeness throttle. store may
// be nil to run without a cache. It returns nil when nothing is configured.
func Build(cfg common.LookupConfig, cacheTTL time.Duration, store HintStore, logger *slog.Logger) (*Lookup, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var sources []Source

	if cfg.HintsFile != "" {
		static, err := LoadStaticSource(cfg.HintsFile)
		if err != nil {
			return nil, err
		}
		logger.Info("lookup.hints.loaded", "path", cfg.HintsFile, "codes", static.Len())
		sources = append(sources, static)
	}

	if cfg.Enabled {
		var remote Source = NewThrottled(
			NewHTTPSource(cfg.BaseURL, cfg.Timeout, WithUserAgent(cfg.UserAgent), WithHTTPLogger(logger)),
			cfg.Delay,
			logger,
		)
		if store != nil {
			remote = NewCached(store, remote, "http", cacheTTL, logger)
		}
		sources = append(sources, remote)
	}

	if len(sources) == 0 {
		return nil, nil
	}
	return New(Chain(sources...)), nil
}

package sources

import (
	"fmt"

	"regsync/internal/platform/config"
	"regsync/internal/registration/models"
)

// FromConfig builds an HTTP source for every kind in models.SourceOrder,
// applying per-kind overrides from table. Disabled kinds are left out. Table
// keys that do not name a known kind are rejected.
func FromConfig(base config.SourcesConfig, table config.SourceTable, opts ...HTTPOption) (*Registry, error) {
	for key := range table.Sources {
		if !models.SourceKind(key).IsValid() {
			return nil, fmt.Errorf("%w in sources file: %s", ErrUnknownSource, key)
		}
	}

	registry, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, kind := range models.SourceOrder {
		entry, _ := table.Entry(string(kind))
		if entry.Disabled {
			continue
		}

		baseURL := base.BaseURL
		if entry.BaseURL != "" {
			baseURL = entry.BaseURL
		}
		token := base.AuthToken
		if entry.AuthToken != "" {
			token = entry.AuthToken
		}
		timeout := base.FetchTimeout
		if entry.Timeout > 0 {
			timeout = entry.Timeout
		}

		kindOpts := append([]HTTPOption{}, opts...)
		kindOpts = append(kindOpts,
			WithPath(entry.Path),
			WithAuthToken(token),
			WithTimeout(timeout),
		)
		src, err := NewHTTPSource(kind, baseURL, kindOpts...)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(src); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

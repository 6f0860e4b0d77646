package client

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/polisai/elucidation-go/pkg/config"
	"github.com/polisai/elucidation-go/pkg/recorder"
)

// FromConfig builds a client from configuration. A disabled configuration, or
// an enabled one without any base URI source, yields a Noop client. The
// returned close function releases the resolver's resources and is never nil.
func FromConfig[In any](cfg config.ElucidationConfig, conv Converter[In], opts ...Option) (*Client[In], func() error, error) {
	noClose := func() error { return nil }

	if err := cfg.Validate(); err != nil {
		return nil, noClose, err
	}

	s := settings{logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	if !cfg.Enabled {
		return Noop[In](opts...), noClose, nil
	}
	if !cfg.HasBaseURISource() {
		s.logger.Warn("elucidation enabled without a base URI source; reporting is disabled")
		return Noop[In](opts...), noClose, nil
	}

	var (
		resolver recorder.URIResolver
		closeFn  = noClose
	)
	switch {
	case strings.TrimSpace(cfg.BaseURI) != "":
		resolver = recorder.StaticURI(strings.TrimSpace(cfg.BaseURI))
	case strings.TrimSpace(cfg.BaseURIEnv) != "":
		resolver = recorder.EnvURI(strings.TrimSpace(cfg.BaseURIEnv))
	default:
		fileURI, err := recorder.NewFileURI(strings.TrimSpace(cfg.BaseURIFile), s.logger)
		if err != nil {
			return nil, noClose, fmt.Errorf("failed to watch base URI file: %w", err)
		}
		resolver = fileURI
		closeFn = fileURI.Close
	}

	rec := recorder.New(resolver,
		recorder.WithLogger(s.logger),
		recorder.WithTimeout(cfg.Timeout),
	)

	return Of(rec, conv, opts...), closeFn, nil
}

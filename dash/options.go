package dash

import (
	"log/slog"

	"github.com/sig-0/fxboard/nlparse"
)

type Option func(s *Service)

// WithLogger specifies the logger for the service
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithConfig specifies the dashboard configuration
func WithConfig(c *Config) Option {
	return func(s *Service) {
		s.config = c
	}
}

// WithParser specifies the natural language parser
func WithParser(p *nlparse.Parser) Option {
	return func(s *Service) {
		s.parser = p
	}
}

// WithRefresher specifies the cache refresher backing manual refresh
func WithRefresher(r Refresher) Option {
	return func(s *Service) {
		s.refresher = r
	}
}

// Package session serves the active lambda debug mode configuration to the
// runtime and keeps it in sync with the configuration file on disk.
package session

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/khiem5555/localstack/debugconfig"
	"github.com/khiem5555/localstack/internal/reload"
	"github.com/khiem5555/localstack/telemetry"
)

// Load outcomes reported to the telemetry collector.
const (
	outcomeLoaded  = "loaded"
	outcomeAbsent  = "absent"
	outcomeMissing = "missing"
)

const defaultPollInterval = time.Second

// Option customizes a Session.
type Option func(*Session)

// WithCollector wires a telemetry collector into the session.
func WithCollector(collector telemetry.Collector) Option {
	return func(s *Session) {
		if collector != nil {
			s.collector = collector
		}
	}
}

// WithPollInterval overrides how often Run checks the file for changes.
func WithPollInterval(interval time.Duration) Option {
	return func(s *Session) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// Session holds the active debug mode configuration behind an atomic
// pointer. Accessors never block a concurrent reload: a reload publishes a
// freshly built config and published configs are never mutated.
type Session struct {
	path      string
	logger    zerolog.Logger
	collector telemetry.Collector
	interval  time.Duration
	watcher   *reload.Watcher
	current   atomic.Pointer[debugconfig.Config]
}

// New builds a session for the configuration file at path. The session
// starts without a config; call Load to read the file.
func New(path string, logger zerolog.Logger, opts ...Option) *Session {
	s := &Session{
		path:      path,
		logger:    logger,
		collector: telemetry.Noop(),
		interval:  defaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.watcher = reload.NewWatcher(path)
	return s
}

// Load reads the configuration file and swaps the active config. A missing
// file means debug mode is simply not requested; any load failure has
// already been logged by the loader and leaves the session without a
// config. Either way the runtime keeps operating.
func (s *Session) Load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error().Err(err).Str("file", s.path).Msg("could not read lambda debug mode configuration file")
		}
		s.publish(nil, outcomeMissing)
		return
	}

	cfg := debugconfig.Load(string(raw), s.logger)
	if cfg == nil {
		s.publish(nil, outcomeAbsent)
		return
	}
	s.publish(cfg, outcomeLoaded)
}

func (s *Session) publish(cfg *debugconfig.Config, outcome string) {
	s.current.Store(cfg)
	s.collector.IncLoad(outcome)
	count := 0
	if cfg != nil {
		count = len(cfg.Functions)
	}
	s.collector.SetFunctionsConfigured(count)
	s.watcher.Update()
}

// Run polls the configuration file and reloads it when it changes. It
// returns when ctx is done.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !s.watcher.Check() {
				continue
			}
			s.logger.Info().Str("file", s.path).Msg("lambda debug mode configuration changed, reloading")
			s.collector.IncHotReload(s.path)
			s.Load()
		}
	}
}

// Active returns the currently published config, or nil when debug mode is
// not configured.
func (s *Session) Active() *debugconfig.Config {
	return s.current.Load()
}

// Enabled reports whether any function currently has a debug configuration.
func (s *Session) Enabled() bool {
	cfg := s.current.Load()
	return cfg != nil && len(cfg.Functions) > 0
}

// DebugPort returns the debug port configured for the given function ARN.
// The ARN is qualified before the lookup so unqualified spellings resolve
// to the canonical entry.
func (s *Session) DebugPort(arn string) (int, bool) {
	fc := s.lookup(arn)
	if fc == nil || fc.DebugPort == nil {
		return 0, false
	}
	return *fc.DebugPort, true
}

// TimeoutDisable reports whether the invocation timeout is disabled for the
// given function ARN.
func (s *Session) TimeoutDisable(arn string) bool {
	fc := s.lookup(arn)
	return fc != nil && fc.TimeoutDisable
}

func (s *Session) lookup(arn string) *debugconfig.FunctionConfig {
	cfg := s.current.Load()
	if cfg == nil {
		return nil
	}
	return cfg.Functions[debugconfig.QualifyFunctionARN(arn)]
}

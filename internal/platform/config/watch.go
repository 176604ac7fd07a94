package config

import (
	"context"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/yungbote/futureofgaming-backend/internal/platform/logger"
)

// Flags holds the settings that can change without a restart.
type Flags struct {
	autoSubscribeOnLogin atomic.Bool
}

func NewFlags(cfg *Config) *Flags {
	f := &Flags{}
	f.Apply(cfg)
	return f
}

func (f *Flags) Apply(cfg *Config) {
	if f == nil || cfg == nil {
		return
	}
	f.autoSubscribeOnLogin.Store(cfg.Features.AutoSubscribeOnLogin)
}

func (f *Flags) AutoSubscribeOnLogin() bool {
	return f != nil && f.autoSubscribeOnLogin.Load()
}

// Watch reloads path on every write and hands the result to onChange. A
// reload that fails keeps the previous config. Runs until ctx is done.
func Watch(ctx context.Context, log *logger.Logger, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}
	log = log.With("component", "ConfigWatch", "path", path)
	log.Info("Watching config file")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Atomic saves replace the file, so Create counts as a write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := LoadFile(path)
			if err != nil {
				log.Error("Config reload failed, keeping previous config", "error", err)
				continue
			}
			log.Info("Config reloaded")
			onChange(cfg)
			_ = watcher.Add(path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Config watcher error", "error", err)
		}
	}
}

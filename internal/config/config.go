// Package config implements the ambient configuration layer: a YAML file
// hot-reloaded with fsnotify, matching the teacher/pack convention
// (fsnotify + gopkg.in/yaml.v3) described in the expanded specification's
// Ambient Stack.
package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rpcpool/trustcore/internal/ancillary"
	"gopkg.in/yaml.v3"
)

// Config is the long-running server's hot-reloadable configuration.
type Config struct {
	ListenAddr  string   `yaml:"listen_addr"`
	TablePath   string   `yaml:"table_path"`
	MirrorPaths []string `yaml:"mirror_paths"`
	BcryptCost  uint32   `yaml:"bcrypt_cost"`
	MaxRecords  int64    `yaml:"max_records"`
}

// Load reads and parses path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &c, nil
}

// Watcher reloads Config from disk whenever path changes and notifies
// subscribers on Updates.
type Watcher struct {
	path    string
	log     ancillary.Logger
	watcher *fsnotify.Watcher

	mu      sync.RWMutex
	current *Config

	Updates chan *Config
	done    chan struct{}
}

// WatchFile loads path once, then watches it for writes, re-parsing and
// publishing on Updates for each change.
func WatchFile(path string) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: new watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	w := &Watcher{
		path:    path,
		log:     ancillary.NewLogger("config"),
		watcher: fw,
		current: cfg,
		Updates: make(chan *Config, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				w.log.Error(err, "reload", "path", w.path)
				continue
			}
			w.mu.Lock()
			w.current = cfg
			w.mu.Unlock()
			select {
			case w.Updates <- cfg:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error(err, "watch", "path", w.path)
		case <-w.done:
			return
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	return w.watcher.Close()
}

// Package cliplib keeps a directory of animation clips loaded in memory and
// optionally reloads them as files change on disk.
package cliplib

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/internal/logger"
	"github.com/Faultbox/midgard-anim/pkg/anim"
	"github.com/Faultbox/midgard-anim/pkg/formats"
)

// Event describes one change applied by Watch.
type Event struct {
	Path string
	// Clip is the name of the clip added, replaced or removed. It is empty
	// when a file failed to load.
	Clip    string
	Removed bool
	Err     error
}

// Library is a set of clips indexed by clip name. It is safe for
// concurrent use: Watch writes from its own goroutine while callers read.
type Library struct {
	dir string
	log *zap.Logger

	mu    sync.RWMutex
	clips map[string]*anim.Clip
	// files maps a clip file to the name of the clip it provides.
	files map[string]string
}

// Open loads every clip file in dir. Files that fail to decode are logged
// and skipped; only an unreadable directory is an error.
func Open(dir string, log *zap.Logger) (*Library, error) {
	if log == nil {
		log = logger.Named("cliplib")
	}
	l := &Library{
		dir:   dir,
		log:   log,
		clips: make(map[string]*anim.Clip),
		files: make(map[string]string),
	}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Dir returns the library directory.
func (l *Library) Dir() string {
	return l.dir
}

// Reload rescans the directory from scratch.
func (l *Library) Reload() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("reading clip directory: %w", err)
	}

	l.mu.Lock()
	clear(l.clips)
	clear(l.files)
	l.mu.Unlock()

	for _, e := range entries {
		if e.IsDir() || formats.DetectClipFormat(e.Name()) == formats.FormatUnknown {
			continue
		}
		l.loadFile(filepath.Join(l.dir, e.Name()))
	}
	l.log.Info("clip library loaded", zap.String("dir", l.dir), zap.Int("clips", l.Len()))
	return nil
}

// Get returns a copy of the named clip, so callers may hand it to a
// controller without affecting other users.
func (l *Library) Get(name string) (*anim.Clip, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	clip, ok := l.clips[name]
	if !ok {
		return nil, false
	}
	return clip.Clone(), true
}

// Names returns the clip names in sorted order.
func (l *Library) Names() []string {
	l.mu.RLock()
	names := make([]string, 0, len(l.clips))
	for name := range l.clips {
		names = append(names, name)
	}
	l.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Len returns the number of clips.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.clips)
}

// loadFile decodes path and installs its clip. On failure the previously
// loaded version stays in place.
func (l *Library) loadFile(path string) Event {
	clip, err := formats.LoadClip(path)
	if err != nil {
		l.log.Warn("clip load failed", zap.String("path", path), zap.Error(err))
		return Event{Path: path, Err: err}
	}

	l.mu.Lock()
	if prev, ok := l.files[path]; ok && prev != clip.Name {
		delete(l.clips, prev)
	}
	if _, taken := l.clips[clip.Name]; taken && l.files[path] != clip.Name {
		l.log.Warn("duplicate clip name, replacing", zap.String("clip", clip.Name), zap.String("path", path))
	}
	l.clips[clip.Name] = clip
	l.files[path] = clip.Name
	l.mu.Unlock()

	l.log.Debug("clip loaded", zap.String("clip", clip.Name), zap.String("path", path),
		zap.Int("tracks", len(clip.Tracks)), zap.Float64("duration", clip.Duration))
	return Event{Path: path, Clip: clip.Name}
}

// dropFile forgets the clip provided by path.
func (l *Library) dropFile(path string) (Event, bool) {
	l.mu.Lock()
	name, ok := l.files[path]
	if ok {
		delete(l.files, path)
		delete(l.clips, name)
	}
	l.mu.Unlock()

	if !ok {
		return Event{}, false
	}
	l.log.Info("clip removed", zap.String("clip", name), zap.String("path", path))
	return Event{Path: path, Clip: name, Removed: true}, true
}

// Watch reloads clip files as they are written, created, removed or renamed
// until ctx is cancelled. notify, if set, is called from the watching
// goroutine after each applied change.
func (l *Library) Watch(ctx context.Context, notify func(Event)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("watching %s: %w", l.dir, err)
	}
	l.log.Info("watching clip library", zap.String("dir", l.dir))

	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if formats.DetectClipFormat(e.Name) == formats.FormatUnknown {
				continue
			}
			path := filepath.Clean(e.Name)

			var (
				ev      Event
				applied bool
			)
			switch {
			case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				ev, applied = l.dropFile(path)
			case e.Op&(fsnotify.Create|fsnotify.Write) != 0:
				ev, applied = l.loadFile(path), true
			}
			if applied && notify != nil {
				notify(ev)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				l.log.Warn("watch events overflowed, rescanning")
				if rerr := l.Reload(); rerr != nil {
					l.log.Error("rescan failed", zap.Error(rerr))
				}
				continue
			}
			l.log.Error("watch error", zap.Error(err))
		}
	}
}

package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Reload is the outcome of re-reading a watched config file.
type Reload struct {
	Config TetrisConfig
	Err    error // Set when the new file could not be loaded; Config is then zero
}

// Watcher reloads a config file whenever it is written.
//
// The parent directory is watched rather than the file itself, so editors that
// save by writing a temp file and renaming it over the original are seen too.
type Watcher struct {
	Path    string
	Reloads <-chan Reload // Read-only external channel

	reloads  chan Reload // Internal write channel
	done     chan struct{}
	watcher  *fsnotify.Watcher
	debounce time.Duration
	started  bool // loop is running and will close done
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Reload, 1)
	return &Watcher{
		Path:     filepath.Clean(path),
		Reloads:  ch,
		reloads:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
		debounce: 100 * time.Millisecond,
	}, nil
}

// Start begins watching the config file's directory.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		return err
	}

	w.started = true
	go w.loop()
	return nil
}

// Stop closes the watcher and the Reloads channel. It is safe to call after
// Start failed.
func (w *Watcher) Stop() {
	w.watcher.Close()
	if w.started {
		<-w.done // Wait for loop to exit
	}
	close(w.reloads)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= w.debounce {
				pending = time.Time{}
				w.emit()
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next write retries.
		}
	}
}

// emit loads the file and publishes the result. Only the newest reload is
// kept when the reader falls behind.
func (w *Watcher) emit() {
	cfg, err := LoadFile(w.Path)
	r := Reload{Config: cfg, Err: err}

	select {
	case w.reloads <- r:
	default:
		select {
		case <-w.reloads:
		default:
		}
		w.reloads <- r
	}
}

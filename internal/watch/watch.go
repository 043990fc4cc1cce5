// internal/watch/watch.go
package watch

import (
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher observa el descriptor del proyecto y dispara un callback con
// debounce cuando cambia. Se vigila el directorio y se filtra por nombre:
// los editores reemplazan el archivo con rename y un watch directo al
// archivo se pierde tras el primer guardado.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func()
	stopChan chan bool
}

func New(path string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		path:     abs,
		onChange: onChange,
		stopChan: make(chan bool),
	}

	go w.watchForChanges()
	log.Printf("👀 Watching %s", abs)
	return w, nil
}

func (w *Watcher) watchForChanges() {
	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	defer debounceTimer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Los guardados llegan en ráfagas de eventos; una sola
			// corrida 800ms después del último alcanza.
			debounceTimer.Reset(800 * time.Millisecond)

		case <-debounceTimer.C:
			w.onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) Stop() {
	close(w.stopChan)
	if w.watcher != nil {
		w.watcher.Close()
	}
}

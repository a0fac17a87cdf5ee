package watcher

import (
	"github.com/fsnotify/fsnotify"
)

// Notification reports filesystem activity on watched items.
type Notification interface {
	WatcherItemDidChange(string)
	WatcherDidError(error)
}

// IFile watches filesystem paths and delivers change notifications.
type IFile interface {
	Start(Notification)
	Add(string) error
	Shutdown()
}

// File is the fsnotify-backed IFile implementation.
type File struct {
	fs   *fsnotify.Watcher
	done chan struct{}
}

// NewFile creates a filesystem watcher.
func NewFile() (*File, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &File{
		fs:   fs,
		done: make(chan struct{}),
	}, nil
}

// Add registers a path to watch.
func (f *File) Add(path string) error {
	return f.fs.Add(path)
}

// Start runs the event loop until Shutdown, forwarding writes and creates.
// Creates matter because most editors replace files instead of writing to
// them in place.
func (f *File) Start(notifier Notification) {
	for {
		select {
		case event, ok := <-f.fs.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
				notifier.WatcherItemDidChange(event.Name)
			}
		case err, ok := <-f.fs.Errors:
			if !ok {
				return
			}
			notifier.WatcherDidError(err)
		case <-f.done:
			return
		}
	}
}

// Shutdown stops the event loop and releases the watcher.
func (f *File) Shutdown() {
	close(f.done)
	_ = f.fs.Close()
}

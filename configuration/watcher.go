package configuration

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"code.cloudfoundry.org/lager/v3"
)

// Watch re-loads the config file whenever it changes and delivers the
// new config on the returned channel. A file change that fails to
// load is logged and skipped; the previous config stays in effect.
// The returned stop function releases the watcher.
//
// The watch is placed on the file's directory rather than the file
// itself: editors and config management tools replace files by
// renaming a freshly written one into place, which would silently
// drop a watch on the old inode.
func Watch(logger lager.Logger, path string) (<-chan Config, func(), error) {
	logger = logger.Session("config-watcher", lager.Data{"path": path})

	if _, err := os.Stat(path); err != nil {
		return nil, nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	err = watcher.Add(filepath.Dir(path))
	if err != nil {
		watcher.Close()
		return nil, nil, err
	}

	configs := make(chan Config, 1)

	go func() {
		defer close(configs)

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}

				config, err := Load(path)
				if err != nil {
					logger.Error("reload-failed", err)
					continue
				}

				logger.Info("reloaded")
				configs <- config

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("watch-failed", err)
			}
		}
	}()

	stop := func() {
		watcher.Close()
	}

	return configs, stop, nil
}

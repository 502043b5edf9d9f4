package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbutland/ai-darwin-awards/internal/config"
)

const debounceDuration = 500 * time.Millisecond

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the docs directory locally and rebuilds on changes",
	Long: `The serve command performs an initial build, then serves the docs
directory on localhost. It watches the data records, page templates, content
and layouts and rebuilds the site when any of them change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("Performing initial build")
		if err := runBuildProcess(appConfig, logger); err != nil {
			return fmt.Errorf("initial build failed: %w", err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer watcher.Close()

		inputs := newWatchSet(appConfig)
		inputs.addTo(watcher, logger)
		go watchAndRebuild(watcher, inputs, func() error { return runBuildProcess(appConfig, logger) }, logger)

		serverAddr := fmt.Sprintf(":%d", serverPort)
		logger.Info("Serving site",
			zap.String("dir", appConfig.DocsDir),
			zap.String("url", "http://localhost"+serverAddr))

		if err := http.ListenAndServe(serverAddr, fileHandler(appConfig.DocsDir)); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	},
}

// fileHandler serves dir without directory listings and with caching
// disabled.
func fileHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(r.URL.Path), "index.html")); os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		files.ServeHTTP(w, r)
	})
}

// watchSet is the build's inputs: individual files living next to build
// outputs, and source trees watched as a whole.
type watchSet struct {
	files map[string]bool
	trees []string
}

func newWatchSet(cfg config.Config) *watchSet {
	ws := &watchSet{files: make(map[string]bool)}
	for _, f := range []string{
		cfg.Data.Nominees,
		cfg.Data.Results,
		cfg.Templates.Nominee,
		cfg.Templates.Results,
		cfg.Templates.NomineeResults,
	} {
		if f != "" {
			ws.files[filepath.Clean(f)] = true
		}
	}
	for _, dir := range []string{cfg.ContentDir, cfg.LayoutsDir} {
		if dir != "" {
			ws.trees = append(ws.trees, filepath.Clean(dir))
		}
	}
	return ws
}

// relevant reports whether a change to name should trigger a rebuild. Files
// the build itself writes, such as phase.json next to nominees.json, are not.
func (ws *watchSet) relevant(name string) bool {
	name = filepath.Clean(name)
	if ws.files[name] {
		return true
	}
	for _, tree := range ws.trees {
		if rel, err := filepath.Rel(tree, name); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (ws *watchSet) addTo(watcher *fsnotify.Watcher, logger *zap.Logger) {
	dirs := make(map[string]bool)
	for f := range ws.files {
		dirs[filepath.Dir(f)] = true
	}
	for _, tree := range ws.trees {
		if _, err := os.Stat(tree); os.IsNotExist(err) {
			logger.Debug("Directory not found, not watching", zap.String("dir", tree))
			continue
		}
		err := filepath.WalkDir(tree, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				logger.Warn("Error walking directory", zap.String("path", path), zap.Error(err))
				return nil
			}
			if d.IsDir() {
				dirs[path] = true
			}
			return nil
		})
		if err != nil {
			logger.Warn("Error during initial directory walk", zap.String("dir", tree), zap.Error(err))
		}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			logger.Warn("Failed to watch", zap.String("dir", dir), zap.Error(err))
			continue
		}
		logger.Debug("Watching", zap.String("dir", dir))
	}
}

// serialized wraps rebuild so that at most one call runs at a time. Calls
// arriving while a build is running wait for it to finish.
func serialized(rebuild func() error) func() error {
	var mu sync.Mutex
	return func() error {
		mu.Lock()
		defer mu.Unlock()
		return rebuild()
	}
}

// watchAndRebuild runs rebuild once changes to the inputs have settled for
// debounceDuration. It returns when the watcher is closed.
func watchAndRebuild(watcher *fsnotify.Watcher, inputs *watchSet, rebuild func() error, logger *zap.Logger) {
	rebuild = serialized(rebuild)
	var buildTimer *time.Timer
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !inputs.relevant(event.Name) {
				continue
			}
			logger.Info("Change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))

			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					logger.Warn("Error adding new directory to watcher", zap.String("dir", event.Name), zap.Error(err))
				}
			}

			if buildTimer != nil {
				buildTimer.Stop()
			}
			buildTimer = time.AfterFunc(debounceDuration, func() {
				logger.Info("Rebuilding site due to changes")
				if err := rebuild(); err != nil {
					logger.Error("Error during rebuild", zap.Error(err))
					return
				}
				logger.Info("Site rebuilt successfully")
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error", zap.Error(err))
		}
	}
}

func isDir(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fileInfo.IsDir()
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "Port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}

package hx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-barry/hx/core"
	"github.com/go-barry/hx/demo"
)

type RuntimeConfig struct {
	Env         string
	EnableCache bool
	Port        int
	ConfigPath  string
}

func (cfg RuntimeConfig) configPath() string {
	if cfg.ConfigPath == "" {
		return core.DefaultConfigFile
	}
	return cfg.ConfigPath
}

var (
	ListenAndServe = http.ListenAndServe
	Exit           = os.Exit
	Start          = start
	loadConfig     = core.LoadConfig
)

const watchDebounce = 100 * time.Millisecond

// App is a fully wired server ready to be handed to ListenAndServe.
type App struct {
	Addr    string
	Handler http.Handler
	Config  core.Config

	closers []func() error
}

// Close releases the store, the template watcher and livereload clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func start(cfg RuntimeConfig) {
	fmt.Println("Starting hx in", cfg.Env, "mode...")

	app, err := BuildServer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Server setup failed: %v\n", err)
		Exit(1)
		return
	}
	defer app.Close()

	fmt.Printf("✅ hx running at http://localhost%s\n", app.Addr)
	if err := ListenAndServe(app.Addr, app.Handler); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "❌ Server failed: %v\n", err)
		Exit(1)
	}
}

// BuildServer loads the config and assembles templates, engine, user store,
// static files and the demo routes into one handler.
func BuildServer(cfg RuntimeConfig) (*App, error) {
	config := loadConfig(cfg.configPath())
	config.CacheEnabled = config.CacheEnabled && cfg.EnableCache

	app := &App{
		Addr:   fmt.Sprintf(":%d", cfg.Port),
		Config: config,
	}

	templates := core.NewTemplates(TemplateFS(config), core.Assets{
		Env:       cfg.Env,
		PublicDir: config.PublicDir,
		CacheDir:  config.OutputDir,
	})
	engine := core.NewEngine(templates, core.EngineOptions(config)...)

	users, err := openUserStore(config)
	if err != nil {
		return nil, err
	}
	if closer, ok := users.(interface{ Close() error }); ok {
		app.closers = append(app.closers, closer.Close)
	}

	mux := http.NewServeMux()

	if cfg.Env == "dev" {
		setupDevStaticRoutes(mux, config.PublicDir)

		reloader := core.NewLiveReloader()
		mux.HandleFunc(core.ReloadPath, reloader.Handler)
		app.closers = append(app.closers, func() error {
			reloader.Close()
			return nil
		})

		if config.TemplatesDir != "" {
			watcher, err := core.NewWatcher(config.TemplatesDir, watchDebounce, func(path string) {
				templates.Reload()
				reloader.BroadcastReload()
			})
			if err != nil {
				app.Close()
				return nil, fmt.Errorf("watch templates: %w", err)
			}
			app.closers = append(app.closers, watcher.Close)
		}
	} else {
		setupProdStaticRoutes(mux, config.PublicDir, filepath.Join(config.OutputDir, "static"))
	}

	demo.Register(mux, engine, users)

	middleware := []core.Middleware{core.RecoverPanic(nil), core.RequestID, core.Detect}
	if config.DebugLogs {
		middleware = append(middleware, core.AccessLog(log.Default()))
	}
	app.Handler = core.Chain(mux, middleware...)

	return app, nil
}

// TemplateFS returns the configured template directory, or the embedded demo
// templates when none is set.
func TemplateFS(config core.Config) fs.FS {
	if config.TemplatesDir == "" {
		return demo.Templates()
	}
	return os.DirFS(config.TemplatesDir)
}

func openUserStore(config core.Config) (demo.UserStore, error) {
	if config.Database == "" {
		return demo.NewStaticStore(demo.SeedUsers()), nil
	}
	store, err := demo.OpenSQLiteStore(context.Background(), config.Database)
	if err != nil {
		return nil, fmt.Errorf("open user store: %w", err)
	}
	return store, nil
}

func setupDevStaticRoutes(mux *http.ServeMux, publicDir string) {
	staticHandler := http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.FileServer(http.Dir(publicDir)).ServeHTTP(w, r)
	}))
	mux.Handle("/static/", staticHandler)

	for _, name := range []string{"favicon.ico", "robots.txt"} {
		file := filepath.Join(publicDir, name)
		mux.HandleFunc("/"+name, func(w http.ResponseWriter, r *http.Request) {
			serveFileWithHeaders(w, r, file, "no-store")
		})
	}
}

func setupProdStaticRoutes(mux *http.ServeMux, publicDir, cacheStaticDir string) {
	mux.Handle("/static/", makeStaticHandler(publicDir, cacheStaticDir))

	for _, name := range []string{"favicon.ico", "robots.txt"} {
		file := filepath.Join(publicDir, name)
		mux.HandleFunc("/"+name, func(w http.ResponseWriter, r *http.Request) {
			serveFileWithHeaders(w, r, file, "public, max-age=31536000, immutable")
		})
	}
}

// makeStaticHandler serves /static/ from the minified cache first (gzipped
// when the client accepts it) and falls back to the public directory.
func makeStaticHandler(publicDir, cacheStaticDir string) http.Handler {
	const immutable = "public, max-age=31536000, immutable"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trimmed := strings.TrimPrefix(r.URL.Path, "/static/")
		if trimmed == "" || strings.Contains(trimmed, "..") {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		cachedFile := filepath.Join(cacheStaticDir, filepath.FromSlash(trimmed))
		gzipFile := cachedFile + ".gz"

		if acceptsGzip(r) && fileExists(gzipFile) {
			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Set("Vary", "Accept-Encoding")
			w.Header().Set("Content-Type", detectMimeType(cachedFile))
			w.Header().Set("Cache-Control", immutable)
			http.ServeFile(w, r, gzipFile)
			return
		}

		if fileExists(cachedFile) {
			serveFileWithHeaders(w, r, cachedFile, immutable)
			return
		}

		publicFile := filepath.Join(publicDir, filepath.FromSlash(trimmed))
		if fileExists(publicFile) {
			serveFileWithHeaders(w, r, publicFile, immutable)
			return
		}

		http.NotFound(w, r)
	})
}

func serveFileWithHeaders(w http.ResponseWriter, r *http.Request, path, cacheControl string) {
	w.Header().Set("Content-Type", detectMimeType(path))
	w.Header().Set("Cache-Control", cacheControl)
	http.ServeFile(w, r, path)
}

func detectMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	case ".ico":
		return "image/x-icon"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func acceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}

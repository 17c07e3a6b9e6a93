package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"github.com/TobiSchelling/SmogStory/internal/database"
	"github.com/TobiSchelling/SmogStory/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

const recentLimit = 24

// Server previews rendered stories and the publication ledger.
type Server struct {
	db         *database.DB
	storiesDir string
	pages      map[string]*template.Template
	mux        *http.ServeMux
}

// New creates a new Server serving story files from storiesDir.
func New(db *database.DB, storiesDir string) (*Server, error) {
	funcMap := template.FuncMap{
		"storyHour": storyHour,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone of the base so its blocks don't collide.
	pageNames := []string{"index.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, storiesDir: storiesDir, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
	s.mux.Handle("/stories/", http.StripPrefix("/stories/", http.FileServer(http.Dir(s.storiesDir))))

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/healthz", s.handleHealth)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	renders, err := s.db.RecentRenders(recentLimit)
	if err != nil {
		log.Printf("Error loading renders: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	publications, err := s.db.RecentPublications(recentLimit)
	if err != nil {
		log.Printf("Error loading publications: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index.html", map[string]any{
		"Renders":      renders,
		"Publications": publications,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "ok")
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

// storyHour formats an hourly file name for display, falling back to the
// raw name for files that don't follow the pattern.
func storyHour(filename string) string {
	t, ok := render.ParseFileName(filename)
	if !ok {
		return filename
	}
	return t.Format("Jan 02, 2006 15:04")
}

// Serve starts the preview server on the given port.
func Serve(db *database.DB, storiesDir string, port int) error {
	srv, err := New(db, storiesDir)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}

package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"police-security-bot/internal/config"
	"police-security-bot/internal/domain/ports/repository"
	"police-security-bot/internal/infra/metrics"
	"police-security-bot/internal/usecase"
)

//go:embed templates/*.html static
var assetsFS embed.FS

var pages = template.Must(template.ParseFS(assetsFS, "templates/*.html"))

type Server struct {
	dash     usecase.DashboardUseCase
	auth     *AuthManager
	denylist repository.SessionDenylist
	cfg      config.WebConfig
	log      *zerolog.Logger
}

func NewServer(
	cfg config.WebConfig,
	dash usecase.DashboardUseCase,
	denylist repository.SessionDenylist,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "web").Logger()
	return &Server{
		dash:     dash,
		auth:     NewAuthManager(cfg.JWTSecret, cfg.SecureCookie, cfg.CookieDomain, cfg.AccessTTL),
		denylist: denylist,
		cfg:      cfg,
		log:      &l,
	}
}

// Router builds the dashboard handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(TraceID())
	if s.cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(RequestLog(s.log))
	r.Use(Recover(s.log))
	r.Use(MaxBodySize(8 * 1024))
	r.Use(Timeout(s.cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	static, _ := fs.Sub(assetsFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Handle("/metrics", metrics.Handler())

	r.Get("/", s.page("index.html", "Police Security Bot"))
	r.Get("/login", s.page("login.html", "Sign in"))
	r.Get("/dashboard", s.page("dashboard.html", "Dashboard"))
	r.Get("/dashboard.html", s.page("dashboard.html", "Dashboard"))

	r.Get("/health", handleHealth)
	r.Options("/*", handleHealth)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/get_messages", s.handleMessages)
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("dashboard listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) page(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pages.ExecuteTemplate(w, name, struct{ Title string }{title}); err != nil {
			s.log.Error().Err(err).Str("template", name).Msg("render page")
		}
	}
}

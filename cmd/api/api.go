package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"strings"
	"time"

	"viniloteca/docs" // registers the generated swagger docs
	"viniloteca/internal/auth"
	"viniloteca/internal/domain/reviews"
	"viniloteca/internal/domain/storage"
	"viniloteca/internal/filestore"
	"viniloteca/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         *storage.Container
	ledger        *reviews.Ledger
	logger        *zap.SugaredLogger
	files         filestore.Store
	authenticator auth.Authenticator
	metrics       *metrics.Collector
	gatherer      prometheus.Gatherer
}

type config struct {
	addr    string
	db      dbConfig
	env     string
	apiURL  string
	auth    authConfig
	ratings reviews.RatingBounds
	files   fileConfig
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret string
	exp    time.Duration
	iss    string
}

type basicConfig struct {
	user string
	pass string
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleTime  string
}

type fileConfig struct {
	backend       string
	uploadDir     string
	cloudinaryURL string
}

// requestTimeout stays below writeTimeout so handlers see the cancellation
// before the connection is cut.
const (
	requestTimeout = 20 * time.Second
	writeTimeout   = 30 * time.Second
)

const (
	fileBackendLocal      = "local"
	fileBackendCloudinary = "cloudinary"
)

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Cancels the request context; storage calls observe it.
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", app.healthCheckHandler)
	r.Handle("/metrics", metrics.Handler(app.gatherer))
	r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

	docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.apiURL)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

	// Account
	r.Post("/register", app.registerUserHandler)
	r.Post("/login", app.loginHandler)

	// Profile
	r.Get("/profile", app.getProfileHandler)
	r.Post("/update_description", app.updateDescriptionHandler)
	r.Post("/upload_profile_picture", app.uploadProfilePictureHandler)
	r.With(app.AuthTokenMiddleware).Get("/me", app.getMeHandler)

	// Stores
	r.Route("/stores", func(r chi.Router) {
		r.Get("/", app.listStoresHandler)
		r.Get("/{storeID}", app.getStoreHandler)
	})

	// Reviews
	r.Get("/reviews", app.listReviewsHandler)
	r.Post("/add_review", app.addReviewHandler)

	if app.config.files.backend == fileBackendLocal {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", uploadsHandler(app.config.files.uploadDir)))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.notFoundResponse(w, r, errors.New("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// uploadsHandler serves uploaded pictures and hides in-flight temp files.
func uploadsHandler(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, ".") || strings.Contains(r.URL.Path, "/.") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

// run serves until ctx is cancelled, then drains in-flight requests.
func (app *application) run(ctx context.Context, mux http.Handler) error {
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(app.config.apiURL, "https://"), "http://")
	docs.SwaggerInfo.BasePath = "/"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: writeTimeout,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error, 1)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("shutting down server", "reason", context.Cause(ctx).Error())

		shutdown <- srv.Shutdown(shutdownCtx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}

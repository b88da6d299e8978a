package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"volley/docs" //this is required to generate swagger docs
	"volley/internal/auth"
	"volley/internal/mailer"
	"volley/internal/notifications"
	"volley/internal/ratelimiter"
	"volley/internal/session"
	"volley/internal/store"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	hashids "github.com/speps/go-hashids/v2"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	authenticator auth.Authenticator
	authClient    session.AuthClient
	push          notifications.PushSender
	rateLimiter   ratelimiter.Limiter
	matchCodec    *hashids.HashID
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	mail        mailConfig
	frontendURL string
	auth        authConfig
	rateLimiter ratelimiter.Config
	codeSalt    string
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
	// providerURL switches authentication to an upstream identity service;
	// empty means credentials are checked against our own users table.
	providerURL string
}
type tokenConfig struct {
	refreshSecret   string
	secret          string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}
type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	exp       time.Duration
	fromEmail string
	smtp      smtpConfig
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type dbConfig struct {
	addr        string
	maxConns    int
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{app.config.frontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	// Every request gets its session restored from cookies or the bearer
	// header before routing; guards downstream only read the result.
	r.Use(app.SessionMiddleware)

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Credential endpoints, rate limited against brute force
		r.Group(func(r chi.Router) {
			r.Use(app.RateLimiterMiddleware)
			r.Post("/login", app.loginHandler)
			r.Post("/login/web", app.webLoginHandler)
			r.Post("/register", app.registerUserHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})
		r.Put("/activate/{token}", app.activateUserHandler)

		// Any authenticated user
		r.Group(func(r chi.Router) {
			r.Use(app.RequireRoles())

			r.Post("/logout", app.logoutHandler)
			r.Get("/me", app.meHandler)
			r.Put("/change-password", app.changePasswordHandler)

			r.Get("/profile", app.getProfileHandler)
			r.Put("/profile", app.updateProfileHandler)
			r.Post("/profile/picture", app.uploadProfilePictureHandler)

			r.Post("/users/push-tokens", app.savePushTokenHandler)

			r.With(app.RequirePermission(session.PermDashboard)).Get("/dashboard", app.dashboardHandler)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", app.listNotificationsHandler)
				r.Put("/{notificationID}/read", app.markNotificationReadHandler)
				r.With(app.RequireRoles(session.RoleAdmin, session.RoleCoach)).
					Post("/", app.createNotificationHandler)
			})

			r.Route("/matches", func(r chi.Router) {
				r.Get("/", app.listMatchesHandler)
				r.Get("/{matchID}", app.getMatchHandler)
				r.Get("/code/{code}", app.getMatchByCodeHandler)

				r.Group(func(r chi.Router) {
					r.Use(app.RequireRoles(session.RoleAdmin, session.RoleCoach))
					r.Post("/", app.createMatchHandler)
					r.Put("/{matchID}", app.updateMatchHandler)
					r.Delete("/{matchID}", app.deleteMatchHandler)
				})
			})

			r.Route("/trainings", func(r chi.Router) {
				r.Get("/", app.listTrainingsHandler)

				r.Group(func(r chi.Router) {
					r.Use(app.RequireRoles(session.RoleAdmin, session.RoleCoach))
					r.Post("/", app.createTrainingHandler)
					r.Get("/{trainingID}", app.getTrainingHandler)
					r.Put("/{trainingID}", app.updateTrainingHandler)
					r.Delete("/{trainingID}", app.deleteTrainingHandler)
					r.Post("/{trainingID}/attendance", app.markAttendanceHandler)
				})
			})

			r.Route("/players", func(r chi.Router) {
				r.With(app.RequireRoles(session.RoleAdmin, session.RoleCoach)).
					Get("/", app.listPlayersHandler)
				r.Get("/{playerID}", app.getPlayerHandler)

				r.Group(func(r chi.Router) {
					r.Use(app.RequirePermission(session.PermPlayers))
					r.Post("/", app.createPlayerHandler)
					r.Put("/{playerID}", app.updatePlayerHandler)
					r.Delete("/{playerID}", app.deletePlayerHandler)
				})
			})

			r.Route("/coaches", func(r chi.Router) {
				r.Use(app.RequireRoles(session.RoleAdmin))
				r.Post("/", app.createCoachHandler)
				r.Get("/", app.listCoachesHandler)
				r.Get("/{coachID}", app.getCoachHandler)
				r.Put("/{coachID}", app.updateCoachHandler)
				r.Delete("/{coachID}", app.deleteCoachHandler)
			})
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
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

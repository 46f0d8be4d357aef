package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dieKrake/life-leveler-sub000/internal/auth"
	"github.com/dieKrake/life-leveler-sub000/internal/engine"
	"github.com/dieKrake/life-leveler-sub000/internal/repo"
	"github.com/dieKrake/life-leveler-sub000/internal/service"
)

type API struct {
	Repo         *repo.Repo
	Service      *service.Service
	Engine       *engine.Engine
	Auth         *auth.Manager
	Origins      []string
	AdminUserIDs []string
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(loggingMiddleware)
	r.Use(a.corsMiddleware)

	r.Get("/health", a.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", a.handleRegister)
		r.Post("/login", a.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(a.authMiddleware)
		r.Get("/me", a.handleMe)
		r.Get("/stats", a.handleStats)

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", a.handleListTodos)
			r.Post("/", a.handleCreateTodo)
			r.Post("/{id}/complete", a.handleCompleteTodo)
			r.Post("/{id}/uncomplete", a.handleUncompleteTodo)
			r.Post("/{id}/archive", a.handleArchiveTodo)
		})
		r.Route("/challenges", func(r chi.Router) {
			r.Get("/", a.handleListChallenges)
			r.Post("/{id}/claim", a.handleClaimChallenge)
		})
		r.Route("/achievements", func(r chi.Router) {
			r.Get("/", a.handleListAchievements)
			r.Post("/{id}/unlock", a.handleUnlockAchievement)
		})
		r.Post("/prestige", a.handlePrestige)

		r.Route("/streak-tiers", func(r chi.Router) {
			r.Get("/", a.handleGetStreakTiers)
			r.With(a.adminOnly).Put("/", a.handleUpdateStreakTiers)
		})
	})

	return r
}

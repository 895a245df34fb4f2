package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/clubpoint/bracket-system/handlers"
	"github.com/clubpoint/bracket-system/middleware"
)

type Handlers struct {
	Division *handlers.DivisionHandler
	Bracket  *handlers.BracketHandler
	Match    *handlers.MatchHandler
}

func InitRoutes(h Handlers, jwtSecret []byte) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/divisions", func(r chi.Router) {
		r.Get("/", h.Division.List)
		r.Get("/{divisionID}", h.Division.Get)
		r.Get("/{divisionID}/teams", h.Division.ListTeams)
		r.Get("/{divisionID}/bracket", h.Bracket.Get)
		r.Get("/{divisionID}/standings", h.Bracket.Standings)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize("organizer"))

			r.Post("/", h.Division.Create)
			r.Post("/{divisionID}/teams", h.Division.RegisterTeam)
			r.Post("/{divisionID}/logo", h.Division.UploadLogo)
			r.Delete("/{divisionID}/logo", h.Division.RemoveLogo)
			r.Post("/{divisionID}/bracket", h.Bracket.Generate)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", h.Match.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize("organizer"))

			r.Post("/{matchID}/result", h.Match.SubmitResult)
			r.Post("/{matchID}/finalize", h.Match.Finalize)
		})
	})

	return router
}

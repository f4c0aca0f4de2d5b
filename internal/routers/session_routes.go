package routers

import (
	"github.com/go-chi/chi/v5"

	"skillsage/interview/internal/handlers"
	"skillsage/interview/internal/middleware"
	"skillsage/interview/internal/models"
)

func SessionRoutes(router *chi.Mux, sessionHandler *handlers.SessionHandler) {
	router.Route("/interview", func(r chi.Router) {
		r.Use(middleware.RequireCandidate)
		r.Get("/start_interview/{interviewID}", sessionHandler.StartHandler)
		r.With(middleware.ValidateRequest[*models.AdvanceRequest]()).Post("/next/{interviewID}", sessionHandler.NextHandler)
		r.Get("/reframe/{interviewID}", sessionHandler.ReframeHandler)
		r.Get("/submit/{interviewID}", sessionHandler.SubmitHandler)
		r.Get("/review/{interviewID}", sessionHandler.ReviewHandler)
		r.Get("/eval_metrics", sessionHandler.EvalMetricsHandler)
	})
}

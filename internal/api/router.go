package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/circle/internal/models"
	"github.com/iammorganparry/circle/internal/portal"
)

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(svc *portal.Service, apiKey string, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on ALL routes including /health)
	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Tracing)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	healthH := NewHealthHandler(svc)
	identityH := NewIdentityHandler(svc, logger)
	cohortH := NewCohortHandler(svc, logger)
	reportH := NewReportHandler(svc, logger)
	meH := NewMeHandler(svc, logger)

	r.Get("/health", healthH.Health)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(apiKey))

		r.Post("/identity", identityH.Identify)

		r.Group(func(r chi.Router) {
			r.Use(Identity)

			r.Get("/overview", identityH.Overview)

			// Participant routes; facilitators may read them as a preview.
			r.Route("/me", func(r chi.Router) {
				r.Get("/intake", meH.GetIntake)
				r.Put("/intake", meH.PutIntake)
				r.Get("/checkin", meH.GetCheckIn)
				r.Put("/checkin", meH.PutCheckIn)
				r.Get("/worksheets", meH.ListWorksheets)
				r.Put("/worksheets/{week}", meH.PutWorksheet)
				r.Post("/worksheets/{week}/guidance", meH.Guidance)
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(models.RoleFacilitator))

				r.Route("/cohorts", func(r chi.Router) {
					r.Get("/", cohortH.List)
					r.Post("/", cohortH.Create)
					r.Get("/{id}", cohortH.Get)
					r.Post("/{id}/participants", cohortH.Enroll)
					r.Get("/{id}/schedule", cohortH.Schedule)
					r.Put("/{id}/schedule/{week}", cohortH.ScheduleSession)
				})
				r.Patch("/participants/{id}", cohortH.UpdateParticipant)
				r.Get("/directory", cohortH.Directory)

				r.Route("/logs", func(r chi.Router) {
					r.Get("/", cohortH.ListLogs)
					r.Post("/", cohortH.SubmitLog)
				})

				r.Route("/reports/{scope}", func(r chi.Router) {
					r.Get("/", reportH.Get)
					r.Post("/summary", reportH.Summary)
					r.Get("/summaries", reportH.Summaries)
				})
			})
		})
	})

	return r
}

package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/planmailer/internal/handler"
	"github.com/planmailer/internal/middleware"
)

func (app *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS)

	r.Get("/health", handler.Health())

	reportHandler := handler.NewReportHandler(app.logger, app.mailer, app.deliveries)
	r.Post("/send-report", reportHandler.Send)
	r.Get("/deliveries", reportHandler.Deliveries)

	return r
}

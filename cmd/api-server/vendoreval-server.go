package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"vendoreval/db"
	"vendoreval/db/migrations"
	"vendoreval/internal/auth"
	"vendoreval/internal/handlers"
)

func main() {
	// .env необязателен; в проде переменные приходят из окружения
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	connString := os.Getenv("POSTGRES_CONN")
	if connString == "" {
		logger.Error("POSTGRES_CONN env variable is not set")
		os.Exit(1)
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET env variable is not set")
		os.Exit(1)
	}

	dbConn, err := sqlx.Connect("postgres", connString)
	if err != nil {
		logger.Error("cannot connect to db", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := migrations.Run(dbConn.DB); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	store := db.NewStorage(dbConn)
	h := handlers.NewHandler(store, []byte(secret), logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)

		// аутентификация
		r.Post("/auth/register", h.RegisterHandler)
		r.Post("/auth/login", h.LoginHandler)

		// SSE-поток вне группы Authenticate: токен проверяется в самом
		// обработчике, т.к. EventSource передаёт его в query
		r.Get("/chat/{vendorId}/stream", h.ChatStreamHandler)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Get("/auth/me", h.MeHandler)

			// поставщики
			r.Get("/vendors", h.GetVendorsHandler)
			r.Get("/vendors/{vendorId}", h.GetVendorHandler)
			r.Group(func(r chi.Router) {
				r.Use(h.RequireRole(auth.RoleDecisionMaker, auth.RoleAdmin))
				r.Patch("/vendors/{vendorId}/manage", h.RenameVendorHandler)
				r.Post("/vendors/{vendorId}/decision", h.VendorDecisionHandler)
				r.Delete("/vendors/{vendorId}/clear-data", h.ClearVendorDataHandler)
			})
			r.Group(func(r chi.Router) {
				r.Use(h.RequireRole(auth.RoleAdmin))
				r.Post("/vendors", h.CreateVendorHandler)
				r.Patch("/vendors/{vendorId}/intake", h.UpdateVendorIntakeHandler)
				r.Delete("/vendors/{vendorId}", h.DeleteVendorHandler)
			})

			// оценки; статические маршруты идут раньше {vendorId}
			r.Post("/evaluations", h.SubmitEvaluationHandler)
			r.Get("/evaluations", h.GetEvaluationsHandler)
			r.Post("/evaluations/autosave", h.AutosaveHandler)
			r.Get("/evaluations/autosave/{vendorId}", h.GetDraftHandler)
			r.Delete("/evaluations/autosave/{vendorId}", h.DiscardDraftHandler)
			r.Get("/evaluations/export", h.ExportEvaluationsHandler)
			r.Get("/evaluations/{vendorId}", h.GetVendorEvaluationsHandler)

			// голосование (только decision makers)
			r.Group(func(r chi.Router) {
				r.Use(h.RequireRole(auth.RoleDecisionMaker))
				r.Get("/vendors/{vendorId}/votes", h.GetVotesHandler)
				r.Post("/vendors/{vendorId}/votes", h.CastVoteHandler)
				r.Delete("/vendors/{vendorId}/votes", h.ClearVoteHandler)
			})

			// чат
			r.Get("/chat/unread", h.UnreadCountHandler)
			r.Get("/chat/{vendorId}", h.GetChatMessagesHandler)
			r.Post("/chat/{vendorId}", h.PostChatMessageHandler)

			// администрирование: настройки и пользователи
			r.Group(func(r chi.Router) {
				r.Use(h.RequireRole(auth.RoleAdmin))
				r.Get("/admin/settings", h.GetSettingsHandler)
				r.Put("/admin/settings", h.UpdateSettingsHandler)

				r.Get("/admin/users", h.ListUsersHandler)
				r.Get("/admin/users/pending", h.ListPendingUsersHandler)
				r.Post("/admin/users/{userId}/approve", h.ApproveUserHandler)
				r.Put("/admin/users/{userId}/role", h.UpdateUserRoleHandler)
				r.Put("/admin/users/{userId}/permissions", h.UpdateUserPermissionsHandler)
				r.Delete("/admin/users/{userId}", h.DeleteUserHandler)
			})
		})
	})

	serverAddr := os.Getenv("SERVER_ADDRESS")
	if serverAddr == "" {
		serverAddr = "0.0.0.0:8080"
	}

	logger.Info("starting server", "addr", serverAddr)
	if err := http.ListenAndServe(serverAddr, r); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

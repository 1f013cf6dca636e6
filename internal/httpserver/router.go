package httpserver

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"devconnect/internal/config"
	"devconnect/internal/domain"
	"devconnect/internal/security"
	"devconnect/internal/service"
	"devconnect/internal/store/postgres"
	"devconnect/internal/store/sqlite"
	"devconnect/internal/ws"
)

// repositories groups the store implementations behind the domain
// interfaces.
type repositories struct {
	users       domain.UserRepository
	connections domain.ConnectionRepository
	messages    domain.MessageRepository
	skills      domain.SkillRepository
	projects    domain.ProjectRepository
}

func newRepositories(cfg *config.Config, db *sql.DB) repositories {
	if cfg.DatabaseDriver == config.DriverPostgres {
		return repositories{
			users:       postgres.NewUserRepo(db),
			connections: postgres.NewConnectionRepo(db),
			messages:    postgres.NewMessageRepo(db),
			skills:      postgres.NewSkillRepo(db),
			projects:    postgres.NewProjectRepo(db),
		}
	}
	return repositories{
		users:       sqlite.NewUserRepo(db),
		connections: sqlite.NewConnectionRepo(db),
		messages:    sqlite.NewMessageRepo(db),
		skills:      sqlite.NewSkillRepo(db),
		projects:    sqlite.NewProjectRepo(db),
	}
}

// NewRouter constructs the main HTTP router and wires routes, services, and middleware.
func NewRouter(ctx context.Context, cfg *config.Config, db *sql.DB, hub *ws.Hub, tokenSvc *security.TokenService, passwordHasher *security.PasswordHasher, encryptor *security.Encryptor) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	repos := newRepositories(cfg, db)

	// Services
	authSvc := service.NewAuthService(repos.users, tokenSvc, passwordHasher)
	userSvc := service.NewUserService(repos.users)
	profileSvc := service.NewProfileService(repos.skills, repos.projects)
	connSvc := service.NewConnectionService(repos.connections, repos.users, hub)
	msgSvc := service.NewMessageService(repos.messages, repos.users, connSvc, encryptor, hub, cfg.MaxMessagesPerHistory, cfg.MaxMessageContentRunes)

	auth := NewAuthenticator(ctx, tokenSvc, repos.users, cfg.AuthCacheTTL)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": cfg.AppName + " API",
			"version": "1.0.0",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Auth routes (no auth required)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(authSvc))
			r.Post("/login", handleLogin(authSvc))
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Post("/auth/logout", handleLogout(authSvc, auth))
			r.Get("/auth/me", handleMe())

			// Profiles
			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", handleGetProfile(userSvc, profileSvc))
				r.Put("/profile/update", handleUpdateProfile(userSvc))
				r.Delete("/profile", handleDeactivate(userSvc))
				r.Get("/{userID}", handleGetUser(userSvc, profileSvc))
			})

			// Skills and projects
			// GET takes a user id, DELETE a skill id. chi requires one
			// wildcard name per level, so both read {id}.
			r.Route("/skills", func(r chi.Router) {
				r.Post("/", handleAddSkill(profileSvc))
				r.Get("/{id}", handleListSkills(profileSvc))
				r.Delete("/{id}", handleRemoveSkill(profileSvc))
			})
			r.Route("/projects", func(r chi.Router) {
				r.Post("/", handleAddProject(profileSvc))
				r.Get("/user/{userID}", handleListProjects(profileSvc))
				r.Put("/{projectID}", handleUpdateProject(profileSvc))
				r.Delete("/{projectID}", handleRemoveProject(profileSvc))
			})

			// Connection lifecycle
			r.Route("/connections", func(r chi.Router) {
				r.Get("/discover", handleDiscover(connSvc))
				r.Get("/my-connections", handleListConnections(connSvc))
				r.Get("/requests/received", handleReceivedRequests(connSvc))
				r.Get("/requests/sent", handleSentRequests(connSvc))
				r.Post("/request", handleSendRequest(connSvc))
				r.Put("/respond/{requestID}", handleRespondRequest(connSvc))
				r.Delete("/remove/{connectionID}", handleRemoveConnection(connSvc))
			})

			// Direct messages
			r.Route("/messages", func(r chi.Router) {
				r.Post("/", handleSendMessage(msgSvc))
				r.Get("/{peerID}", handleMessageHistory(msgSvc))
			})
		})
	})

	// WebSocket endpoint
	r.Get("/ws", ws.MakeHandler(hub, tokenSvc, repos.users, connSvc, msgSvc, cfg.CORSOrigins))

	return r
}

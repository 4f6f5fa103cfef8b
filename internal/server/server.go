package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/forumhub/apiserver/config"
	"github.com/forumhub/apiserver/internal/auth"
	"github.com/forumhub/apiserver/internal/db"
	"github.com/forumhub/apiserver/internal/handlers"
	"github.com/forumhub/apiserver/internal/logging"
	"github.com/forumhub/apiserver/internal/mq"
	"github.com/forumhub/apiserver/internal/payments"
	"github.com/forumhub/apiserver/internal/services"
	"github.com/forumhub/apiserver/internal/storage"
	"github.com/forumhub/apiserver/internal/store"
	"github.com/forumhub/apiserver/internal/store/memory"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.mongodb.org/mongo-driver/mongo"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	mongo      *mongo.Client
	mq         *mq.MQ
	log        logging.Logger
}

type repositories struct {
	users    services.UserRepository
	posts    services.PostRepository
	comments services.CommentRepository
	reports  services.ReportRepository
	payments services.PaymentRepository
}

// New constructs a Server from cfg, connecting to every configured backend.
func New(ctx context.Context, cfg config.Config, log logging.Logger) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	s := &Server{log: log}
	repos, err := s.openRepositories(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	archive, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if archive != nil {
		if err := archive.EnsureBucket(ctx); err != nil {
			s.close()
			return nil, err
		}
	}

	s.mq, err = mq.Open(ctx, cfg.MQ)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("open mq: %w", err)
	}

	var (
		processor  services.PaymentProcessor
		events     services.Publisher
		reportOpts []services.ReportOption
	)
	if cfg.Payments.StripeSecretKey != "" {
		p, err := payments.NewStripeProcessor(cfg.Payments.StripeSecretKey, cfg.Payments.Currency)
		if err != nil {
			s.close()
			return nil, err
		}
		processor = p
	} else {
		log.Warn(ctx, "STRIPE_SECRET_KEY not set, payment intents are disabled")
	}
	if s.mq != nil {
		events = s.mq
		reportOpts = append(reportOpts, services.WithEvents(s.mq))
	}
	if archive != nil {
		reportOpts = append(reportOpts, services.WithArchive(archive))
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	handlers.Routes(router, handlers.Dependencies{
		Codec:              auth.NewTokenCodec([]byte(jwtSecret)),
		Production:         cfg.IsProduction(),
		Policy:             services.NewAccessPolicy(repos.users),
		Users:              services.NewUserService(repos.users),
		Posts:              services.NewPostService(repos.posts, repos.users, log),
		Comments:           services.NewCommentService(repos.comments),
		Reports:            services.NewReportService(repos.reports, repos.comments, repos.users, log, reportOpts...),
		Payments:           services.NewPaymentService(processor, repos.payments, repos.users, events, log),
		Logger:             log,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	s.router = router
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) openRepositories(ctx context.Context, cfg config.DatabaseConfig) (repositories, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case config.DriverMemory:
		s.log.Warn(ctx, "using in-memory store, data is lost on restart")
		st := memory.New()
		return repositories{
			users:    st.Users,
			posts:    st.Posts,
			comments: st.Comments,
			reports:  st.Reports,
			payments: st.Payments,
		}, nil
	case "", config.DriverMongo:
		client, err := db.Connect(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		s.mongo = client
		database := client.Database(cfg.Name)
		return repositories{
			users:    store.NewUserRepository(database),
			posts:    store.NewPostRepository(database),
			comments: store.NewCommentRepository(database),
			reports:  store.NewReportRepository(database),
			payments: store.NewPaymentRepository(database),
		}, nil
	default:
		return repositories{}, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info(context.Background(), "listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then releases backend connections.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(ctx)
	s.close()
	return err
}

func (s *Server) close() {
	if s.mq != nil {
		if err := s.mq.Close(); err != nil {
			s.log.Warn(context.Background(), "close mq failed", "err", err)
		}
	}
	if s.mongo != nil {
		if err := s.mongo.Disconnect(context.Background()); err != nil {
			s.log.Warn(context.Background(), "disconnect mongo failed", "err", err)
		}
	}
}

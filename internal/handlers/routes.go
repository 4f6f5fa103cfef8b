package handlers

import (
	"net/http"
	"time"

	"github.com/forumhub/apiserver/internal/auth"
	"github.com/forumhub/apiserver/internal/logging"
	"github.com/forumhub/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

const defaultRateLimit = 30

// Dependencies are the collaborators the HTTP surface is built from.
type Dependencies struct {
	Codec      *auth.TokenCodec
	Production bool
	Policy     *services.AccessPolicy
	Users      *services.UserService
	Posts      *services.PostService
	Comments   *services.CommentService
	Reports    *services.ReportService
	Payments   *services.PaymentService
	Logger     logging.Logger

	// RateLimitPerMinute caps unauthenticated writes per client IP.
	// Zero selects the default.
	RateLimitPerMinute int
}

// Routes registers every route on r.
func Routes(r chi.Router, d Dependencies) {
	log := d.Logger
	if log == nil {
		log = logging.Nop()
	}

	authMiddleware := RequireAuth(d.Codec)
	adminOnly := chi.Chain(authMiddleware, RequireAdmin(d.Policy, log)).Handler
	throttle := throttleByIP(d.RateLimitPerMinute)

	r.Get("/healthz", Healthz)
	r.Route("/auth", func(r chi.Router) {
		AuthRouter(r, NewAuthHandler(d.Codec, d.Production, log))
	})
	UserRouter(r, NewUserHandler(d.Users, log), adminOnly)
	PostRouter(r, NewPostHandler(d.Posts, d.Comments, log), authMiddleware, throttle)
	ReportRouter(r, NewReportHandler(d.Reports, log), adminOnly, throttle)
	PaymentRouter(r, NewPaymentHandler(d.Payments, log), throttle)
}

func throttleByIP(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		perMinute = defaultRateLimit
	}
	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusTooManyRequests, "too many requests")
		}),
	)
}

package screens

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/activity"
	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/notify"
	"github.com/strideworks/erp-core/pkg/permissions"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	DB        *gorm.DB
	Users     *permissions.Store
	Issuer    *permissions.TokenIssuer
	Gateway   *approval.Gateway
	Applier   approval.Applier
	Requests  *approval.RequestStore
	Moderator *approval.Moderator
	Notices   *approval.NoticeStore
	Log       *activity.Store
	Bus       *notify.Bus
	CSRF      *CSRF
}

// NewRouter assembles the full HTTP surface: the entity screens, BOMs, the
// approval queue, notices, the activity log and the decision event stream.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		sqlDB, err := deps.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			writeError(w, http.StatusServiceUnavailable, "unhealthy", "database unreachable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	adapter := NewAdapter(deps.DB, deps.Gateway, deps.Applier, deps.Log)
	moderation := NewModeration(deps.DB, deps.Requests, deps.Moderator, deps.Gateway.Resolver(), deps.Notices, deps.Log)

	r.Group(func(authed chi.Router) {
		authed.Use(permissions.Middleware(deps.Users, deps.Issuer))
		authed.Get("/csrf", deps.CSRF.TokenHandler())
		authed.Get("/events", notify.SSEHandler(deps.Bus))
		authed.Route("/screens", func(s chi.Router) {
			adapter.Mount(s, deps.CSRF)
			adapter.MountBoms(s, deps.CSRF)
			moderation.Mount(s, deps.CSRF)
		})
	})

	return r
}

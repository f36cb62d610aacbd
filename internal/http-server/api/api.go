package api

import (
	"LeadDesk/internal/config"
	"LeadDesk/internal/http-server/handlers/errors"
	"LeadDesk/internal/http-server/handlers/inbox"
	"LeadDesk/internal/http-server/handlers/key"
	"LeadDesk/internal/http-server/handlers/settings"
	"LeadDesk/internal/http-server/middleware/authenticate"
	"LeadDesk/internal/http-server/middleware/timeout"
	"LeadDesk/internal/lib/sl"
	"LeadDesk/internal/ws"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net"
	"net/http"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	ws.Authenticator
	inbox.Core
	settings.Core
	key.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(5))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	// Provider webhook and the websocket upgrade authenticate on their own
	// terms, outside the bearer-token middleware.
	router.Get("/webhook/whatsapp", inbox.WebhookVerify(log, conf.Channel.VerifyToken))
	router.Post("/webhook/whatsapp", inbox.Webhook(log, handler))
	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, handler, log, w, r)
	})

	router.Group(func(authed chi.Router) {
		authed.Use(authenticate.New(log, handler))

		authed.Route("/api/v1", func(v1 chi.Router) {
			v1.Route("/conversations", func(r chi.Router) {
				r.Get("/", inbox.GetConversations(log, handler))
				r.Post("/create", inbox.CreateConversation(log, handler))
				r.Post("/select", inbox.SelectConversation(log, handler))
				r.Post("/status", inbox.SetStatus(log, handler))
				r.Post("/deal", inbox.SetDealStatus(log, handler))
				r.Post("/read", inbox.MarkRead(log, handler))
				r.Post("/session", inbox.SessionWindow(log, handler))
			})
			v1.Route("/messages", func(r chi.Router) {
				r.Post("/", inbox.GetMessages(log, handler))
				r.Post("/older", inbox.GetOlderMessages(log, handler))
				r.Post("/text", inbox.SendText(log, handler))
				r.Post("/media", inbox.SendMedia(log, handler))
				r.Post("/template", inbox.SendTemplate(log, handler))
				r.Post("/interactive", inbox.SendInteractive(log, handler))
				r.Post("/schedule", inbox.ScheduleMessage(log, handler))
				r.Get("/due", inbox.DueScheduled(log, handler))
				r.Post("/suggest", inbox.SuggestReply(log, handler))
			})
			v1.Route("/agents", func(r chi.Router) {
				r.Get("/", inbox.GetAgents(log, handler))
				r.Post("/", inbox.UpsertAgent(log, handler))
			})
			v1.Route("/assignment", func(r chi.Router) {
				r.Post("/assign", inbox.Assign(log, handler))
				r.Post("/distribute", inbox.Distribute(log, handler))
				r.Get("/leads", inbox.ActiveLeads(log, handler))
			})
			v1.Route("/console", func(r chi.Router) {
				r.Post("/visibility", inbox.SetVisibility(log, handler))
			})
			v1.Route("/settings", func(r chi.Router) {
				r.Get("/distribution", settings.GetDistribution(log, handler))
				r.Post("/distribution", settings.UpdateDistribution(log, handler))
			})
			v1.Route("/key", func(r chi.Router) {
				r.Post("/new", key.Generate(log, handler))
			})
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}

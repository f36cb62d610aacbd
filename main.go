package main

import (
	"LeadDesk/bot"
	"LeadDesk/impl/core"
	"LeadDesk/internal/config"
	"LeadDesk/internal/database"
	"LeadDesk/internal/events"
	"LeadDesk/internal/http-server/api"
	"LeadDesk/internal/lib/logger"
	"LeadDesk/internal/lib/sl"
	"LeadDesk/internal/service/assignment"
	"LeadDesk/internal/service/auth"
	"LeadDesk/internal/service/channel"
	"LeadDesk/internal/service/delivery"
	"LeadDesk/internal/service/subscription"
	"LeadDesk/internal/service/suggest"
	"LeadDesk/internal/state"
	"LeadDesk/internal/ws"
	"flag"
	"log/slog"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	// Initialize Telegram bot if enabled
	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		var err error
		tgBot, err = bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", slog.String("error", err.Error()))
		} else {
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelError)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")

			go func() {
				if err := tgBot.Start(); err != nil {
					lg.Error("telegram bot error", slog.String("error", err.Error()))
				}
			}()
		}
	}

	lg.Info("starting leaddesk", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	store := state.NewStore()
	handler := core.New(lg, store, conf.Inbox.MessageLimit)

	authService := auth.NewAuthService(lg)

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
	}
	if db != nil {
		if err := db.EnsureIndexes(); err != nil {
			lg.With(sl.Err(err)).Error("ensure indexes")
		}
		authService.SetRepository(db)
		handler.SetRepository(db)
		handler.SetAuthService(authService)
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	}

	// Everything below needs a working repository; without one the
	// console still serves whatever the in-memory store holds.
	var subscriptions *subscription.Manager
	if db != nil {
		provider := channel.NewClient(conf, lg)
		deliveryService := delivery.NewService(db, provider, lg)
		deliveryService.SetPublisher(handler)
		handler.SetDeliveryService(deliveryService)

		assignmentService := assignment.NewService(db, store, lg)
		assignmentService.SetEvents(handler)
		handler.SetAssignmentService(assignmentService)

		subscriptions = subscription.NewManager(db, store, conf.Inbox.ConversationLimit, conf.Inbox.MessageLimit, lg)
		handler.SetSubscriptionManager(subscriptions)
	}

	if sg := suggest.NewService(conf, lg); sg != nil {
		handler.SetSuggestService(sg)
		lg.With(
			sl.Secret("openai_key", conf.OpenAI.ApiKey),
			slog.String("model", conf.OpenAI.Model),
		).Info("suggest service initialized")
	}

	publisher, err := events.NewPublisher(conf, lg)
	if err != nil {
		lg.With(sl.Err(err)).Error("events publisher")
	}
	if publisher != nil {
		defer publisher.Close()
		handler.SetEventPublisher(publisher)
		lg.With(
			slog.String("exchange", conf.Rabbit.Exchange),
		).Info("events publisher initialized")
	}

	hub := ws.NewHub(lg)
	hub.SetHandler(handler)
	handler.SetBroadcaster(hub)
	go hub.Run()

	if subscriptions != nil {
		if err := subscriptions.Init(); err != nil {
			lg.With(sl.Err(err)).Error("subscription manager init")
		}
		defer subscriptions.Close()
	}

	// *** blocking start with http server ***
	err = api.New(conf, lg, handler, hub)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}

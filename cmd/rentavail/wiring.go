package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"rentavail/internal/app/commands"
	availabilityapp "rentavail/internal/app/handlers/availability"
	blocksapp "rentavail/internal/app/handlers/blocks"
	bookingapp "rentavail/internal/app/handlers/booking"
	channelsapp "rentavail/internal/app/handlers/channels"
	quotesapp "rentavail/internal/app/handlers/quotes"
	unitsapp "rentavail/internal/app/handlers/units"
	"rentavail/internal/app/middleware"
	appoutbox "rentavail/internal/app/outbox"
	"rentavail/internal/app/policies"
	"rentavail/internal/app/queries"
	"rentavail/internal/app/schedule"
	"rentavail/internal/app/sessions"
	"rentavail/internal/app/uow"
	domainavailability "rentavail/internal/domain/availability"
	"rentavail/internal/infra/broker/kafka"
	"rentavail/internal/infra/config"
	"rentavail/internal/infra/cron"
	mongostore "rentavail/internal/infra/db/mongo"
	"rentavail/internal/infra/holidays"
	ginserver "rentavail/internal/infra/http/gin"
	"rentavail/internal/infra/ical"
	"rentavail/internal/infra/inbox"
	"rentavail/internal/infra/obs"
	infraoutbox "rentavail/internal/infra/outbox"
	infrapricing "rentavail/internal/infra/pricing"
	"rentavail/internal/infra/storage/memory"
	s3store "rentavail/internal/infra/storage/s3"
	"rentavail/internal/infra/validation"
)

type application struct {
	handlers  ginserver.Handlers
	commands  commands.Bus
	checks    map[string]obs.Check
	worker    *infraoutbox.Worker
	scheduler *cron.Scheduler
	consumer  *kafka.Consumer
	closers   []func(context.Context) error
	closeOnce sync.Once
}

// backend is the record store chosen at start: Mongo when MONGO_URI is set,
// in-process maps otherwise.
type backend struct {
	factory     uow.UoWFactory
	outbox      appoutbox.Outbox
	queue       infraoutbox.Queue
	idempotency middleware.IdempotencyStore
	inbox       kafka.Inbox
	checks      map[string]obs.Check
	closers     []func(context.Context) error
	// jobs are housekeeping tasks only the in-process stores need.
	jobs []scheduledJob
}

func openBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (backend, error) {
	if cfg.InMemory() {
		logger.Warn("MONGO_URI not set, records are kept in memory")
		box := memory.NewOutbox()
		idem := memory.NewIdempotencyStore(cfg.IdempotencyTTL)
		return backend{
			factory:     memory.NewFactory(),
			outbox:      box,
			queue:       box,
			idempotency: idem,
			inbox:       memory.NewInbox(),
			checks:      map[string]obs.Check{},
			jobs: []scheduledJob{{cfg.Schedules.IdempotencyEviction, "idempotency-eviction", func(context.Context) error {
				if n := idem.Evict(); n > 0 {
					logger.Debug("idempotency records evicted", "count", n)
				}
				return nil
			}}},
		}, nil
	}

	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return backend{}, fmt.Errorf("mongo connect: %w", err)
	}
	b := backend{
		checks:  map[string]obs.Check{"mongo": client.Ping},
		closers: []func(context.Context) error{client.Close},
	}
	factory, err := client.Repositories(ctx)
	if err != nil {
		return b, fmt.Errorf("mongo repositories: %w", err)
	}
	b.factory = factory
	box, err := infraoutbox.NewStore(ctx, client.DB)
	if err != nil {
		return b, fmt.Errorf("outbox store: %w", err)
	}
	b.outbox, b.queue = box, box
	if b.idempotency, err = mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL); err != nil {
		return b, fmt.Errorf("idempotency store: %w", err)
	}
	if b.inbox, err = inbox.NewStore(ctx, client.DB, cfg.KafkaConsumerGroup); err != nil {
		return b, fmt.Errorf("inbox store: %w", err)
	}
	logger.Info("mongo connected", "db", cfg.MongoDB)
	return b, nil
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	store, err := openBackend(ctx, cfg, logger)
	if err != nil {
		for _, c := range store.closers {
			_ = c(context.Background())
		}
		return nil, err
	}
	app := &application{checks: store.checks, closers: store.closers}

	engine, err := infrapricing.LoadEngine(cfg.Fees, logger)
	if err != nil {
		app.close(logger)
		return nil, err
	}
	registry, err := sessions.NewRegistry(domainavailability.WindowPolicy{
		Horizon:   cfg.Calendar.WindowHorizon,
		Threshold: cfg.Calendar.WindowThreshold,
		Extension: cfg.Calendar.WindowExtension,
		ViewSpan:  cfg.Calendar.WindowViewSpan,
	}, time.Now)
	if err != nil {
		app.close(logger)
		return nil, err
	}

	var publisher policies.CalendarPublisher
	if cfg.S3Bucket != "" {
		calendars, err := s3store.NewCalendarStore(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			app.close(logger)
			return nil, fmt.Errorf("calendar store: %w", err)
		}
		publisher = calendars
		app.checks["s3"] = calendars.Ping
	}

	deps := handlerDeps{
		factory:   store.factory,
		outbox:    store.outbox,
		encoder:   appoutbox.JSONEventEncoder{},
		quotes:    &quotesapp.Service{Pricing: engine},
		holidays:  holidays.USFederal(),
		codec:     ical.Codec{},
		fetcher:   ical.NewHTTPFetcher(cfg.FeedFetchTimeout),
		sessions:  registry,
		maxSpan:   cfg.Calendar.MaxSpanDays,
		logger:    logger,
		validator: validation.New(),
	}
	commandBus, queryBus := deps.buses(store.idempotency)
	app.commands = commandBus
	app.handlers = httpHandlers(commandBus, queryBus, logger)

	app.scheduler = cron.New(ctx, cfg.JobTimeout, logger)
	jobs := []scheduledJob{
		{cfg.Schedules.SessionEviction, "session-eviction", availabilityapp.EvictIdleSessions(registry, cfg.Calendar.SessionIdleTTL)},
		{cfg.Schedules.FeedSync, "feed-sync", channelsapp.SyncAllFeeds(store.factory, commandBus, logger)},
	}
	if publisher != nil {
		jobs = append(jobs, scheduledJob{cfg.Schedules.CalendarPublish, "calendar-publish", channelsapp.PublishCalendars(store.factory, deps.codec, publisher, time.Now, logger)})
	}
	jobs = append(jobs, store.jobs...)
	for _, j := range jobs {
		if j.spec == "" {
			logger.Info("job disabled", "job", j.name)
			continue
		}
		if err := app.scheduler.Every(j.spec, j.name, j.job); err != nil {
			app.close(logger)
			return nil, fmt.Errorf("schedule %s: %w", j.name, err)
		}
	}

	var producer infraoutbox.Producer = infraoutbox.LogProducer{Logger: logger}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			app.close(logger)
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		producer = kp
		app.closers = append(app.closers, func(context.Context) error { return kp.Close() })

		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, nil, &kafka.ChannelImportHandler{
			Bus:    commandBus,
			Inbox:  store.inbox,
			Logger: logger,
		}, cfg.RetryBackoff, logger)
		if err != nil {
			app.close(logger)
			return nil, fmt.Errorf("kafka consumer: %w", err)
		}
		app.consumer = consumer
		app.closers = append(app.closers, func(context.Context) error { return consumer.Close() })
	} else {
		logger.Warn("KAFKA_BROKERS not set, events are logged instead of published")
	}
	app.worker = &infraoutbox.Worker{
		Store:       store.queue,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
		Logger:      logger,
	}
	return app, nil
}

func (a *application) close(logger *slog.Logger) {
	a.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for i := len(a.closers) - 1; i >= 0; i-- {
			if err := a.closers[i](ctx); err != nil {
				logger.Warn("close failed", "error", err)
			}
		}
	})
}

type scheduledJob struct {
	spec string
	name string
	job  schedule.Job
}

type handlerDeps struct {
	factory   uow.UoWFactory
	outbox    appoutbox.Outbox
	encoder   appoutbox.EventEncoder
	quotes    *quotesapp.Service
	holidays  policies.HolidayCalendar
	codec     policies.CalendarCodec
	fetcher   policies.FeedFetcher
	sessions  *sessions.Registry
	maxSpan   int
	now       func() time.Time
	logger    *slog.Logger
	validator *validation.Validator
}

// buses registers every handler and wraps both buses with the middleware
// chain. Commands run validation and authorization before the idempotency
// lookup, then inside one transaction.
func (d handlerDeps) buses(idem middleware.IdempotencyStore) (commands.Bus, queries.Bus) {
	now := d.now
	if now == nil {
		now = time.Now
	}
	cmdBus := commands.NewInMemoryBus()
	commands.RegisterHandler(cmdBus, unitsapp.RegisterUnitCommand{}.Key(), &unitsapp.RegisterUnitHandler{
		UoWFactory: d.factory, Outbox: d.outbox, Encoder: d.encoder, Now: now, Logger: d.logger,
	})
	commands.RegisterHandler(cmdBus, unitsapp.ChangeRateCommand{}.Key(), &unitsapp.ChangeRateHandler{
		UoWFactory: d.factory, Outbox: d.outbox, Encoder: d.encoder, Now: now, Logger: d.logger,
	})
	commands.RegisterHandler(cmdBus, unitsapp.SuspendUnitCommand{}.Key(), &unitsapp.SuspendUnitHandler{
		UoWFactory: d.factory, Outbox: d.outbox, Encoder: d.encoder, Now: now, Logger: d.logger,
	})
	commands.RegisterHandler(cmdBus, blocksapp.CreateBlockCommand{}.Key(), &blocksapp.CreateBlockHandler{
		UoWFactory: d.factory, Outbox: d.outbox, Encoder: d.encoder, Now: now, Logger: d.logger,
	})
	commands.RegisterHandler(cmdBus, blocksapp.UpdateBlockCommand{}.Key(), &blocksapp.UpdateBlockHandler{
		UoWFactory: d.factory, Outbox: d.outbox, Encoder: d.encoder, Now: now, Logger: d.logger,
	})
	commands.RegisterHandler(cmdBus, blocksapp.DeleteBlockCommand{}.Key(), &blocksapp.DeleteBlockHandler{
		UoWFactory: d.factory, Outbox: d.outbox, Encoder: d.encoder, Now: now, Logger: d.logger,
	})
	commands.RegisterHandler(cmdBus, quotesapp.IssueQuoteCommand{}.Key(), &quotesapp.IssueQuoteHandler{
		UoWFactory: d.factory, Service: d.quotes, Outbox: d.outbox, Encoder: d.encoder, Now: now, Logger: d.logger,
	})
	commands.RegisterHandler(cmdBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory: d.factory, Quotes: d.quotes, Outbox: d.outbox, Encoder: d.encoder, Now: now, Logger: d.logger,
	})
	commands.RegisterHandler(cmdBus, bookingapp.TransitionBookingCommand{}.Key(), &bookingapp.TransitionBookingHandler{
		UoWFactory: d.factory, Outbox: d.outbox, Encoder: d.encoder, Now: now, Logger: d.logger,
	})
	commands.RegisterHandler(cmdBus, channelsapp.ImportChannelEventCommand{}.Key(), &channelsapp.ImportChannelEventHandler{
		UoWFactory: d.factory, Outbox: d.outbox, Encoder: d.encoder, Now: now, Logger: d.logger,
	})
	commands.RegisterHandler(cmdBus, channelsapp.RegisterFeedCommand{}.Key(), &channelsapp.RegisterFeedHandler{
		UoWFactory: d.factory, Logger: d.logger,
	})
	commands.RegisterHandler(cmdBus, channelsapp.SyncFeedCommand{}.Key(), &channelsapp.SyncFeedHandler{
		UoWFactory: d.factory, Fetcher: d.fetcher, Codec: d.codec, Now: now, Logger: d.logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, unitsapp.GetUnitQuery{}.Key(), &unitsapp.GetUnitHandler{UoWFactory: d.factory})
	queries.RegisterHandler(queryBus, unitsapp.ListUnitsQuery{}.Key(), &unitsapp.ListUnitsHandler{UoWFactory: d.factory})
	queries.RegisterHandler(queryBus, availabilityapp.GetOccupancyQuery{}.Key(), &availabilityapp.GetOccupancyHandler{
		UoWFactory: d.factory, Holidays: d.holidays, MaxSpanDays: d.maxSpan, Logger: d.logger,
	})
	queries.RegisterHandler(queryBus, availabilityapp.NavigateCalendarQuery{}.Key(), &availabilityapp.NavigateCalendarHandler{
		UoWFactory: d.factory, Sessions: d.sessions, Holidays: d.holidays, MaxSpanDays: d.maxSpan,
	})
	queries.RegisterHandler(queryBus, blocksapp.ListBlocksQuery{}.Key(), &blocksapp.ListBlocksHandler{UoWFactory: d.factory, Now: now})
	queries.RegisterHandler(queryBus, quotesapp.QuoteStayQuery{}.Key(), &quotesapp.QuoteStayHandler{UoWFactory: d.factory, Service: d.quotes, Now: now})
	queries.RegisterHandler(queryBus, quotesapp.GetQuoteQuery{}.Key(), &quotesapp.GetQuoteHandler{UoWFactory: d.factory})
	queries.RegisterHandler(queryBus, bookingapp.ListGuestBookingsQuery{}.Key(), &bookingapp.ListGuestBookingsHandler{UoWFactory: d.factory, Logger: d.logger})
	queries.RegisterHandler(queryBus, bookingapp.ListUnitBookingsQuery{}.Key(), &bookingapp.ListUnitBookingsHandler{UoWFactory: d.factory, Logger: d.logger})
	queries.RegisterHandler(queryBus, channelsapp.ExportCalendarQuery{}.Key(), &channelsapp.ExportCalendarHandler{UoWFactory: d.factory, Codec: d.codec, Now: now})

	if d.logger != nil {
		d.logger.Debug("bus routes registered", "commands", cmdBus.Keys(), "queries", queryBus.Keys())
	}

	authz := policies.PrecheckedPermissions{}
	commandsWithMiddleware := middleware.ChainCommands(
		cmdBus,
		middleware.Validation(d.validator),
		middleware.Authorization(authz),
		middleware.Idempotency(idem, nil),
		middleware.Transaction(d.factory, nil),
		middleware.OutboxFlush(d.outbox),
	)
	queriesWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryValidation(d.validator),
		middleware.QueryAuthorization(authz),
	)
	return commandsWithMiddleware, queriesWithMiddleware
}

func httpHandlers(cmds commands.Bus, qs queries.Bus, logger *slog.Logger) ginserver.Handlers {
	return ginserver.Handlers{
		Units:        ginserver.UnitHandler{Commands: cmds, Queries: qs, Logger: logger},
		Availability: ginserver.AvailabilityHandler{Queries: qs, Logger: logger},
		Blocks:       ginserver.BlockHandler{Commands: cmds, Queries: qs, Logger: logger},
		Quotes:       ginserver.QuoteHandler{Commands: cmds, Queries: qs, Logger: logger},
		Bookings:     ginserver.BookingHandler{Commands: cmds, Queries: qs, Logger: logger},
		Channels:     ginserver.ChannelHandler{Commands: cmds, Queries: qs, Logger: logger},
	}
}

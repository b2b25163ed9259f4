package main // Entry point package

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/sirupsen/logrus"
    "golang.org/x/sync/errgroup"

    "github.com/iliyamo/airline-reservation/internal/config"
    "github.com/iliyamo/airline-reservation/internal/database"
    "github.com/iliyamo/airline-reservation/internal/handler"
    "github.com/iliyamo/airline-reservation/internal/middleware"
    "github.com/iliyamo/airline-reservation/internal/queue"
    "github.com/iliyamo/airline-reservation/internal/repository"
    "github.com/iliyamo/airline-reservation/internal/router"
    "github.com/iliyamo/airline-reservation/internal/service"
)

func main() {
    cfg := config.Load()
    log := config.NewLogger(cfg)

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    db, err := database.Open(ctx, database.Options{
        User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
    })
    if err != nil {
        log.WithError(err).Fatal("db connect failed")
    }
    defer db.Close()
    if cfg.DBAutoMigrate {
        if err := database.Migrate(ctx, db); err != nil {
            log.WithError(err).Fatal("db migrate failed")
        }
    }

    rdb := config.NewRedisClient(config.LoadRedisConfig(), log)
    if rdb != nil {
        defer rdb.Close()
    }

    // Repositories
    flights := repository.NewFlightRepo(db)
    airplanes := repository.NewAirplaneRepo(db)
    airports := repository.NewAirportRepo(db)
    tickets := repository.NewTicketRepo(db)
    reviews := repository.NewReviewRepo(db)

    // Services
    var publisher service.TicketPublisher
    if cfg.QueueEnabled {
        publisher = queue.NewPublisher(cfg.RabbitURL, log)
    }
    ticketSvc := service.NewTicketService(db, flights, airplanes, tickets, publisher, log)
    flightSvc := service.NewFlightService(flights, airplanes, airports)
    reviewSvc := service.NewReviewService(flights, tickets, reviews)

    e := echo.New()
    e.HideBanner = true
    e.Validator = service.Validator{}
    e.Use(echomw.Recover())
    e.Use(echomw.RequestID())
    e.Use(middleware.RequestLogger(log))
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))

    router.RegisterRoutes(e, router.Deps{
        JWTSecret:     cfg.JWTSecret,
        Redis:         rdb,
        Log:           log,
        PurchaseLimit: config.LoadPurchaseRateLimitConfig(),
        Cache:         config.LoadCacheConfig(),
        DB:            db,
        Auth: handler.NewAuthHandler(cfg, repository.NewCustomerRepo(db), repository.NewStaffRepo(db),
            repository.NewTokenRepo(db)),
        Public:  handler.NewPublicHandler(flights, ticketSvc, reviews, airports),
        Tickets: handler.NewTicketHandler(ticketSvc, tickets),
        Reviews: handler.NewReviewHandler(reviewSvc, reviews),
        Staff: handler.NewStaffHandler(flightSvc, flights, tickets, airplanes, airports,
            repository.NewReportRepo(db)),
    })

    g, gctx := errgroup.WithContext(ctx)
    g.Go(func() error {
        addr := ":" + cfg.Port
        log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            return err
        }
        return nil
    })
    if cfg.QueueEnabled {
        g.Go(func() error {
            return queue.NewConsumer(cfg.RabbitURL, cfg.TicketLogPath, log).Run(gctx)
        })
    }
    g.Go(func() error {
        <-gctx.Done()
        log.Info("shutting down")
        sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
        defer cancel()
        return e.Shutdown(sctx)
    })

    if err := g.Wait(); err != nil {
        log.WithError(err).Error("server stopped")
        os.Exit(1)
    }
}

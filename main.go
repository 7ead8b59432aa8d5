package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"hotel-frontdesk/auth"
	"hotel-frontdesk/cache"
	"hotel-frontdesk/config"
	"hotel-frontdesk/controllers"
	"hotel-frontdesk/jobs"
	"hotel-frontdesk/routes"
	"hotel-frontdesk/services"
	"hotel-frontdesk/storage"
	"hotel-frontdesk/timezone"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config load failed")
	}
	logger := config.NewLogger(cfg)

	tz, err := timezone.New(cfg.Timezone)
	if err != nil {
		logger.WithError(err).Fatal("invalid APP_TIMEZONE")
	}

	db, err := config.ConnectDatabase(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("database connect failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable, availability cache disabled")
			_ = redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("storage init failed")
	}

	deps := services.NewDeps(db, tz, cache.New(redisClient, cfg.CacheTTL), logger)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)

	availabilitySvc := services.NewAvailabilityService(deps, cfg.RoomStatusReadRepair, cfg.CheckoutTodayStrict)
	ctl := routes.Controllers{
		Auth: controllers.NewAuthController(services.NewAuthService(deps, tokens)),
		Booking: controllers.NewBookingController(
			services.NewBookingService(deps),
			services.NewPaymentService(deps),
			services.NewChargeService(deps),
			services.NewBillService(deps),
		),
		Room:     controllers.NewRoomController(services.NewRoomService(deps), availabilitySvc),
		RoomType: controllers.NewRoomTypeController(services.NewRoomTypeService(deps), services.NewFloorService(deps)),
		Customer: controllers.NewCustomerController(services.NewCustomerService(deps, store)),
		Expense:  controllers.NewExpenseController(services.NewExpenseService(deps), services.NewReportService(deps)),
		Settings: controllers.NewSettingsController(services.NewSettingsService(deps)),
	}
	router := routes.SetupRouter(cfg, logger, tokens, ctl)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if redisClient != nil {
		job := jobs.NewReconcileJob(availabilitySvc, logger, jobs.NewMetrics(nil))
		worker, err := jobs.NewWorker(jobs.WorkerConfig{
			RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword},
			Logger:    logger,
			Location:  tz.Location(),
			Handlers:  []jobs.TaskHandler{{Type: jobs.TaskRoomStatusReconcile, Handler: job.Handle}},
			Cron:      []jobs.CronRegistration{{Spec: cfg.ReconcileCron, Task: jobs.NewRoomStatusReconcileTask()}},
		})
		if err != nil {
			logger.WithError(err).Fatal("worker init failed")
		}
		g.Go(func() error {
			return worker.Run(gctx)
		})
	} else {
		logger.Info("REDIS_ADDR not set, scheduled room reconciliation disabled")
	}

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server stopped with error")
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}

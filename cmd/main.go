package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/courtside/booking-platform/internal/config"
	"github.com/courtside/booking-platform/internal/db"
	"github.com/courtside/booking-platform/internal/handler"
	"github.com/courtside/booking-platform/internal/model"
	"github.com/courtside/booking-platform/internal/repository"
	"github.com/courtside/booking-platform/internal/scheduler"
	"github.com/courtside/booking-platform/internal/service"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With("service", "court-booking-core")

	// 1. Конфиг из env.
	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Подключаемся к БД через GORM.
	gormDB, err := db.NewGormDB(&cfg.DB)
	if err != nil {
		log.Error("init db", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Error("auto migrate", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Error("sql DB", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer sqlDB.Close()

	// 4. Репозитории (реализации на GORM).
	courtRepo := repository.NewGormCourtRepository(gormDB)
	slotRepo := repository.NewGormSlotRepository(gormDB)
	bookingRepo := repository.NewGormBookingRepository(gormDB)
	eventRepo := repository.NewGormEventRepository(gormDB)

	// 5. Сервисы ядра.
	slotSvc := service.NewSlotService(courtRepo, slotRepo, eventRepo, log, cfg.App.BookingWindowDays)
	bookingSvc := service.NewBookingService(courtRepo, bookingRepo, eventRepo, log, cfg.App.CancelCutoff)

	// 6. HTTP-сервер.
	router := gin.Default()
	handler.Routes(router, handler.New(slotSvc, bookingSvc, log))

	srv := &http.Server{
		Addr:    cfg.App.ListenAddr,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 7. Фоновый свипер.
	sweeper := scheduler.New(slotSvc, bookingSvc, cfg.App.SweepInterval, cfg.App.RetentionDays, log)
	go sweeper.Start(ctx)

	go func() {
		log.Info("http server listening", slog.String("addr", cfg.App.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http serve", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// 8. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down http server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", slog.String("error", err.Error()))
	}
}

// README: Entry point; loads config, wires services, starts HTTP server and background schedulers.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shuttle/internal/config"
	httptransport "shuttle/internal/http"
	"shuttle/internal/infra"
	"shuttle/internal/maps"
	"shuttle/internal/modules/dispatch"
	"shuttle/internal/modules/location"
	"shuttle/internal/modules/place"
	"shuttle/internal/modules/shift"
	"shuttle/internal/modules/trip"
	"shuttle/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(os.Getenv("SHUTTLE_DEBUG") != "")
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("postgres init", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	var pub notify.Publisher = notify.Nop{}
	if cfg.AMQP.URL != "" {
		conn, ch, err := infra.NewRabbit(cfg.AMQP.URL)
		if err != nil {
			logger.Fatal("rabbitmq init", zap.Error(err))
		}
		defer conn.Close()
		rabbit, err := notify.NewRabbitPublisher(ch, cfg.AMQP.Exchange, logger)
		if err != nil {
			logger.Fatal("rabbitmq exchange", zap.Error(err))
		}
		pub = rabbit
	}

	var geocoder place.Geocoder
	if cfg.Maps.APIKey != "" {
		geo, err := maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal("maps init", zap.Error(err))
		}
		geocoder = geo
	}

	placeStore := place.NewPGStore(dbPool)
	placeSvc := place.NewService(placeStore, geocoder, logger)

	tripStore := trip.NewPGStore(dbPool)
	tripSvc := trip.NewService(tripStore, placeSvc, pub, logger)

	shiftStore := shift.NewPGStore(dbPool)
	shiftSvc := shift.NewService(shiftStore, pub, logger)

	dispatchSvc := dispatch.NewService(tripStore, shiftStore, nil, pub, logger)

	locationCache := location.NewRedisCache(redisClient, cfg.Location.TTL)

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Trips:     tripSvc,
		Shifts:    shiftSvc,
		Dispatch:  dispatchSvc,
		Places:    placeSvc,
		Locations: locationCache,
		JWTSecret: cfg.Auth.JWTSecret,
		Log:       logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go shiftSvc.RunArchiveTicker(ctx, cfg.Archive.Tick, cfg.Archive.RetainFor)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server", zap.Error(err))
	}
}

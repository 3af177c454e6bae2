package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ndtrung/vietshop/internal/config"
	"github.com/ndtrung/vietshop/internal/es"
	"github.com/ndtrung/vietshop/internal/handlers"
	"github.com/ndtrung/vietshop/internal/logging"
	mwauth "github.com/ndtrung/vietshop/internal/middleware/auth"
	"github.com/ndtrung/vietshop/internal/mykafka"
	"github.com/ndtrung/vietshop/internal/ratelimit"
	"github.com/ndtrung/vietshop/internal/storage"
	"github.com/ndtrung/vietshop/internal/token"
	httpserver "github.com/ndtrung/vietshop/internal/transport/http"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	var prod *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = mykafka.NewProducer(cfg.KafkaBrokers)
	} else {
		logger.Warn("KAFKA_BROKERS empty, event publishing disabled")
	}

	var esClient *elasticsearch.Client
	if cfg.ESURL != "" {
		esClient, err = es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
	} else {
		logger.Warn("ES_URL empty, product search disabled")
	}

	var store *storage.Client
	if cfg.MinioEndpoint != "" {
		store, err = storage.New(context.Background(), cfg)
		if err != nil {
			log.Fatalf("object storage init error: %v", err)
		}
	} else {
		logger.Warn("MINIO_ENDPOINT empty, uploads disabled")
	}

	codec := token.NewCodec([]byte(cfg.SessionSecret), cfg.SessionTTL())
	limiter := ratelimit.New()

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(mwauth.DefaultGuard(cfg.SessionCookie).Middleware())

	deps := httpserver.Deps{
		DB:         db,
		Codec:      codec,
		CookieName: cfg.SessionCookie,
		AuthHandler: &handlers.AuthHandler{
			DB:            db,
			Codec:         codec,
			CookieName:    cfg.SessionCookie,
			SecureCookies: cfg.Production(),
			Limiter:       limiter,
			Producer:      prod,
			Store:         store,
		},
		CartHandler:         &handlers.CartHandler{DB: db, Producer: prod, Limiter: limiter},
		CheckoutHandler:     &handlers.CheckoutHandler{DB: db, Producer: prod},
		OrderHandler:        &handlers.OrderHandler{DB: db, Producer: prod},
		ProductHandler:      &handlers.ProductHandler{DB: db, Producer: prod},
		ShopHandler:         &handlers.ShopHandler{DB: db, Producer: prod},
		NotificationHandler: &handlers.NotificationHandler{DB: db},
		SearchHandler:       &handlers.SearchHandler{ES: esClient, Index: "product", DB: db},
		StorageHandler:      &handlers.StorageHandler{Store: store},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("server started", "port", cfg.Port, "env", cfg.Env)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"classroom-ledger/internal/aggregate"
	"classroom-ledger/internal/clients"
	"classroom-ledger/internal/config"
	"classroom-ledger/internal/repository"
	"classroom-ledger/internal/service"
	"classroom-ledger/internal/transport/auth"
	"classroom-ledger/internal/transport/rest"
	"classroom-ledger/internal/transport/websocket"
	"classroom-ledger/pkg/database/postgres"
)

// fileStore is what the export pipeline and the cleanup job need from storage.
type fileStore interface {
	service.FileStore
	CleanupOlderThan(ctx context.Context, d time.Duration) (int, error)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env or defaults")
	}

	// top-level context which we can cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Load()

	db := mustInitPostgres(ctx, cfg.Postgres)
	defer postgres.Close(db)

	redisClient := mustInitRedis(ctx, cfg.Redis)
	defer redisClient.Close()

	local, files := mustInitStorage(ctx, cfg)

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	wsClient := clients.NewWebSocketClient(wsHub)

	paymentRepo := repository.NewPaymentRepository(db)
	planRepo := repository.NewPlanRepository(db)
	postRepo := repository.NewPostRepository(db)
	tokenRepo := repository.NewAccessTokenRepository(db)

	policy := aggregate.EngagementPolicy{
		View:        cfg.Engagement.View,
		Like:        cfg.Engagement.Like,
		Share:       cfg.Engagement.Share,
		Bookmark:    cfg.Engagement.Bookmark,
		Comment:     cfg.Engagement.Comment,
		Submission:  cfg.Engagement.Submission,
		FullScoreAt: cfg.Engagement.FullScoreAt,
	}

	paymentSvc := service.NewPaymentService(paymentRepo, planRepo, redisClient, wsClient, service.SystemClock, cfg.SummaryTTL)
	planSvc := service.NewPlanService(planRepo, redisClient, service.SystemClock)
	postSvc := service.NewPostService(postRepo, policy)
	reminderSvc := service.NewReminderService(paymentRepo, redisClient, wsClient, service.SystemClock)
	exportSvc := service.NewExportService(paymentRepo, redisClient, files, wsClient, service.SystemClock, cfg.ExportPrefix)

	tokenMiddleware := auth.TokenMiddleware(tokenRepo, time.Now)

	handler := rest.NewHandler(paymentSvc, planSvc, postSvc, reminderSvc, exportSvc)
	router := handler.InitRouterWithAuth(tokenMiddleware)

	// public root router; everything mounted from handler stays protected
	root := chi.NewRouter()

	root.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			rest.Error(w, "database unavailable", 503, http.StatusServiceUnavailable)
			return
		}
		rest.Success(w, "ok", nil)
	})

	root.Get("/files/{file}", func(w http.ResponseWriter, r *http.Request) {
		if local == nil {
			http.NotFound(w, r)
			return
		}
		path, orig, err := local.Open(chi.URLParam(r, "file"))
		if err != nil {
			if os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "failed to access file", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", orig))
		http.ServeFile(w, r, path)
	})

	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserID(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		log.Printf("[WS] connected: user_id=%s", userID)
		wsHub.HandleWebSocket(w, r, userID)
	})

	root.Mount("/", router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      withCORS(root),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on :%s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	scheduler := mustInitCron(ctx, cfg, files, reminderSvc)
	scheduler.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	case sig := <-stop:
		log.Printf("Shutdown signal received: %v", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server Shutdown error: %v", err)
		}

		// wait for a running cron job before the connections go away
		<-scheduler.Stop().Done()

		// stops the websocket hub
		cancel()

		postgres.Close(db)
		redisClient.Close()

		log.Println("Shutdown complete")
	}
}

func mustInitPostgres(ctx context.Context, cfg config.PostgresConfig) *sql.DB {
	db, err := postgres.NewPostgresConnection(ctx, postgres.ConnectionInfo{
		Host:         cfg.Host,
		Port:         cfg.Port,
		Username:     cfg.User,
		DBName:       cfg.DBName,
		SSLMode:      cfg.SSLMode,
		Password:     cfg.Password,
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
	})
	if err != nil {
		log.Fatalf("postgres init error: %v", err)
	}

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db, repository.Schema); err != nil {
			log.Fatalf("postgres migrate error: %v", err)
		}
		log.Println("postgres schema applied")
	}
	return db
}

func mustInitRedis(ctx context.Context, cfg config.RedisConfig) *clients.RedisClient {
	client, err := clients.NewRedisClient(ctx, clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Prefix:      cfg.Prefix,
	})
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}
	return client
}

// mustInitStorage returns the local storage (nil when exports go to S3) and
// the store exports are written to.
func mustInitStorage(ctx context.Context, cfg config.AppConfig) (*clients.LocalStorage, fileStore) {
	switch cfg.Storage.Driver {
	case "s3":
		s3, err := clients.NewS3Storage(ctx, clients.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			UseSSL:          cfg.S3.UseSSL,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			URLTTL:          cfg.S3.URLTTL,
		})
		if err != nil {
			log.Fatalf("s3 init error: %v", err)
		}
		return nil, s3
	case "local", "":
		local, err := clients.NewLocalStorage(cfg.Storage.Dir, cfg.Storage.PublicPrefix, cfg.Storage.ExternalURL)
		if err != nil {
			log.Fatalf("storage init error: %v", err)
		}
		return local, local
	default:
		log.Fatalf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
		return nil, nil
	}
}

func mustInitCron(ctx context.Context, cfg config.AppConfig, files fileStore, reminders *service.ReminderService) *cron.Cron {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	if _, err := c.AddFunc(cfg.Cron.CleanupSpec, func() {
		n, err := files.CleanupOlderThan(ctx, cfg.Storage.Retention)
		if err != nil {
			log.Printf("[CRON] export cleanup error: %v", err)
			return
		}
		if n > 0 {
			log.Printf("[CRON] removed %d expired export files", n)
		}
	}); err != nil {
		log.Fatalf("invalid CRON_EXPORT_CLEANUP %q: %v", cfg.Cron.CleanupSpec, err)
	}

	if _, err := c.AddFunc(cfg.Cron.ReminderSpec, func() {
		sent, err := reminders.SendDue(ctx)
		if err != nil {
			log.Printf("[CRON] reminder delivery error: %v", err)
		}
		log.Printf("[CRON] reminder delivery attempted for %d reminders", len(sent))
	}); err != nil {
		log.Fatalf("invalid CRON_REMINDERS %q: %v", cfg.Cron.ReminderSpec, err)
	}

	return c
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskdeck/api"
	"taskdeck/record"
	"taskdeck/service"
	"taskdeck/storage"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	logger := log.New()

	var store record.Client
	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = "mock"
	}
	switch backend {
	case "remote":
		baseURL := os.Getenv("RECORD_SERVICE_URL")
		if baseURL == "" {
			log.Fatal("missing RECORD_SERVICE_URL")
		}
		remote, err := storage.NewRemote(storage.RemoteConfig{
			BaseURL:   baseURL,
			ProjectID: os.Getenv("RECORD_PROJECT_ID"),
			PublicKey: os.Getenv("RECORD_PUBLIC_KEY"),
		}, logger)
		if err != nil {
			log.Fatalf("record service: %v", err)
		}
		store = remote
	case "tables":
		connStr := os.Getenv("STORAGE_CONNECTION_STRING")
		if connStr == "" {
			log.Fatal("missing STORAGE_CONNECTION_STRING")
		}
		tasksTable := envOr("TASKS_TABLE", "task")
		categoriesTable := envOr("CATEGORIES_TABLE", "category")
		tables, err := storage.NewTables(connStr, tasksTable, categoriesTable)
		if err != nil {
			log.Fatalf("table storage: %v", err)
		}
		store = tables
	case "mock":
		mock := storage.NewMockStore()
		if v := os.Getenv("MOCK_LATENCY"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d < 0 {
				log.Fatalf("invalid MOCK_LATENCY: %v", err)
			}
			mock.SetLatency(d, d)
		}
		log.Warn("running against the in-memory mock store; data lives for this process only")
		store = mock
	default:
		log.Fatalf("unknown STORE_BACKEND %q", backend)
	}

	if redisConn := os.Getenv("REDIS_CONNECTION_STRING"); redisConn != "" {
		redisOpts, err := redis.ParseURL(redisConn)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		ttl := 5 * time.Minute
		if v := os.Getenv("CACHE_TTL"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				log.Fatalf("invalid CACHE_TTL: %v", err)
			}
			ttl = d
		}
		store = storage.NewCache(store, redis.NewClient(redisOpts), ttl)
	}

	var auth *api.Auth
	if os.Getenv("AUTH0_TEST_MODE") == "1" {
		secret := os.Getenv("TEST_JWT_SECRET")
		if secret == "" {
			log.Fatal("TEST_JWT_SECRET must be set when AUTH0_TEST_MODE=1")
		}
		auth = api.NewTestAuth([]byte(secret))
	} else {
		jwtAudience := os.Getenv("AUTH0_AUDIENCE")
		domain := os.Getenv("AUTH0_DOMAIN")
		if jwtAudience == "" || domain == "" {
			log.Fatal("missing Auth0 config")
		}
		jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", domain)
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		auth = api.NewAuth(jwks, jwtAudience, "https://"+domain+"/")
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.POST, echo.PATCH, echo.DELETE},
	}))

	tasks := service.NewTaskService(store, logger)
	categories := service.NewCategoryService(store, logger)
	api.Register(e, tasks, categories, auth, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

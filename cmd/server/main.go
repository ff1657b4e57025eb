package main // Entry point package

import (
	"log"  // Logging library
	"time" // TTL conversions for the session store

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/mkortel/goblog/internal/config"     // Internal config loader
	"github.com/mkortel/goblog/internal/database"   // MySQL connection setup
	"github.com/mkortel/goblog/internal/handler"    // HTTP handlers
	"github.com/mkortel/goblog/internal/middleware" // Rate limiter construction
	"github.com/mkortel/goblog/internal/queue"      // Reset-mail consumer
	"github.com/mkortel/goblog/internal/repository" // Data access layer
	"github.com/mkortel/goblog/internal/router"     // Route registration
	mail_publisher "github.com/mkortel/goblog/internal/service"
	"github.com/mkortel/goblog/internal/session" // Redis session store
	"github.com/mkortel/goblog/internal/storage" // Avatar file storage
	"github.com/mkortel/goblog/internal/token"   // Reset token issuer
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		// Sessions live in Redis; without it nobody can log in.
		log.Fatal("redis unavailable: session store cannot start")
	}
	sessions := session.NewRedisStore(rdb,
		time.Duration(cfg.SessionTTLHours)*time.Hour,
		time.Duration(cfg.RememberTTLDays)*24*time.Hour)

	users := repository.NewUserRepo(db)
	posts := repository.NewPostRepo(db)
	issuer := token.NewIssuer(cfg.SecretKey, users)
	avatars := storage.NewAvatarStore(cfg.UploadDir)

	authHandler := handler.NewAuthHandler(cfg, users, sessions)
	postHandler := handler.NewPostHandler(posts)
	accountHandler := handler.NewAccountHandler(cfg, users, posts, sessions, avatars)
	resetHandler := handler.NewResetHandler(cfg, users, sessions, issuer, mail_publisher.Publisher{})

	limiter := middleware.NewFixedWindow(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.Register(e, sessions, authHandler, postHandler, accountHandler, resetHandler, limiter)

	// Drain reset-mail events in the background; the loop reconnects on
	// broker failure and never takes the web server down with it.
	go func() {
		if err := queue.StartMailConsumer(); err != nil {
			log.Printf("mail consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

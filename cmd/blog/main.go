// The blog app: a public post feed with session-authenticated posting and
// commenting.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/user/miniweb-go/auth"
	"github.com/user/miniweb-go/blog"
	"github.com/user/miniweb-go/config"
	"github.com/user/miniweb-go/db"
	"github.com/user/miniweb-go/session"
	"github.com/user/miniweb-go/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.Load(config.Defaults{
		DBName:        "blog",
		Port:          "3000",
		StaticDir:     "./web/blog",
		MigrationsDir: "./migrations/blog",
		CookieName:    "blog_session",
	})
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DB, cfg.MigrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	sessions := session.NewPGStore(pool, cfg.Session.TTL)
	authService := auth.NewService(auth.NewPGStore(pool))
	authHandlers := auth.NewHandlers(authService, sessions, cfg.Session.CookieName, "/")
	blogHandlers := blog.NewHandlers(blog.NewPGStore(pool), authService)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(session.Middleware(sessions, cfg.Session.CookieName))

	staticDir := cfg.Server.StaticDir
	r.Get("/", web.Page(sessions, staticDir, "index.html"))
	r.Get("/register", web.Page(sessions, staticDir, "register.html"))
	r.Post("/register", authHandlers.HandleRegister())
	r.Get("/login", web.Page(sessions, staticDir, "login.html"))
	r.Post("/login", authHandlers.HandleLogin())
	r.Get("/logout", authHandlers.HandleLogout())

	// Public feed.
	r.Get("/posts", blogHandlers.HandleListPosts())
	r.Get("/post/{id}", blogHandlers.HandleGetPost())

	// Authenticated surface.
	r.Group(func(r chi.Router) {
		r.Use(session.RequireAuth)
		r.Get("/new", web.Page(sessions, staticDir, "new.html"))
		r.Post("/posts", blogHandlers.HandleCreatePost())
		r.Post("/post/{id}/comments", blogHandlers.HandleAddComment())
		r.Get("/profile", blogHandlers.HandleProfile())
	})

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Blog server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"arcstride/internal/auth"
	"arcstride/internal/character"
	"arcstride/internal/comment"
	"arcstride/internal/guide"
	"arcstride/internal/library"
	"arcstride/internal/memo"
	"arcstride/internal/progress"
	"arcstride/internal/review"
	"arcstride/internal/stats"
	synchub "arcstride/internal/sync"
	"arcstride/internal/target"
	"arcstride/internal/title"
	"arcstride/internal/unit"
	"arcstride/pkg/database"
	"arcstride/pkg/utils"
)

func main() {
	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub))
	tcpSrv := synchub.NewServer(":7070", hub)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		hubStats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": hubStats.TCPClients,
				"ws_clients":  hubStats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": hubStats.TCPClients,
			"ws_clients":  hubStats.WSClients,
		})
	})

	refresher := stats.NewRefresher()
	resolver := target.NewResolver(db)

	titleRepo := title.NewRepo(db)
	unitRepo := unit.NewRepo(db)
	characterRepo := character.NewRepo(db)
	reviewRepo := review.NewRepo(db, refresher)
	commentRepo := comment.NewRepo(db, refresher)
	progressRepo := progress.NewRepo(db)
	guideRepo := guide.NewRepo(db, resolver)
	memoRepo := memo.NewRepo(db, resolver)
	libraryRepo := library.NewRepo(db)

	titleHandler := title.NewHandler(titleRepo)
	unitHandler := unit.NewHandler(unitRepo)
	characterHandler := character.NewHandler(characterRepo)
	reviewHandler := review.NewHandler(reviewRepo)
	commentHandler := comment.NewHandler(commentRepo)
	progressHandler := progress.NewHandler(progressRepo, hub)
	guideHandler := guide.NewHandler(guideRepo)
	memoHandler := memo.NewHandler(memoRepo)
	libraryHandler := library.NewHandler(libraryRepo, hub)

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Public reads
	public := router.Group("/")
	titleHandler.RegisterPublicRoutes(public)
	unitHandler.RegisterPublicRoutes(public)
	characterHandler.RegisterPublicRoutes(public)
	reviewHandler.RegisterPublicRoutes(public)
	commentHandler.RegisterPublicRoutes(public)
	guideHandler.RegisterPublicRoutes(public)
	libraryHandler.RegisterPublicRoutes(public)

	// Authenticated writes and per-user reads
	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(tokenSvc, authRepo))

	protected.GET("/users/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
			"email":    claims.Email,
		})
	})

	titleHandler.RegisterProtectedRoutes(protected)
	unitHandler.RegisterProtectedRoutes(protected)
	characterHandler.RegisterProtectedRoutes(protected)
	reviewHandler.RegisterProtectedRoutes(protected)
	commentHandler.RegisterProtectedRoutes(protected)
	progressHandler.RegisterProtectedRoutes(protected)
	guideHandler.RegisterProtectedRoutes(protected)
	memoHandler.RegisterProtectedRoutes(protected)
	libraryHandler.RegisterProtectedRoutes(protected)

	httpSrv := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Println("HTTP API server listening on :8080")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}

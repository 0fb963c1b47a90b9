package main

import (
	"context"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/inkwell/backend/internal/auth"
	"github.com/inkwell/backend/internal/client"
	"github.com/inkwell/backend/internal/config"
	"github.com/inkwell/backend/internal/db"
	"github.com/inkwell/backend/internal/handler"
	"github.com/inkwell/backend/internal/service"
)

// @title Inkwell API
// @version 1.0
// @description Blog content-management backend
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	database, err := db.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// Misconfigured auth (missing JWT secret, bad TTLs) aborts startup; auth
	// failures at request time never do.
	authSvc, err := service.NewAuthService(database, cfg.Auth)
	if err != nil {
		log.Fatalf("auth config: %v", err)
	}

	if cfg.Auth.AdminUsername != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			log.Fatalf("admin bootstrap: %v", err)
		}
	}

	var relatedSvc *service.RelatedService
	if cfg.Embedding.APIKey != "" {
		embClient, err := client.NewEmbeddingClient(cfg.Embedding)
		if err != nil {
			log.Printf("related posts disabled: %v", err)
		} else if err := database.EnsureEmbeddingSchema(ctx); err != nil {
			log.Printf("related posts disabled: %v", err)
		} else {
			relatedSvc = service.NewRelatedService(database, embClient)
		}
	}

	postSvc := service.NewPostService(database, relatedSvc)
	termSvc := service.NewTermService(database)

	var uploadSvc *service.UploadService
	if cfg.Storage.Bucket != "" {
		storageClient, err := client.NewStorageClient(ctx, cfg.Storage)
		if err != nil {
			log.Printf("uploads disabled: %v", err)
		} else {
			uploadSvc = service.NewUploadService(storageClient)
		}
	}

	var oidcSvc *service.OIDCService
	if cfg.OIDC.IssuerURL != "" {
		oidcSvc, err = service.NewOIDCService(ctx, database, authSvc, cfg.OIDC)
		if err != nil {
			log.Fatalf("oidc: %v", err)
		}
	}

	refresher := auth.NewRefresher(authSvc.Codec(), client.NewReissueClient(cfg.Server.BaseURL))

	router := gin.Default()
	if cfg.Server.AllowedOrigins != "" {
		router.Use(handler.CORSMiddleware(strings.Split(cfg.Server.AllowedOrigins, ","), true))
	}

	authHandler := handler.NewAuthHandler(authSvc, oidcSvc != nil)
	postHandler := handler.NewPostHandler(postSvc, relatedSvc)
	termHandler := handler.NewTermHandler(termSvc)

	router.GET("/", handler.Root)
	router.GET("/ping", handler.Ping)
	router.GET("/openapi.json", handler.OpenAPIDoc)

	api := router.Group("/api/v1")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/config", authHandler.Config)
	api.GET("/auth/me", handler.BearerAuth(authSvc.Codec()), authHandler.Me)

	if oidcSvc != nil {
		oidcHandler := handler.NewOIDCHandler(oidcSvc, authSvc)
		api.GET("/auth/oidc/login", oidcHandler.Login)
		api.GET("/auth/oidc/callback", oidcHandler.Callback)
	}

	api.GET("/posts", postHandler.List)
	api.GET("/posts/:id", postHandler.Get)
	api.GET("/posts/:id/related", postHandler.Related)
	api.GET("/terms", termHandler.List)

	admin := api.Group("", handler.BearerAuth(authSvc.Codec()), handler.RequireRole(auth.RoleAdmin))
	admin.POST("/posts", postHandler.Create)
	admin.PATCH("/posts/:id", postHandler.Update)
	admin.DELETE("/posts/:id", postHandler.Delete)
	admin.POST("/terms", termHandler.Create)
	admin.DELETE("/terms/:id", termHandler.Delete)

	if uploadSvc != nil {
		uploadHandler := handler.NewUploadHandler(uploadSvc)
		admin.POST("/uploads", uploadHandler.Upload)
		api.GET("/uploads/url", uploadHandler.ServeURL)
	}

	// Server-rendered pages authenticate through cookies; an expired access
	// token is refreshed in place before the page loads.
	web := router.Group("/web", handler.CookieAuth(refresher, authSvc.CookieConfig()))
	web.GET("/me", authHandler.Me)

	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

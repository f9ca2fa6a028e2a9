package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
	"library-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupAuthorRoutes(v1, c)
		setupBookRoutes(v1, c)
		setupBorrowRoutes(v1, c)
	}

	return router
}

func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/resend-activation", c.UserHandler.ResendActivation)
		auth.POST("/verify-activation", c.UserHandler.VerifyActivation)
		auth.POST("/login", c.UserHandler.Login)
		auth.POST("/refresh", c.UserHandler.Refresh)
		auth.POST("/logout", c.UserHandler.Logout)
		auth.POST("/forgot-password", c.UserHandler.ForgotPassword)
		auth.POST("/reset-password", c.UserHandler.ResetPassword)
	}
}

func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users", middleware.Auth(c.JWTManager))
	{
		users.GET("/me", c.UserHandler.Me)
		users.POST("/me/phone/send-code", c.UserHandler.SendPhoneVerification)
		users.POST("/me/phone/verify", c.UserHandler.VerifyPhone)

		users.GET("", middleware.RequireStaff(), c.UserHandler.List)
		users.GET("/:id", c.UserHandler.GetByID)
		users.PATCH("/:id/role", middleware.RequireAdmin(), c.UserHandler.UpdateRole)
		users.PATCH("/:id/borrow-limit", middleware.RequireStaff(), c.UserHandler.UpdateBorrowLimit)
	}
}

func setupAuthorRoutes(v1 *gin.RouterGroup, c *container.Container) {
	authors := v1.Group("/authors")
	{
		// Catalog reads are public, guests included.
		authors.GET("", c.AuthorHandler.List)
		authors.GET("/:id", c.AuthorHandler.GetByID)

		staff := authors.Group("", middleware.Auth(c.JWTManager), middleware.RequireStaff())
		{
			staff.POST("", c.AuthorHandler.Create)
			staff.PUT("/:id", c.AuthorHandler.Update)
			staff.DELETE("/:id", c.AuthorHandler.Delete)
		}
	}
}

func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")
	{
		books.GET("", c.BookHandler.List)
		books.GET("/:id", c.BookHandler.GetByID)
		books.GET("/:id/available-copies", c.BookHandler.AvailableCopies)
		books.GET("/:id/copies", c.CopyHandler.ListByBook)

		staff := books.Group("", middleware.Auth(c.JWTManager), middleware.RequireStaff())
		{
			staff.POST("", c.BookHandler.Create)
			staff.PUT("/:id", c.BookHandler.Update)
			staff.DELETE("/:id", c.BookHandler.Delete)
			staff.POST("/:id/copies", c.CopyHandler.Create)
		}
	}

	copies := v1.Group("/copies")
	{
		copies.GET("/:id", c.CopyHandler.GetByID)

		staff := copies.Group("", middleware.Auth(c.JWTManager), middleware.RequireStaff())
		{
			staff.PATCH("/:id/status", c.CopyHandler.UpdateStatus)
			staff.DELETE("/:id", c.CopyHandler.Delete)
		}
	}
}

func setupBorrowRoutes(v1 *gin.RouterGroup, c *container.Container) {
	borrows := v1.Group("/borrows", middleware.Auth(c.JWTManager))
	{
		borrows.POST("", c.BorrowHandler.Borrow)
		borrows.GET("/me", c.BorrowHandler.ListMine)
		borrows.GET("/overdue", middleware.RequireStaff(), c.BorrowHandler.ListOverdue)
		borrows.GET("", middleware.RequireStaff(), c.BorrowHandler.List)
		borrows.GET("/:id", c.BorrowHandler.GetByID)
		borrows.POST("/:id/return", c.BorrowHandler.Return)
		borrows.POST("/:id/fee-paid", middleware.RequireStaff(), c.BorrowHandler.MarkFeePaid)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "up"
		if err := c.DB.HealthCheck(checkCtx); err != nil {
			dbStatus = "down"
		}
		cacheStatus := "up"
		if err := c.Cache.Ping(checkCtx); err != nil {
			cacheStatus = "down"
		}

		status := http.StatusOK
		if dbStatus == "down" {
			status = http.StatusServiceUnavailable
		}

		response.Success(ctx, status, gin.H{
			"service":  c.Config.App.Name,
			"version":  c.Config.App.Version,
			"database": dbStatus,
			"cache":    cacheStatus,
		})
	}
}

// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"codeberg.org/oliverandrich/greengrocer/internal/handlers"
	"github.com/labstack/echo/v4"
)

type routes struct {
	pages   *handlers.Handlers
	auth    *handlers.AuthHandlers
	fruits  *handlers.FruitHandlers
	contact *handlers.ContactHandler
}

func setupRoutes(e *echo.Echo, r routes) {
	e.GET("/static/*", staticHandler())
	e.GET("/health", r.pages.Health)

	// Pages
	e.GET("/", r.pages.Home)
	e.GET("/all-fruits", r.pages.AllFruits)
	e.GET("/vegetables", r.pages.Vegetables)
	e.GET("/search", r.pages.Search)
	e.GET("/fruit/:id", r.pages.Fruit)
	e.GET("/login", r.pages.Login)
	e.GET("/signup", r.pages.Signup)
	e.GET("/forgot-password", r.pages.ForgotPassword)
	e.GET("/contact", r.pages.Contact)
	e.GET("/about", r.pages.About)

	admin := e.Group("/admin", RequireAuth(), RequireAdmin())
	admin.GET("", r.pages.Admin)
	admin.GET("/new", r.pages.AdminNew)
	admin.GET("/:id/edit", r.pages.AdminEdit)

	// Auth API
	a := e.Group("/auth")
	a.POST("/send-otp", r.auth.SendCode)
	a.PUT("/send-otp", r.auth.VerifyCode)
	a.POST("/register", r.auth.Register)
	a.POST("/login", r.auth.Login)
	a.POST("/logout", r.auth.Logout)
	a.POST("/reset-password", r.auth.ResetPassword)

	// Catalog API
	f := e.Group("/fruits")
	f.GET("", r.fruits.List)
	f.GET("/:id", r.fruits.Get)
	f.POST("/create-fruit", r.fruits.Create, RequireAdmin())
	f.POST("/upload-image", r.fruits.UploadImage, RequireAdmin())
	f.PUT("/update-image", r.fruits.UpdateImage, RequireAdmin())
	f.PUT("/:id", r.fruits.Update, RequireAdmin())
	f.DELETE("/:id", r.fruits.Delete, RequireAdmin())

	e.POST("/contact", r.contact.Submit)
}

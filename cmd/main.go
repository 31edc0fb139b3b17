package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"

	"github.com/s/coursehub/internal/auth"
	"github.com/s/coursehub/internal/catalog"
	"github.com/s/coursehub/internal/config"
	"github.com/s/coursehub/internal/database"
	"github.com/s/coursehub/internal/engine"
	"github.com/s/coursehub/internal/handlers"
	"github.com/s/coursehub/internal/logging"
	"github.com/s/coursehub/internal/lookup"
	"github.com/s/coursehub/internal/ports"
	"github.com/s/coursehub/internal/server"
	"github.com/s/coursehub/internal/storage"
)

func main() {
	// ---------------------------
	// 0. Конфигурация и логгер
	// ---------------------------
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	// ---------------------------
	// 1. Подключаем GORM (База данных)
	// ---------------------------
	db, err := database.Connect(cfg.Database, logging.Component(logger, "database"))
	if err != nil {
		log.Fatal("Ошибка подключения к БД:", err)
	}

	// ---------------------------
	// 2. Миграции и роли
	// ---------------------------
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("Ошибка миграции:", err)
	}
	if err := database.Seed(db); err != nil {
		logger.Warn("role seed failed", "error", err)
	}

	// ---------------------------
	// 3. Каталог, хранилище, сервис курсов
	// ---------------------------
	seed, err := catalog.LoadSeed(cfg.Seed.Path)
	if err != nil {
		log.Fatal("Ошибка загрузки каталога:", err)
	}

	store := storage.New(db, logging.Component(logger, "storage"))

	var instructors ports.InstructorLookup = store
	if cfg.Instructor.APIURL != "" {
		instructors = lookup.New(cfg.Instructor.APIURL, cfg.Instructor.Timeout, logging.Component(logger, "lookup"))
	}

	svc := engine.New(engine.Deps{
		Seed:         seed,
		Courses:      store,
		Lookup:       instructors,
		Assignments:  store,
		Reviews:      store,
		Enrollments:  store,
		Decisions:    store,
		Messages:     store,
		Logger:       logging.Component(logger, "engine"),
		FetchTimeout: cfg.Engine.FetchTimeout,
		CacheTTL:     cfg.Engine.CacheTTL,
	})

	// ---------------------------
	// 4. Google OAuth (необязательно)
	// ---------------------------
	var oauthConfig *oauth2.Config
	if cfg.OAuth.Enabled() {
		oauthConfig = auth.InitGoogleOAuthConfig(cfg.OAuth.ClientID, cfg.OAuth.ClientSecret, cfg.OAuth.RedirectURL)
	} else {
		logger.Warn("GOOGLE_* variables are not set, Google login is disabled")
	}

	// ---------------------------
	// 5. Настройка сессий
	// ---------------------------
	if cfg.Session.Key == config.DevSessionKey {
		logger.Warn("SESSION_KEY is not set, using the development key")
	}
	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Key))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
	}

	// ---------------------------
	// 6. Хендлеры и роутинг
	// ---------------------------
	h := handlers.NewHandler(svc, store, sessionStore, oauthConfig, auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), logging.Component(logger, "http"))
	h.MaxAge = cfg.Session.MaxAge

	router := server.NewRouter(h, logging.Component(logger, "access"))

	// ---------------------------
	// 7. Запуск сервера
	// ---------------------------
	logger.Info("server started", "addr", "http://localhost:"+cfg.Server.Port)
	if err := http.ListenAndServe(":"+cfg.Server.Port, router); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/domain"
	"foodgram/internal/logging"
	"foodgram/internal/seed"
)

func main() {
	ingredientsCSV := flag.String("ingredients", "", "CSV file with name,measurement_unit rows")
	adminEmail := flag.String("admin-email", os.Getenv("ADMIN_EMAIL"), "admin email (empty: skip admin)")
	adminUsername := flag.String("admin-username", "", "admin username (default: email local part)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}
	if _, err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		slog.Error("logging setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		slog.Error("DB connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	var ingredients []domain.Ingredient
	if *ingredientsCSV != "" {
		f, err := os.Open(*ingredientsCSV)
		if err != nil {
			slog.Error("open ingredients file failed", slog.Any("error", err))
			os.Exit(1)
		}
		ingredients, err = seed.ReadIngredientsCSV(f)
		_ = f.Close()
		if err != nil {
			slog.Error("read ingredients failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	res, err := seed.Run(context.Background(), db, seed.Options{
		Ingredients:   ingredients,
		AdminEmail:    *adminEmail,
		AdminUsername: *adminUsername,
		// пароль только из окружения, чтобы не светить его в истории shell
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	})
	if err != nil {
		slog.Error("seed failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("seed completed",
		slog.Int64("tags_created", res.Tags),
		slog.Int("ingredients_created", res.Ingredients),
		slog.Int64("admin_id", res.AdminID),
	)
}

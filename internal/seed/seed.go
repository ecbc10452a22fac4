// Package seed наполняет базу справочниками и администратором.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"foodgram/internal/domain"
	"foodgram/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DefaultTags = []domain.Tag{
	{Name: "Завтрак", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Обед", Color: "#49B64E", Slug: "lunch"},
	{Name: "Ужин", Color: "#8775D2", Slug: "dinner"},
}

var DefaultIngredients = []domain.Ingredient{
	{Name: "мука", MeasurementUnit: "г"},
	{Name: "сахар", MeasurementUnit: "г"},
	{Name: "соль", MeasurementUnit: "г"},
	{Name: "молоко", MeasurementUnit: "мл"},
	{Name: "яйца", MeasurementUnit: "шт."},
	{Name: "сливочное масло", MeasurementUnit: "г"},
}

type Options struct {
	// Ingredients заменяет DefaultIngredients, если не пуст.
	Ingredients   []domain.Ingredient
	AdminEmail    string
	AdminUsername string
	AdminPassword string
}

type Result struct {
	Tags        int64
	Ingredients int
	AdminID     int64
}

// Run идемпотентен: существующие теги (по slug), непустой справочник
// ингредиентов и существующий администратор (по email) не трогаются.
func Run(ctx context.Context, db *gorm.DB, opts Options) (Result, error) {
	var res Result

	tags := make([]domain.Tag, len(DefaultTags))
	copy(tags, DefaultTags)
	tx := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&tags)
	if tx.Error != nil {
		return res, fmt.Errorf("seed tags: %w", tx.Error)
	}
	res.Tags = tx.RowsAffected

	var existing int64
	if err := db.WithContext(ctx).Model(&domain.Ingredient{}).Count(&existing).Error; err != nil {
		return res, fmt.Errorf("count ingredients: %w", err)
	}
	if existing == 0 {
		items := opts.Ingredients
		if len(items) == 0 {
			items = make([]domain.Ingredient, len(DefaultIngredients))
			copy(items, DefaultIngredients)
		}
		if err := repository.NewIngredientRepository(db).CreateBatch(ctx, items); err != nil {
			return res, fmt.Errorf("seed ingredients: %w", err)
		}
		res.Ingredients = len(items)
	} else {
		slog.InfoContext(ctx, "ingredients already present, skipping", slog.Int64("count", existing))
	}

	if opts.AdminEmail == "" {
		return res, nil
	}
	id, err := ensureAdmin(ctx, repository.NewUserRepository(db), opts)
	if err != nil {
		return res, err
	}
	res.AdminID = id
	return res, nil
}

func ensureAdmin(ctx context.Context, users *repository.UserRepository, opts Options) (int64, error) {
	u, err := users.GetByEmail(ctx, opts.AdminEmail)
	if err == nil {
		return u.ID, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("lookup admin: %w", err)
	}
	if len(opts.AdminPassword) < 8 {
		return 0, errors.New("admin password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash admin password: %w", err)
	}
	username := opts.AdminUsername
	if username == "" {
		username, _, _ = strings.Cut(opts.AdminEmail, "@")
	}
	admin := &domain.User{
		Email:        opts.AdminEmail,
		Username:     username,
		FirstName:    "Admin",
		LastName:     "Foodgram",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		IsSuperuser:  true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return 0, fmt.Errorf("create admin: %w", err)
	}
	return admin.ID, nil
}

// ReadIngredientsCSV читает строки "название,единица". Пустые строки и
// строки без единицы измерения отклоняются.
func ReadIngredientsCSV(r io.Reader) ([]domain.Ingredient, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	var out []domain.Ingredient
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("ingredients csv: %w", err)
		}
		name, unit := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		if name == "" || unit == "" {
			return nil, fmt.Errorf("ingredients csv line %d: name and unit are required", line)
		}
		out = append(out, domain.Ingredient{Name: name, MeasurementUnit: unit})
	}
}

package services_test

import (
	"context"
	"fmt"
	"testing"

	"storefront/internal/database"
	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// openTestDB returns a private in-memory sqlite database with the schema applied.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *database.DB, email string) *models.User {
	t.Helper()
	user := &models.User{ID: uuid.New().String(), Name: "Test", Email: email, Role: models.RoleUser}
	require.NoError(t, db.Gorm.WithContext(context.Background()).Create(user).Error)
	return user
}

func seedProduct(t *testing.T, db *database.DB, name, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:    uuid.New().String(),
		Name:  name,
		Slug:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	require.NoError(t, db.Gorm.WithContext(context.Background()).Create(product).Error)
	return product
}

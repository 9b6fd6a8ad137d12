package repositories_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createProduct(t *testing.T, repo *repositories.GORMProductRepository, slug, p string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{Name: slug, Slug: slug, Price: price(p), Stock: stock}
	require.NoError(t, repo.Create(context.Background(), product))
	return product
}

func lineOf(p *models.Product, qty int) models.CartItem {
	return models.CartItem{ProductID: p.ID, Name: p.Name, Slug: p.Slug, Quantity: qty, Price: p.Price}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(openTestDB(t).Gorm)

	user := &models.User{Name: "Ann", Email: "ann@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)

	assert.Error(t, repo.Create(ctx, &models.User{Name: "Other", Email: "ann@example.com"}))

	found, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	address := models.ShippingAddress{FullName: "Ann Smith", StreetAddress: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}
	require.NoError(t, repo.UpdateName(ctx, user.ID, "casey"))
	require.NoError(t, repo.UpdateAddress(ctx, user.ID, address))
	require.NoError(t, repo.UpdatePaymentMethod(ctx, user.ID, models.PaymentMethodCard))
	// writing the same values again still finds the row
	require.NoError(t, repo.UpdatePaymentMethod(ctx, user.ID, models.PaymentMethodCard))

	found, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Address)
	assert.Equal(t, address, *found.Address)
	assert.Equal(t, models.PaymentMethodCard, found.PaymentMethod)
	assert.Equal(t, "hash", found.Password)

	assert.Equal(t, "casey", found.Name)
	assert.ErrorIs(t, repo.UpdateName(ctx, "missing", "x"), repositories.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateAddress(ctx, "missing", address), repositories.ErrNotFound)
	assert.ErrorIs(t, repo.UpdatePaymentMethod(ctx, "missing", models.PaymentMethodWallet), repositories.ErrNotFound)
}

func TestCartRepository_AddAndRemove(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	carts := repositories.NewGORMCartRepository(db.Gorm)
	products := repositories.NewGORMProductRepository(db.Gorm)
	shirt := createProduct(t, products, "shirt", "59.99", 10)
	hat := createProduct(t, products, "hat", "12.50", 10)
	owner := models.CartOwner{SessionCartID: "s1"}

	_, err := carts.FindByOwner(ctx, owner)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	cart, err := carts.AddItem(ctx, owner, lineOf(shirt, 1))
	require.NoError(t, err)
	require.NotNil(t, cart.SessionCartID)
	assert.Equal(t, "s1", *cart.SessionCartID)
	assert.Nil(t, cart.UserID)

	// a later price change does not touch the snapshot
	changed := lineOf(shirt, 2)
	changed.Price = price("99.99")
	cart, err = carts.AddItem(ctx, owner, changed)
	require.NoError(t, err)
	cart, err = carts.AddItem(ctx, owner, lineOf(hat, 1))
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, shirt.ID, cart.Items[0].ProductID)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].Price.Equal(price("59.99")))

	cart, err = carts.RemoveItem(ctx, owner, shirt.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	cart, err = carts.RemoveItem(ctx, owner, hat.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, shirt.ID, cart.Items[0].ProductID)

	_, err = carts.RemoveItem(ctx, owner, hat.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = carts.RemoveItem(ctx, models.CartOwner{SessionCartID: "other"}, shirt.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = carts.FindByOwner(ctx, models.CartOwner{})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCartRepository_FirstAddRacingAnotherCreate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	carts := repositories.NewGORMCartRepository(db.Gorm)
	shirt := createProduct(t, repositories.NewGORMProductRepository(db.Gorm), "shirt", "59.99", 10)

	// another request creates the same session cart just before this insert
	var once sync.Once
	err := db.Gorm.Callback().Create().Before("gorm:create").Register("test:rival_cart", func(tx *gorm.DB) {
		cart, ok := tx.Statement.Dest.(*models.Cart)
		if !ok || cart.SessionCartID == nil {
			return
		}
		once.Do(func() {
			now := time.Now()
			tx.AddError(tx.Session(&gorm.Session{NewDB: true}).
				Exec("INSERT INTO carts (id, session_cart_id, created_at, updated_at) VALUES (?, ?, ?, ?)", "rival", *cart.SessionCartID, now, now).Error)
		})
	})
	require.NoError(t, err)

	cart, err := carts.AddItem(ctx, models.CartOwner{SessionCartID: "s1"}, lineOf(shirt, 1))
	require.NoError(t, err)
	assert.Equal(t, "rival", cart.ID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	var count int64
	require.NoError(t, db.Gorm.Model(&models.Cart{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCartRepository_ReassignToUser(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	carts := repositories.NewGORMCartRepository(db.Gorm)
	shirt := createProduct(t, repositories.NewGORMProductRepository(db.Gorm), "shirt", "59.99", 10)
	users := repositories.NewGORMUserRepository(db.Gorm)
	user := &models.User{Name: "Ann", Email: "ann@example.com"}
	require.NoError(t, users.Create(ctx, user))

	cart, err := carts.AddItem(ctx, models.CartOwner{SessionCartID: "s1"}, lineOf(shirt, 2))
	require.NoError(t, err)

	assert.ErrorIs(t, carts.ReassignToUser(ctx, cart.ID, "missing"), repositories.ErrNotFound)
	assert.ErrorIs(t, carts.ReassignToUser(ctx, "missing", user.ID), repositories.ErrMergeConflict)

	require.NoError(t, carts.ReassignToUser(ctx, cart.ID, user.ID))
	// the cart belongs to the user now, so a second move conflicts
	assert.ErrorIs(t, carts.ReassignToUser(ctx, cart.ID, user.ID), repositories.ErrMergeConflict)

	moved, err := carts.FindByOwner(ctx, models.CartOwner{UserID: user.ID, SessionCartID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, cart.ID, moved.ID)
	assert.Nil(t, moved.SessionCartID)
	require.Len(t, moved.Items, 1)
	assert.Equal(t, 2, moved.Items[0].Quantity)
}

func placeOrder(t *testing.T, db *database.DB, userID string, lines ...models.CartItem) (*models.Order, string) {
	t.Helper()
	ctx := context.Background()
	carts := repositories.NewGORMCartRepository(db.Gorm)
	owner := models.CartOwner{UserID: userID}
	var cart *models.Cart
	for _, line := range lines {
		var err error
		cart, err = carts.AddItem(ctx, owner, line)
		require.NoError(t, err)
	}

	order := orderFromCart(userID, cart)
	require.NoError(t, repositories.NewGORMOrderRepository(db.Gorm).PlaceFromCart(ctx, order, cart.ID))
	return order, cart.ID
}

func orderFromCart(userID string, cart *models.Cart) *models.Order {
	prices := cart.Prices()
	order := &models.Order{
		UserID:        userID,
		PaymentMethod: models.PaymentMethodOnDelivery,
		ItemsPrice:    prices.ItemsPrice,
		ShippingPrice: prices.ShippingPrice,
		TaxPrice:      prices.TaxPrice,
		TotalPrice:    prices.TotalPrice,
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{ProductID: item.ProductID, Name: item.Name, Slug: item.Slug, Quantity: item.Quantity, Price: item.Price})
	}
	return order
}

func TestOrderRepository_PlaceFromCart(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	orders := repositories.NewGORMOrderRepository(db.Gorm)
	carts := repositories.NewGORMCartRepository(db.Gorm)
	products := repositories.NewGORMProductRepository(db.Gorm)
	shirt := createProduct(t, products, "shirt", "59.99", 10)
	hat := createProduct(t, products, "hat", "12.50", 10)

	order, cartID := placeOrder(t, db, "u1", lineOf(shirt, 2), lineOf(hat, 1))
	assert.NotEmpty(t, order.ID)

	stored, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, shirt.ID, stored.Items[0].ProductID)
	assert.True(t, stored.TotalPrice.Equal(price("152.35")))
	assert.False(t, stored.IsPaid)

	var left int64
	require.NoError(t, db.Gorm.Model(&models.CartItem{}).Where("cart_id = ?", cartID).Count(&left).Error)
	assert.Zero(t, left)

	err = orders.PlaceFromCart(ctx, &models.Order{UserID: "u1"}, cartID)
	assert.ErrorIs(t, err, repositories.ErrEmptyCart)

	cart, err := carts.AddItem(ctx, models.CartOwner{UserID: "u1"}, lineOf(shirt, 1))
	require.NoError(t, err)
	stale := orderFromCart("u1", cart)
	_, err = carts.AddItem(ctx, models.CartOwner{UserID: "u1"}, lineOf(hat, 1))
	require.NoError(t, err)
	assert.ErrorIs(t, orders.PlaceFromCart(ctx, stale, cart.ID), repositories.ErrCartChanged)

	_, err = orders.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestOrderRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	orders := repositories.NewGORMOrderRepository(db.Gorm)
	products := repositories.NewGORMProductRepository(db.Gorm)
	shirt := createProduct(t, products, "shirt", "59.99", 10)
	order, _ := placeOrder(t, db, "u1", lineOf(shirt, 3))

	_, err := orders.MarkDelivered(ctx, order.ID, time.Now())
	assert.ErrorIs(t, err, repositories.ErrNotPaid)

	receipt := models.PaymentResult{Provider: "PayOnDelivery", ID: order.ID, Status: "COLLECTED", PricePaid: "206.97"}
	paid, err := orders.MarkPaid(ctx, order.ID, receipt, time.Now())
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, models.OrderStatePaid, paid.State())

	_, err = orders.MarkPaid(ctx, order.ID, receipt, time.Now())
	assert.ErrorIs(t, err, repositories.ErrAlreadyPaid)

	stock, err := products.GetByID(ctx, shirt.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stock.Stock)

	delivered, err := orders.MarkDelivered(ctx, order.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStateDelivered, delivered.State())
	_, err = orders.MarkDelivered(ctx, order.ID, time.Now())
	assert.ErrorIs(t, err, repositories.ErrAlreadyDelivered)

	stored, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PaymentResult)
	assert.Equal(t, receipt, *stored.PaymentResult)
	assert.NotNil(t, stored.PaidAt)
	assert.NotNil(t, stored.DeliveredAt)

	_, err = orders.MarkPaid(ctx, "missing", receipt, time.Now())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = orders.MarkDelivered(ctx, "missing", time.Now())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestOrderRepository_Listing(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	orders := repositories.NewGORMOrderRepository(db.Gorm)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, userID := range []string{"u1", "u2", "u1"} {
		require.NoError(t, db.Gorm.Create(&models.Order{
			ID:            fmt.Sprintf("o%d", i+1),
			UserID:        userID,
			PaymentMethod: models.PaymentMethodCard,
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		}).Error)
	}

	mine, err := orders.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "o3", mine[0].ID)
	assert.Equal(t, "o1", mine[1].ID)

	latest, err := orders.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "o3", latest[0].ID)
	assert.Equal(t, "o2", latest[1].ID)

	all, err := orders.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestReportRepository_Overview(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := repositories.NewGORMUserRepository(db.Gorm)
	ann := &models.User{Name: "Ann", Email: "ann@example.com"}
	require.NoError(t, users.Create(ctx, ann))
	createProduct(t, repositories.NewGORMProductRepository(db.Gorm), "shirt", "59.99", 10)

	rows := []struct {
		id    string
		total string
		paid  bool
		at    time.Time
	}{
		{"o1", "78.99", true, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
		{"o2", "21.01", true, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)},
		{"o3", "50.00", false, time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)},
		{"o4", "10.00", true, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, r := range rows {
		require.NoError(t, db.Gorm.Create(&models.Order{
			ID:            r.id,
			UserID:        ann.ID,
			PaymentMethod: models.PaymentMethodCard,
			TotalPrice:    price(r.total),
			IsPaid:        r.paid,
			CreatedAt:     r.at,
		}).Error)
	}

	ov, err := repositories.NewSQLXReportRepository(db.SQLX).Overview(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), ov.OrdersCount)
	assert.Equal(t, int64(1), ov.ProductsCount)
	assert.Equal(t, int64(1), ov.UsersCount)
	assert.True(t, ov.TotalSales.Equal(price("110.00")), "total sales %s", ov.TotalSales)

	require.Len(t, ov.SalesData, 2)
	assert.Equal(t, "01/26", ov.SalesData[0].Month)
	assert.True(t, ov.SalesData[0].TotalSales.Equal(price("100.00")))
	assert.Equal(t, "03/26", ov.SalesData[1].Month)

	require.Len(t, ov.LatestSales, 2)
	assert.Equal(t, "o4", ov.LatestSales[0].OrderID)
	assert.Equal(t, "Ann", ov.LatestSales[0].UserName)
	assert.False(t, ov.LatestSales[1].IsPaid)
}

func TestReportRepository_EmptyStore(t *testing.T) {
	ov, err := repositories.NewSQLXReportRepository(openTestDB(t).SQLX).Overview(context.Background(), 6)
	require.NoError(t, err)
	assert.Zero(t, ov.OrdersCount)
	assert.True(t, ov.TotalSales.IsZero())
	assert.Empty(t, ov.SalesData)
	assert.NotNil(t, ov.LatestSales)
}

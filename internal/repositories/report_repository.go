package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlySales is the paid revenue of one calendar month, labelled MM/YY.
type MonthlySales struct {
	Month      string          `json:"month"`
	TotalSales decimal.Decimal `json:"totalSales"`
}

// LatestSale is a row of the latest orders list of the admin overview.
type LatestSale struct {
	OrderID    string          `json:"id" db:"id"`
	UserName   string          `json:"userName" db:"user_name"`
	TotalPrice decimal.Decimal `json:"totalPrice" db:"total_price"`
	IsPaid     bool            `json:"isPaid" db:"is_paid"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}

// Overview is the data behind the admin overview.
type Overview struct {
	OrdersCount   int64           `json:"ordersCount"`
	ProductsCount int64           `json:"productsCount"`
	UsersCount    int64           `json:"usersCount"`
	TotalSales    decimal.Decimal `json:"totalSales"`
	SalesData     []MonthlySales  `json:"salesData"`
	LatestSales   []LatestSale    `json:"latestSales"`
}

// ReportRepository reads aggregates for administrators. It never writes.
type ReportRepository interface {
	Overview(ctx context.Context, latest int) (*Overview, error)
}

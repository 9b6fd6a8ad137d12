package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// SQLXReportRepository runs the overview aggregates as plain SQL over the
// same connection pool GORM uses.
type SQLXReportRepository struct {
	db *sqlx.DB
}

// NewSQLXReportRepository creates a new instance of SQLXReportRepository.
func NewSQLXReportRepository(db *sqlx.DB) *SQLXReportRepository {
	return &SQLXReportRepository{
		db: db,
	}
}

type paidOrderRow struct {
	CreatedAt  time.Time       `db:"created_at"`
	TotalPrice decimal.Decimal `db:"total_price"`
}

// Overview counts orders, products and users, sums the revenue of paid
// orders, buckets it per month and lists the latest orders.
func (r *SQLXReportRepository) Overview(ctx context.Context, latest int) (*Overview, error) {
	var ov Overview

	counts := []struct {
		dest  *int64
		table string
	}{
		{&ov.OrdersCount, "orders"},
		{&ov.ProductsCount, "products"},
		{&ov.UsersCount, "users"},
	}
	for _, c := range counts {
		if err := r.db.GetContext(ctx, c.dest, "SELECT COUNT(*) FROM "+c.table); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}

	var paid []paidOrderRow
	q := r.db.Rebind("SELECT created_at, total_price FROM orders WHERE is_paid = ? ORDER BY created_at")
	if err := r.db.SelectContext(ctx, &paid, q, true); err != nil {
		return nil, fmt.Errorf("failed to read paid orders: %w", err)
	}
	ov.TotalSales, ov.SalesData = bucketByMonth(paid)

	if latest > 0 {
		q = r.db.Rebind(`SELECT o.id, u.name AS user_name, o.total_price, o.is_paid, o.created_at
			FROM orders o JOIN users u ON u.id = o.user_id
			ORDER BY o.created_at DESC LIMIT ?`)
		if err := r.db.SelectContext(ctx, &ov.LatestSales, q, latest); err != nil {
			return nil, fmt.Errorf("failed to read latest orders: %w", err)
		}
	}
	if ov.LatestSales == nil {
		ov.LatestSales = []LatestSale{}
	}
	return &ov, nil
}

func bucketByMonth(rows []paidOrderRow) (decimal.Decimal, []MonthlySales) {
	total := decimal.Zero
	months := make([]MonthlySales, 0)
	for _, row := range rows {
		total = total.Add(row.TotalPrice)
		label := row.CreatedAt.UTC().Format("01/06")
		if n := len(months); n > 0 && months[n-1].Month == label {
			months[n-1].TotalSales = months[n-1].TotalSales.Add(row.TotalPrice)
			continue
		}
		months = append(months, MonthlySales{Month: label, TotalSales: row.TotalPrice})
	}
	return total, months
}

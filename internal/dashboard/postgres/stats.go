package postgres

import (
	"context"

	"github.com/frahmantamala/inventory-management/internal/dashboard"
	"github.com/jmoiron/sqlx"
)

type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) dashboard.StatsRepositoryAPI {
	return &StatsRepository{db: db}
}

const totalsQuery = `
SELECT
	(SELECT COUNT(*) FROM products) AS products,
	(SELECT COUNT(*) FROM products WHERE is_available = TRUE) AS available_products,
	(SELECT COUNT(*) FROM users) AS users,
	(SELECT COUNT(*) FROM borrow_requests WHERE status = 'Pending') AS pending_requests`

func (r *StatsRepository) Totals(ctx context.Context) (dashboard.Totals, error) {
	var totals dashboard.Totals
	err := r.db.GetContext(ctx, &totals, totalsQuery)
	return totals, err
}

package memory

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/apperrors"
	"go-storefront/models"
)

// Orders is the in-memory order repository.
type Orders struct {
	s *Store
}

func (r *Orders) Create(_ context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.orders {
		if row.OrderID == order.OrderID {
			return apperrors.Conflict("order already exists")
		}
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	stored := *order
	stored.Products = append([]models.OrderItem(nil), order.Products...)
	r.s.orders = append(r.s.orders, &orderRow{seq: r.s.nextSeq(), Order: stored})
	return nil
}

func (r *Orders) findOne(match func(*orderRow) bool) (*models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, row := range r.s.orders {
		if match(row) {
			order := row.Order
			return &order, nil
		}
	}
	return nil, apperrors.NotFound("order not found")
}

func (r *Orders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	return r.findOne(func(row *orderRow) bool { return row.ID == id })
}

func (r *Orders) FindByTransactionID(_ context.Context, transactionID string) (*models.Order, error) {
	return r.findOne(func(row *orderRow) bool { return row.OrderID == transactionID })
}

func (r *Orders) list(keep func(*orderRow) bool) []models.Order {
	r.s.mu.RLock()
	var rows []orderRow
	for _, row := range r.s.orders {
		if keep(row) {
			cp := *row
			cp.Products = append([]models.OrderItem(nil), row.Products...)
			rows = append(rows, cp)
		}
	}
	r.s.mu.RUnlock()

	newestFirst(rows,
		func(o orderRow) time.Time { return o.CreatedAt },
		func(o orderRow) int64 { return o.seq },
	)
	out := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Order)
	}
	return out
}

func (r *Orders) ListByEmail(_ context.Context, email string) ([]models.Order, error) {
	return r.list(func(row *orderRow) bool { return row.Email == email }), nil
}

func (r *Orders) List(context.Context) ([]models.Order, error) {
	return r.list(func(*orderRow) bool { return true }), nil
}

func (r *Orders) UpdateStatus(_ context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.orders {
		if row.ID == id {
			row.Status = status
			row.UpdatedAt = r.s.now()
			order := row.Order
			return &order, nil
		}
	}
	return nil, apperrors.NotFound("order not found")
}

func (r *Orders) Delete(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, row := range r.s.orders {
		if row.ID == id {
			r.s.orders = append(r.s.orders[:i], r.s.orders[i+1:]...)
			order := row.Order
			return &order, nil
		}
	}
	return nil, apperrors.NotFound("order not found")
}

func (r *Orders) Count(context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.orders)), nil
}

func (r *Orders) SumAmount(_ context.Context, email string) (float64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total float64
	for _, row := range r.s.orders {
		if email == "" || row.Email == email {
			total += row.Amount
		}
	}
	return total, nil
}

func (r *Orders) DistinctProductIDs(_ context.Context, email string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, row := range r.s.orders {
		if row.Email != email {
			continue
		}
		for _, item := range row.Products {
			if _, ok := seen[item.ProductID]; ok {
				continue
			}
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}
	return ids, nil
}

func (r *Orders) MonthlyEarnings(context.Context) ([]models.MonthlyEarning, error) {
	r.s.mu.RLock()
	type key struct{ year, month int }
	buckets := make(map[key]float64)
	for _, row := range r.s.orders {
		t := row.CreatedAt.UTC()
		buckets[key{t.Year(), int(t.Month())}] += row.Amount
	}
	r.s.mu.RUnlock()

	out := make([]models.MonthlyEarning, 0, len(buckets))
	for k, total := range buckets {
		out = append(out, models.MonthlyEarning{Year: k.year, Month: k.month, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

package memory

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/apperrors"
	"go-storefront/models"
)

// Products is the in-memory product repository.
type Products struct {
	s *Store
}

func (r *Products) find(id primitive.ObjectID) *productRow {
	for _, row := range r.s.products {
		if row.ID == id {
			return row
		}
	}
	return nil
}

func (r *Products) Create(_ context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	r.s.products = append(r.s.products, &productRow{seq: r.s.nextSeq(), Product: *product})
	return nil
}

func (r *Products) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row := r.find(id)
	if row == nil {
		return nil, apperrors.NotFound("product not found")
	}
	product := row.Product
	return &product, nil
}

func matches(p *models.Product, f models.ProductFilter) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && f.MaxPrice != nil && (p.Price < *f.MinPrice || p.Price > *f.MaxPrice) {
		return false
	}
	return true
}

func (r *Products) List(_ context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	// Rows are copied under the lock; rating writes may land concurrently.
	r.s.mu.RLock()
	var rows []productRow
	for _, row := range r.s.products {
		if matches(&row.Product, f) {
			rows = append(rows, *row)
		}
	}
	r.s.mu.RUnlock()

	newestFirst(rows,
		func(p productRow) time.Time { return p.CreatedAt },
		func(p productRow) int64 { return p.seq },
	)

	total := int64(len(rows))
	start := f.Skip()
	if start > total {
		start = total
	}
	end := total
	if f.Limit > 0 && start+int64(f.Limit) < total {
		end = start + int64(f.Limit)
	}

	out := make([]models.Product, 0, end-start)
	for _, row := range rows[start:end] {
		out = append(out, row.Product)
	}
	return out, total, nil
}

func (r *Products) Related(_ context.Context, q models.RelatedQuery) ([]models.Product, error) {
	var nameRe *regexp.Regexp
	if q.NamePattern != "" {
		re, err := regexp.Compile("(?i)" + q.NamePattern)
		if err != nil {
			return nil, apperrors.Persistence("find related products", err)
		}
		nameRe = re
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Product, 0)
	for _, row := range r.s.products {
		if row.ID == q.ExcludeID {
			continue
		}
		if row.Category != q.Category && (nameRe == nil || !nameRe.MatchString(row.Name)) {
			continue
		}
		out = append(out, row.Product)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (r *Products) Update(_ context.Context, id primitive.ObjectID, upd models.ProductUpdate) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row := r.find(id)
	if row == nil {
		return nil, apperrors.NotFound("product not found")
	}
	if upd.Name != nil {
		row.Name = *upd.Name
	}
	if upd.Category != nil {
		row.Category = *upd.Category
	}
	if upd.Description != nil {
		row.Description = *upd.Description
	}
	if upd.OldPrice != nil {
		row.OldPrice = *upd.OldPrice
	}
	if upd.Price != nil {
		row.Price = *upd.Price
	}
	if upd.Image != nil {
		row.Image = *upd.Image
	}
	if upd.Color != nil {
		row.Color = *upd.Color
	}
	product := row.Product
	return &product, nil
}

func (r *Products) SetRating(_ context.Context, id primitive.ObjectID, rating float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row := r.find(id)
	if row == nil {
		return apperrors.NotFound("product not found")
	}
	row.Rating = rating
	return nil
}

func (r *Products) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, row := range r.s.products {
		if row.ID == id {
			r.s.products = append(r.s.products[:i], r.s.products[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("product not found")
}

func (r *Products) Count(context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.products)), nil
}

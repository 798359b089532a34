package memory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/apperrors"
	"go-storefront/models"
)

// Reviews is the in-memory review repository.
type Reviews struct {
	s *Store
}

func (r *Reviews) FindByProductAndUser(_ context.Context, productID, userID primitive.ObjectID) (*models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, row := range r.s.reviews {
		if row.ProductID == productID && row.UserID == userID {
			review := row.Review
			return &review, nil
		}
	}
	return nil, apperrors.NotFound("review not found")
}

func (r *Reviews) Create(_ context.Context, review *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.reviews {
		if row.ProductID == review.ProductID && row.UserID == review.UserID {
			return apperrors.Conflict("review already exists")
		}
	}
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	r.s.reviews = append(r.s.reviews, &reviewRow{seq: r.s.nextSeq(), Review: *review})
	return nil
}

func (r *Reviews) UpdateContent(_ context.Context, id primitive.ObjectID, comment string, rating float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.reviews {
		if row.ID == id {
			row.Comment = comment
			row.Rating = rating
			row.UpdatedAt = r.s.now()
			return nil
		}
	}
	return apperrors.NotFound("review not found")
}

// collect returns copies of the matching rows, taken under the read lock.
func (r *Reviews) collect(keep func(*reviewRow) bool) []reviewRow {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []reviewRow
	for _, row := range r.s.reviews {
		if keep(row) {
			rows = append(rows, *row)
		}
	}
	return rows
}

func toReviews(rows []reviewRow) []models.Review {
	out := make([]models.Review, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Review)
	}
	return out
}

func (r *Reviews) ListByProduct(_ context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	rows := r.collect(func(row *reviewRow) bool { return row.ProductID == productID })
	newestFirst(rows,
		func(row reviewRow) time.Time { return row.CreatedAt },
		func(row reviewRow) int64 { return row.seq },
	)
	// oldest first
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return toReviews(rows), nil
}

func (r *Reviews) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Review, error) {
	rows := r.collect(func(row *reviewRow) bool { return row.UserID == userID })
	newestFirst(rows,
		func(row reviewRow) time.Time { return row.CreatedAt },
		func(row reviewRow) int64 { return row.seq },
	)
	return toReviews(rows), nil
}

func (r *Reviews) DeleteByProduct(_ context.Context, productID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.reviews[:0]
	var deleted int64
	for _, row := range r.s.reviews {
		if row.ProductID == productID {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	r.s.reviews = kept
	return deleted, nil
}

func (r *Reviews) CountByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	return int64(len(r.collect(func(row *reviewRow) bool { return row.UserID == userID }))), nil
}

func (r *Reviews) Count(context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.reviews)), nil
}

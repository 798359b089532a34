package memory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/apperrors"
	"go-storefront/models"
)

// Users is the in-memory user repository.
type Users struct {
	s *Store
}

func (r *Users) find(id primitive.ObjectID) *userRow {
	for _, row := range r.s.users {
		if row.ID == id {
			return row
		}
	}
	return nil
}

func (r *Users) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.users {
		if row.Email == user.Email {
			return apperrors.Conflict("email is already registered")
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.s.users = append(r.s.users, &userRow{seq: r.s.nextSeq(), User: *user})
	return nil
}

func (r *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row := r.find(id)
	if row == nil {
		return nil, apperrors.NotFound("user not found")
	}
	user := row.User
	return &user, nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, row := range r.s.users {
		if row.Email == email {
			user := row.User
			return &user, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (r *Users) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if row := r.find(id); row != nil {
			user := row.User
			user.Password = ""
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *Users) List(_ context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	rows := make([]userRow, 0, len(r.s.users))
	for _, row := range r.s.users {
		rows = append(rows, *row)
	}
	r.s.mu.RUnlock()

	newestFirst(rows,
		func(u userRow) time.Time { return u.CreatedAt },
		func(u userRow) int64 { return u.seq },
	)
	out := make([]models.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.User{ID: row.ID, Email: row.Email, Role: row.Role})
	}
	return out, nil
}

func (r *Users) UpdateRole(_ context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row := r.find(id)
	if row == nil {
		return nil, apperrors.NotFound("user not found")
	}
	row.Role = role
	user := row.User
	return &user, nil
}

func (r *Users) UpdateProfile(_ context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row := r.find(id)
	if row == nil {
		return nil, apperrors.NotFound("user not found")
	}
	if upd.Username != nil {
		row.Username = *upd.Username
	}
	if upd.ProfileImg != nil {
		row.ProfileImg = *upd.ProfileImg
	}
	if upd.Bio != nil {
		row.Bio = *upd.Bio
	}
	if upd.Profession != nil {
		row.Profession = *upd.Profession
	}
	user := row.User
	return &user, nil
}

func (r *Users) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, row := range r.s.users {
		if row.ID == id {
			r.s.users = append(r.s.users[:i], r.s.users[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("user not found")
}

func (r *Users) Count(context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}

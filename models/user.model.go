package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a user in the system
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username   string             `bson:"username" json:"username"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password,omitempty" json:"-"`
	Role       string             `bson:"role" json:"role"`
	ProfileImg string             `bson:"profileImg,omitempty" json:"profileImg,omitempty"`
	Bio        string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Profession string             `bson:"profession,omitempty" json:"profession,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// UserSummary is the subset of a user embedded in product and review payloads.
type UserSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Username string             `bson:"username,omitempty" json:"username,omitempty"`
	Email    string             `bson:"email" json:"email"`
}

// Summary strips a user down to its public identity.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}

// ProfileUpdate carries the optional profile fields of a user. Nil fields are
// left untouched.
type ProfileUpdate struct {
	Username   *string `bson:"username,omitempty"`
	ProfileImg *string `bson:"profileImg,omitempty"`
	Bio        *string `bson:"bio,omitempty"`
	Profession *string `bson:"profession,omitempty"`
}

// Empty reports whether no field is set.
func (p ProfileUpdate) Empty() bool {
	return p.Username == nil && p.ProfileImg == nil && p.Bio == nil && p.Profession == nil
}

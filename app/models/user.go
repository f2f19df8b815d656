package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a marketplace account. Password holds the bcrypt hash and is
// never serialised.
type User struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name       string              `bson:"name"          json:"name"`
	Email      string              `bson:"email"         json:"email"`
	Password   string              `bson:"password"      json:"-"`
	ReferredBy *primitive.ObjectID `bson:"referredBy,omitempty" json:"referredBy,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt"     json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt"     json:"updatedAt"`
}

// ReferralCode derives the short share code from the id: its last 6 hex
// characters. Not stored; recomputed on every read.
func (u *User) ReferralCode() string {
	hex := u.ID.Hex()
	if len(hex) < 6 {
		return hex
	}
	return hex[len(hex)-6:]
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineItem is one (listing, quantity, unit price) entry embedded in an
// order. Price is the unit price captured at order time and never changes
// when the listing is later repriced.
type LineItem struct {
	Product primitive.ObjectID `bson:"product" json:"product"`
	Qty     int                `bson:"qty"     json:"qty"`
	Price   float64            `bson:"price"   json:"price"`
}

// Order is a purchase record. User is immutable after creation. TotalPrice
// is stored exactly as submitted; it is not recomputed from the line items.
type Order struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User       primitive.ObjectID `bson:"user"          json:"user"`
	Products   []LineItem         `bson:"products"      json:"products"`
	TotalPrice float64            `bson:"totalPrice"    json:"totalPrice"`
	IsPaid     bool               `bson:"isPaid"        json:"isPaid"`
	PaidAt     *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"     json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"     json:"updatedAt"`
}

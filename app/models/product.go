package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a vehicle listing in the catalogue. Category is free text at
// the storage level; the UI offers a closed set but the API does not
// enforce one. No owner field: any authenticated caller may mutate any
// listing.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name"          json:"name"`
	Category    string             `bson:"category"      json:"category"`
	Description string             `bson:"description"   json:"description"`
	Price       float64            `bson:"price"         json:"price"`
	Image       string             `bson:"image"         json:"image"`
	CreatedAt   time.Time          `bson:"createdAt"     json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"     json:"updatedAt"`
}

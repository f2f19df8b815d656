package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/motomart/app/models"
)

// ProductStore is the persistence surface ProductService needs.
type ProductStore interface {
	All(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type ProductService struct {
	products ProductStore
}

func NewProductService(products ProductStore) *ProductService {
	return &ProductService{products: products}
}

// List returns every listing. The catalog is small enough that the API does
// no server-side pagination.
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.products.All(ctx)
}

type ProductInput struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

// Create persists a new listing. Name, category, price and image are all
// mandatory; description defaults to empty.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (models.Product, error) {
	if in.Name == "" || in.Category == "" || in.Price == 0 || in.Image == "" {
		return models.Product{}, badRequest("Missing required fields")
	}
	product := models.Product{
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
	}
	if err := s.products.Create(ctx, &product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

// Update applies a partial merge: only the fields present in the body are
// touched, everything else keeps its stored value.
func (s *ProductService) Update(ctx context.Context, idHex string, fields map[string]interface{}) (models.Product, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return models.Product{}, badRequest("Invalid product ID")
	}

	set := bson.M{}
	for _, key := range []string{"name", "category", "description", "price", "image"} {
		if v, ok := fields[key]; ok {
			set[key] = v
		}
	}
	if len(set) > 0 {
		matched, err := s.products.Update(ctx, id, set)
		if err != nil {
			return models.Product{}, err
		}
		if !matched {
			return models.Product{}, notFound("Product not found")
		}
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Product{}, notFound("Product not found")
		}
		return models.Product{}, err
	}
	return product, nil
}

// Delete removes a listing.
func (s *ProductService) Delete(ctx context.Context, idHex string) error {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return badRequest("Invalid product ID")
	}
	deleted, err := s.products.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound("Product not found")
	}
	return nil
}

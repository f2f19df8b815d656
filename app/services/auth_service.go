package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/motomart/app/models"
	"github.com/shashiranjanraj/motomart/pkg/auth"
	"github.com/shashiranjanraj/motomart/pkg/middleware"
)

// UserStore is the persistence surface AuthService needs. *repositories
// .UserRepository satisfies it; tests use an in-memory fake.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountReferred(ctx context.Context, id primitive.ObjectID) (int64, error)
}

type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

type SignupInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Ref      string `json:"ref" validate:"nullable"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthPayload is the wire shape returned by both signup and login.
type AuthPayload struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Token         string `json:"token"`
	ReferralCode  string `json:"referralCode"`
	ReferralCount int64  `json:"referralCount"`
}

// Signup registers a new account. Ref, when present and a valid object id,
// is stored as the referrer; it is a weak reference and never checked
// against a live user.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (AuthPayload, error) {
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return AuthPayload{}, ErrEmailTaken
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return AuthPayload{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthPayload{}, err
	}

	user := models.User{Name: in.Name, Email: in.Email, Password: hash}
	if in.Ref != "" {
		if ref, err := primitive.ObjectIDFromHex(in.Ref); err == nil {
			user.ReferredBy = &ref
		}
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return AuthPayload{}, err
	}
	return s.payload(ctx, user)
}

// Login checks credentials and issues a fresh token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthPayload, error) {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return AuthPayload{}, ErrInvalidCredentials
		}
		return AuthPayload{}, err
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return AuthPayload{}, ErrInvalidCredentials
	}
	return s.payload(ctx, user)
}

func (s *AuthService) payload(ctx context.Context, user models.User) (AuthPayload, error) {
	token, err := auth.GenerateToken(user.ID.Hex())
	if err != nil {
		return AuthPayload{}, err
	}
	count, err := s.users.CountReferred(ctx, user.ID)
	if err != nil {
		return AuthPayload{}, err
	}
	return AuthPayload{
		ID:            user.ID.Hex(),
		Name:          user.Name,
		Email:         user.Email,
		Token:         token,
		ReferralCode:  user.ReferralCode(),
		ReferralCount: count,
	}, nil
}

type ProfileInput struct {
	Name  string `json:"name" validate:"nullable"`
	Email string `json:"email" validate:"nullable,email"`
}

// ProfilePayload is the wire shape returned by profile updates.
type ProfilePayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateProfile merges the non-empty fields into the caller's record.
func (s *AuthService) UpdateProfile(ctx context.Context, callerID string, in ProfileInput) (ProfilePayload, error) {
	id, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return ProfilePayload{}, notFound("User not found")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ProfilePayload{}, notFound("User not found")
		}
		return ProfilePayload{}, err
	}

	set := bson.M{}
	if in.Name != "" {
		user.Name = in.Name
		set["name"] = in.Name
	}
	if in.Email != "" {
		user.Email = in.Email
		set["email"] = in.Email
	}
	if len(set) > 0 {
		if err := s.users.Update(ctx, id, set); err != nil {
			return ProfilePayload{}, err
		}
	}
	return ProfilePayload{Name: user.Name, Email: user.Email}, nil
}

type PasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, callerID string, in PasswordInput) error {
	id, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return ErrWrongPassword
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrWrongPassword
		}
		return err
	}
	if !auth.CheckPassword(user.Password, in.CurrentPassword) {
		return ErrWrongPassword
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, id, bson.M{"password": hash})
}

// DeleteAccount removes the caller's user record. Orders referencing the
// user are left in place.
func (s *AuthService) DeleteAccount(ctx context.Context, callerID string) error {
	id, err := primitive.ObjectIDFromHex(callerID)
	if err != nil {
		return notFound("User not found")
	}
	return s.users.Delete(ctx, id)
}

// ResolveUser implements middleware.UserResolver for the auth gate.
func (s *AuthService) ResolveUser(ctx context.Context, id string) (middleware.Identity, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return middleware.Identity{}, err
	}
	user, err := s.users.FindByID(ctx, oid)
	if err != nil {
		return middleware.Identity{}, err
	}
	return middleware.Identity{ID: user.ID.Hex(), Name: user.Name, Email: user.Email}, nil
}

package client

import (
	"context"
	"io"
	"net/url"

	"github.com/dmitrijs2005/booknest/internal/client/models"
)

// AuthAPI is the part of the backend the session controller talks to. Every
// method names its credential explicitly.
type AuthAPI interface {
	SignIn(ctx context.Context, email, password string) (models.SignInResponse, error)
	SignUp(ctx context.Context, req models.SignupRequest) (models.AccountSummary, error)
	GetProfile(ctx context.Context, credential string) (models.UserProfile, error)
	UpdateProfile(ctx context.Context, credential string, upd models.ProfileUpdate) (models.UserProfile, error)
}

// StorefrontAPI covers the business endpoints. These calls carry whatever
// session is current and are subject to expiry handling.
type StorefrontAPI interface {
	ListBooks(ctx context.Context, query url.Values) ([]models.Book, error)
	GetBook(ctx context.Context, id int64) (models.Book, error)
	CreateBook(ctx context.Context, in models.BookInput) (models.Book, error)
	UpdateBook(ctx context.Context, id int64, in models.BookInput) (models.Book, error)
	DeleteBook(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]models.Category, error)

	GetCart(ctx context.Context) (models.Cart, error)
	AddToCart(ctx context.Context, bookID int64) (models.Cart, error)
	RemoveFromCart(ctx context.Context, bookID int64) (models.Cart, error)

	ListOrders(ctx context.Context) ([]models.Order, error)
	CreateOrder(ctx context.Context, in models.OrderInput) (models.Order, error)
	GetOrder(ctx context.Context, id int64) (models.Order, error)

	ListReviews(ctx context.Context, bookID int64) ([]models.Review, error)
	CreateReview(ctx context.Context, bookID int64, in models.ReviewInput) (models.Review, error)

	Upload(ctx context.Context, filename string, r io.Reader, kind models.UploadKind) (string, error)
}

// Client is the full backend surface.
type Client interface {
	AuthAPI
	StorefrontAPI
}

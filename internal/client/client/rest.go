package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/booknest/internal/client/models"
)

// RESTClient implements Client on top of a Gateway.
type RESTClient struct {
	gw *Gateway
}

func NewRESTClient(gw *Gateway) *RESTClient {
	return &RESTClient{gw: gw}
}

func (c *RESTClient) SignIn(ctx context.Context, email, password string) (models.SignInResponse, error) {
	var resp models.SignInResponse
	req := models.SignInRequest{Email: email, Password: password}
	if err := c.gw.Do(ctx, http.MethodPost, "/users/signin", req, &resp, WithoutCredential()); err != nil {
		return models.SignInResponse{}, err
	}
	return resp, nil
}

func (c *RESTClient) SignUp(ctx context.Context, req models.SignupRequest) (models.AccountSummary, error) {
	var resp models.AccountSummary
	if err := c.gw.Do(ctx, http.MethodPost, "/users/signup", req, &resp, WithoutCredential()); err != nil {
		return models.AccountSummary{}, err
	}
	return resp, nil
}

func (c *RESTClient) GetProfile(ctx context.Context, credential string) (models.UserProfile, error) {
	var p models.UserProfile
	if err := c.gw.Do(ctx, http.MethodGet, "/users/profile", nil, &p, WithCredential(credential)); err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}

func (c *RESTClient) UpdateProfile(ctx context.Context, credential string, upd models.ProfileUpdate) (models.UserProfile, error) {
	var p models.UserProfile
	if err := c.gw.Do(ctx, http.MethodPut, "/users/profile", upd, &p, WithCredential(credential)); err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}

func (c *RESTClient) ListBooks(ctx context.Context, query url.Values) ([]models.Book, error) {
	var books []models.Book
	if err := c.gw.Do(ctx, http.MethodGet, "/books", nil, &books, WithQuery(query)); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *RESTClient) GetBook(ctx context.Context, id int64) (models.Book, error) {
	var b models.Book
	err := c.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/books/%d", id), nil, &b)
	return b, err
}

func (c *RESTClient) CreateBook(ctx context.Context, in models.BookInput) (models.Book, error) {
	var b models.Book
	err := c.gw.Do(ctx, http.MethodPost, "/books", in, &b)
	return b, err
}

func (c *RESTClient) UpdateBook(ctx context.Context, id int64, in models.BookInput) (models.Book, error) {
	var b models.Book
	err := c.gw.Do(ctx, http.MethodPut, fmt.Sprintf("/books/%d", id), in, &b)
	return b, err
}

func (c *RESTClient) DeleteBook(ctx context.Context, id int64) error {
	return c.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/books/%d", id), nil, nil)
}

func (c *RESTClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := c.gw.Do(ctx, http.MethodGet, "/categories", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (c *RESTClient) GetCart(ctx context.Context) (models.Cart, error) {
	var cart models.Cart
	err := c.gw.Do(ctx, http.MethodGet, "/cart", nil, &cart)
	return cart, err
}

func (c *RESTClient) AddToCart(ctx context.Context, bookID int64) (models.Cart, error) {
	var cart models.Cart
	body := map[string]int64{"bookId": bookID}
	err := c.gw.Do(ctx, http.MethodPost, "/cart/books", body, &cart)
	return cart, err
}

func (c *RESTClient) RemoveFromCart(ctx context.Context, bookID int64) (models.Cart, error) {
	var cart models.Cart
	err := c.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/cart/books/%d", bookID), nil, &cart)
	return cart, err
}

func (c *RESTClient) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.gw.Do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *RESTClient) CreateOrder(ctx context.Context, in models.OrderInput) (models.Order, error) {
	var o models.Order
	err := c.gw.Do(ctx, http.MethodPost, "/orders", in, &o)
	return o, err
}

func (c *RESTClient) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	var o models.Order
	err := c.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, &o)
	return o, err
}

func (c *RESTClient) ListReviews(ctx context.Context, bookID int64) ([]models.Review, error) {
	var reviews []models.Review
	if err := c.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/books/%d/reviews", bookID), nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (c *RESTClient) CreateReview(ctx context.Context, bookID int64, in models.ReviewInput) (models.Review, error) {
	var r models.Review
	err := c.gw.Do(ctx, http.MethodPost, fmt.Sprintf("/books/%d/reviews", bookID), in, &r)
	return r, err
}

// Upload posts r as a multipart "file" field and returns the stored path.
func (c *RESTClient) Upload(ctx context.Context, filename string, r io.Reader, kind models.UploadKind) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if err := mw.WriteField("type", string(kind)); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var resp struct {
		FilePath string `json:"filePath"`
	}
	if err := c.gw.Do(ctx, http.MethodPost, "/upload", nil, &resp, WithRawBody(&buf, mw.FormDataContentType())); err != nil {
		return "", err
	}
	return resp.FilePath, nil
}

package cli

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/dmitrijs2005/booknest/internal/client/client"
	"github.com/dmitrijs2005/booknest/internal/client/models"
	"github.com/dmitrijs2005/booknest/internal/client/services"
)

// fakeSession implements Session.
type fakeSession struct {
	snap services.Snapshot

	loginEmail, loginPass string
	loginErr              error

	signupReq models.SignupRequest
	signupErr error

	logouts int

	update    models.ProfileUpdate
	updated   models.UserProfile
	updateErr error
}

func (f *fakeSession) Current() services.Snapshot { return f.snap }

func (f *fakeSession) Login(_ context.Context, email, password string) (models.Session, error) {
	f.loginEmail, f.loginPass = email, password
	if f.loginErr != nil {
		return models.Session{}, f.loginErr
	}
	sess := models.Session{Credential: "jwt", Profile: models.UserProfile{Email: email, Role: models.RoleUser}}
	f.snap = services.Snapshot{State: services.StateAuthenticated, Session: sess}
	return sess, nil
}

func (f *fakeSession) Signup(_ context.Context, req models.SignupRequest) (models.Session, error) {
	f.signupReq = req
	if f.signupErr != nil {
		return models.Session{}, f.signupErr
	}
	sess := models.Session{Credential: "jwt", Profile: models.UserProfile{
		FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, Role: req.UserRole,
	}}
	f.snap = services.Snapshot{State: services.StateAuthenticated, Session: sess}
	return sess, nil
}

func (f *fakeSession) Logout(context.Context) {
	f.logouts++
	f.snap = services.Snapshot{State: services.StateAnonymous}
}

func (f *fakeSession) UpdateProfile(_ context.Context, upd models.ProfileUpdate) (models.UserProfile, error) {
	f.update = upd
	return f.updated, f.updateErr
}

func signedIn(role models.Role) *fakeSession {
	return &fakeSession{snap: services.Snapshot{
		State: services.StateAuthenticated,
		Session: models.Session{Credential: "opaque", Profile: models.UserProfile{
			FirstName: "Ann", LastName: "Leeson", Email: "ann@example.com", Role: role, Address: "1 Main st",
		}},
	}}
}

func guest() *fakeSession {
	return &fakeSession{snap: services.Snapshot{State: services.StateAnonymous}}
}

// fakeStore implements client.StorefrontAPI and records the calls it saw.
type fakeStore struct {
	calls []string

	books   []models.Book
	cart    models.Cart
	orders  []models.Order
	reviews []models.Review
	err     error

	query       url.Values
	bookInput   models.BookInput
	reviewInput models.ReviewInput
	orderInput  models.OrderInput
	uploadName  string
	uploadBody  string
	uploadKind  models.UploadKind
}

func (f *fakeStore) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeStore) ListBooks(_ context.Context, q url.Values) ([]models.Book, error) {
	f.record("ListBooks")
	f.query = q
	return f.books, f.err
}

func (f *fakeStore) GetBook(_ context.Context, id int64) (models.Book, error) {
	f.record("GetBook")
	return models.Book{ID: id, Title: "Dune", Author: "Frank Herbert", Price: 9.5}, f.err
}

func (f *fakeStore) CreateBook(_ context.Context, in models.BookInput) (models.Book, error) {
	f.record("CreateBook")
	f.bookInput = in
	return models.Book{ID: 42, Title: in.Title}, f.err
}

func (f *fakeStore) UpdateBook(_ context.Context, id int64, in models.BookInput) (models.Book, error) {
	f.record("UpdateBook")
	return models.Book{ID: id, Title: in.Title}, f.err
}

func (f *fakeStore) DeleteBook(context.Context, int64) error {
	f.record("DeleteBook")
	return f.err
}

func (f *fakeStore) ListCategories(context.Context) ([]models.Category, error) {
	f.record("ListCategories")
	return []models.Category{{ID: 1, Name: "Fiction"}}, f.err
}

func (f *fakeStore) GetCart(context.Context) (models.Cart, error) {
	f.record("GetCart")
	return f.cart, f.err
}

func (f *fakeStore) AddToCart(_ context.Context, id int64) (models.Cart, error) {
	f.record("AddToCart")
	f.cart.Books = append(f.cart.Books, models.Book{ID: id, Title: "Dune", Price: 9.5})
	return f.cart, f.err
}

func (f *fakeStore) RemoveFromCart(context.Context, int64) (models.Cart, error) {
	f.record("RemoveFromCart")
	return models.Cart{}, f.err
}

func (f *fakeStore) ListOrders(context.Context) ([]models.Order, error) {
	f.record("ListOrders")
	return f.orders, f.err
}

func (f *fakeStore) CreateOrder(_ context.Context, in models.OrderInput) (models.Order, error) {
	f.record("CreateOrder")
	f.orderInput = in
	return models.Order{ID: 5, Status: models.OrderPending}, f.err
}

func (f *fakeStore) GetOrder(_ context.Context, id int64) (models.Order, error) {
	f.record("GetOrder")
	return models.Order{ID: id, Status: models.OrderShipped, TotalAmount: 19}, f.err
}

func (f *fakeStore) ListReviews(context.Context, int64) ([]models.Review, error) {
	f.record("ListReviews")
	return f.reviews, f.err
}

func (f *fakeStore) CreateReview(_ context.Context, _ int64, in models.ReviewInput) (models.Review, error) {
	f.record("CreateReview")
	f.reviewInput = in
	return models.Review{Rating: in.Rating}, f.err
}

func (f *fakeStore) Upload(_ context.Context, name string, r io.Reader, kind models.UploadKind) (string, error) {
	f.record("Upload")
	b, _ := io.ReadAll(r)
	f.uploadName, f.uploadBody, f.uploadKind = name, string(b), kind
	return "/uploads/" + name, f.err
}

var _ client.StorefrontAPI = (*fakeStore)(nil)

// newTestApp builds an App reading answers from input, one per line.
func newTestApp(s Session, api client.StorefrontAPI, input ...string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	a := NewApp(s, api, WithInput(strings.NewReader(strings.Join(input, "\n")+"\n")), WithOutput(&out))
	return a, &out
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

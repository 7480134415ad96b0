package models

// Category groups books in the catalogue.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Book is a catalogue entry offered by a seller.
type Book struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	ImagePath   string    `json:"imagePath,omitempty"`
	FilePath    string    `json:"filePath,omitempty"`
	Approved    bool      `json:"approved"`
	Available   bool      `json:"available"`
	CategoryID  int64     `json:"categoryId,omitempty"`
	SellerID    int64     `json:"sellerId,omitempty"`
	Category    *Category `json:"category,omitempty"`
	CreatedAt   string    `json:"createdAt,omitempty"`
	UpdatedAt   string    `json:"updatedAt,omitempty"`
}

// BookInput is the payload for creating or updating a book.
type BookInput struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImagePath   string  `json:"imagePath,omitempty"`
	FilePath    string  `json:"filePath,omitempty"`
	CategoryID  int64   `json:"categoryId,omitempty"`
	Available   bool    `json:"available"`
}

// CartItem is one line of the cart.
type CartItem struct {
	BookID   int64   `json:"bookId"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Cart is the signed-in user's basket.
type Cart struct {
	ID    int64      `json:"id,omitempty"`
	Books []Book     `json:"books,omitempty"`
	Items []CartItem `json:"items,omitempty"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Order is a placed order.
type Order struct {
	ID              int64       `json:"id"`
	Items           []CartItem  `json:"items,omitempty"`
	Books           []Book      `json:"books,omitempty"`
	TotalAmount     float64     `json:"totalAmount"`
	Status          OrderStatus `json:"status"`
	ShippingAddress string      `json:"shippingAddress,omitempty"`
	OrderDate       string      `json:"orderDate,omitempty"`
}

// OrderInput is the payload for placing an order.
type OrderInput struct {
	BookIDs         []int64 `json:"bookIds,omitempty"`
	ShippingAddress string  `json:"shippingAddress"`
}

// Review is a rating left on a book.
type Review struct {
	ID         int64  `json:"id"`
	BookID     int64  `json:"bookId"`
	UserID     int64  `json:"userId,omitempty"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
	ReviewDate string `json:"reviewDate,omitempty"`
}

// ReviewInput is the payload for posting a review.
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// UploadKind tells the backend where to store an uploaded file.
type UploadKind string

const (
	UploadImage    UploadKind = "image"
	UploadDocument UploadKind = "document"
)

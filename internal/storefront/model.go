package storefront

import (
	"time"
)

const (
	EventsQueue = "storefront.events"

	EventFavouriteAdded   = "favourite_added"
	EventFavouriteRemoved = "favourite_removed"
	EventReviewCreated    = "review_created"
	EventProductCreated   = "product_created"
	EventProductUpdated   = "product_updated"
	EventProductDeleted   = "product_deleted"
)

type Product struct {
	ID      int64  `json:"id" example:"1"`
	Title   string `json:"title" example:"Soap"`
	Details string `json:"details,omitempty" example:"Lavender, 100g"`
}

// FavouriteMark is a user-scoped relation to a product. It is joined to
// products by ProductID and never merged into Product.
type FavouriteMark struct {
	ID        string `json:"id"`
	ProductID int64  `json:"productId"`
	UserID    string `json:"userId"`
}

type Review struct {
	ID        string `json:"id"`
	ProductID int64  `json:"productId"`
	Rating    int    `json:"rating"`
	Review    string `json:"review"`
	UserID    string `json:"userId"`
}

// ProductView is the request-scoped aggregate of one product and its social
// context for the current user. It is built once per request and not mutated.
type ProductView struct {
	Product     Product  `json:"product"`
	Reviews     []Review `json:"reviews"`
	InFavourite bool     `json:"inFavourite"`
}

type ReviewPayload struct {
	Rating int    `json:"rating" form:"rating" example:"5"`
	Review string `json:"review" form:"review" example:"Smells great"`
}

type ProductPayload struct {
	Title   string `json:"title" form:"title" example:"Soap"`
	Details string `json:"details" form:"details" example:"Lavender, 100g"`
}

// Principal is the authenticated caller of an inbound request.
type Principal struct {
	Subject string
	Token   string
}

// Credential is a bearer token scoped to one downstream registration.
type Credential struct {
	Token        string
	ExpiresAt    time.Time
	Principal    string
	Registration string
}

// Valid reports whether the credential can still be attached at now. A zero
// ExpiresAt means the issuer did not bound the lifetime.
func (c Credential) Valid(now time.Time) bool {
	if c.Token == "" {
		return false
	}
	return c.ExpiresAt.IsZero() || now.Before(c.ExpiresAt)
}

type Event struct {
	EventType string    `json:"event_type"`
	ProductID int64     `json:"product_id"`
	Subject   string    `json:"subject,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

package domain

import "time"

// Item is a marketplace listing. Once Sold flips to true the item is
// terminal: it can no longer be purchased or deleted.
type Item struct {
	ID               string    `json:"_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Price            float64   `json:"price"`
	SellerID         string    `json:"sellerId"`
	Sold             bool      `json:"sold"`
	BoughtBy         string    `json:"boughtBy,omitempty"`
	ImageData        []byte    `json:"-"`
	ImageContentType string    `json:"-"`
	HasImage         bool      `json:"hasImage"`
	CreatedAt        time.Time `json:"createdAt"`
}

// PurchaseRecord is the denormalized snapshot appended to the buyer's
// purchase history at sale time. It is never updated when the item
// changes later.
type PurchaseRecord struct {
	ItemID      string    `json:"itemId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	PurchasedAt time.Time `json:"purchasedAt"`
}

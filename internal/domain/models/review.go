package models

import "time"

// Review отзыв покупателя о товаре
type Review struct {
	ID         int64     `json:"id"`
	ConsumerID int64     `json:"consumerId"`
	ProductID  int64     `json:"productId"`
	Content    string    `json:"content"`
	Rating     float64   `json:"rating"`
	ImageURL   *string   `json:"reviewImageUrl"`
	IsDeleted  bool      `json:"isDeleted"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

package models

import "time"

// Payment запись об оплате одной строки корзины. После создания не изменяется
type Payment struct {
	ID           int64     `json:"id"`
	OrderNumber  string    `json:"orderNumber"`
	ConsumerID   int64     `json:"consumerId"`
	SellerID     int64     `json:"sellerId"`
	ProductID    int64     `json:"productId"`
	ProductTitle string    `json:"productTitle"`
	Price        int64     `json:"price"`
	Amount       int64     `json:"amount"`
	TotalPrice   int64     `json:"totalPrice"`
	PaidAt       time.Time `json:"paidAt"`
}

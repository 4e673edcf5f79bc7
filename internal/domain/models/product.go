package models

import "time"

// Product представляет товар, Amount хранит остаток на складе
type Product struct {
	ID           int64
	SellerID     int64
	Title        string
	Price        int64
	Amount       int64
	MainImageURL string
	ClosingAt    *time.Time
}

// ProductImage дополнительное изображение товара
type ProductImage struct {
	ID        int64
	ProductID int64
	ImageURL  string
}

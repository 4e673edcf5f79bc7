package models

// CartLine строка корзины покупателя. Product заполняется через JOIN с таблицей products
type CartLine struct {
	ID         int64
	ConsumerID int64
	ProductID  int64
	Amount     int64 // запрошенное количество
	IsDeleted  bool
	Product    *Product
}

// TotalPrice стоимость строки: количество × цена товара
func (c *CartLine) TotalPrice() int64 {
	if c.Product == nil {
		return 0
	}
	return c.Amount * c.Product.Price
}

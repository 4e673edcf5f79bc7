package models

import "time"

// Scrap элемент списка желаний; Product заполняется через JOIN
type Scrap struct {
	ID         int64
	ConsumerID int64
	ProductID  int64
	CreatedAt  time.Time
	Product    *Product
}

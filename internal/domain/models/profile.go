package models

// Profile представляет учетную запись; баланс pay-money хранится здесь
type Profile struct {
	ID       int64
	Email    string
	Nickname string
	PassHash []byte
	PayMoney int64
}

// Consumer покупатель, привязанный к профилю
type Consumer struct {
	ID        int64
	ProfileID int64
}

// Seller продавец, привязанный к профилю
type Seller struct {
	ID          int64
	ProfileID   int64
	CompanyName string
}

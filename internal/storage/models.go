package storage

type Aggregate struct {
	ID          int64
	Kind        string
	OwnerID     int64
	Label       string
	AmountUnits int64
}

type Transaction struct {
	ID          int64
	Kind        string
	OwnerID     int64
	AmountCents int64
	TxnDate     string
	Description string
	Label       string
	CreatedAt   int64
}

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    int64
}

type UserPreference struct {
	UserID   int64
	Currency string
}

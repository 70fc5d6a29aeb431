package models

// ClientType represents the commercial category of a customer
type ClientType string

const (
	ClientTypeVIP        ClientType = "VIP"
	ClientTypeRegular    ClientType = "REGULAR"
	ClientTypeOccasional ClientType = "OCCASIONAL"
)

// User represents a customer of the agency. The balance is only ever
// adjusted by the reservation policy.
type User struct {
	ID         int64      `json:"id" db:"id"`
	FirstName  string     `json:"first_name" db:"first_name"`
	LastName   string     `json:"last_name" db:"last_name"`
	Email      string     `json:"email" db:"email"`
	Phone      string     `json:"phone" db:"phone"`
	ClientType ClientType `json:"client_type" db:"client_type"`
	Balance    float64    `json:"balance" db:"balance"`
	TripCount  int        `json:"trip_count" db:"trip_count"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User
func NewUser(firstName, lastName, email, phone string, clientType ClientType) *User {
	return &User{
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Phone:      phone,
		ClientType: clientType,
	}
}

// CanPay reports whether the account balance covers the given amount
func (u *User) CanPay(amount float64) bool {
	return u.Balance >= amount
}

// IsLoyal reports whether the customer qualifies for loyalty treatment
func (u *User) IsLoyal() bool {
	return u.TripCount > 10 || u.ClientType == ClientTypeVIP
}

// FullName returns the customer's display name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password" json:"-"`
	Token        string    `bson:"token" json:"-"`
	Role         Role      `bson:"role" json:"role"`
	CartID       string    `bson:"cart_id,omitempty" json:"cart_id,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

func (u *User) HasCart() bool {
	return u.CartID != ""
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

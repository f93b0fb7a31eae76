package entity

import "time"

type User struct {
	ID           int       `json:"id"`
	FullName     string    `json:"fullname"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	Address      string    `json:"address,omitempty"`
	RoleName     string    `json:"role_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

func (u *User) IsAdmin() bool {
	return u != nil && u.RoleName == RoleAdmin
}

/*
Mysql Schema:
CREATE TABLE users (
	id INT AUTO_INCREMENT PRIMARY KEY,
	fullname VARCHAR(100) NOT NULL,
	email VARCHAR(100) NOT NULL,
	phone_number VARCHAR(20) NOT NULL UNIQUE,
	address VARCHAR(255) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	role_name VARCHAR(20) NOT NULL DEFAULT 'customer',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
*/

package entity

import "time"

// User es un usuario administrador de la aplicación.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt
	CreatedAt    time.Time
}

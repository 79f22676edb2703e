package entity

import "time"

// User operador, administrador o auditor de la flota. Vive en la colección users y se
// sincroniza como cualquier otra.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Nombre       string    `json:"nombre"`
	Rol          string    `json:"rol"` // admin, operador, auditor
	PasswordHash string    `json:"password_hash,omitempty"`
	Activo       bool      `json:"activo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

package entity

import "time"

// User is an employee account. The engine only reads users; account CRUD is
// handled elsewhere.
type User struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Department   string    `json:"department,omitempty"`
	ManagerID    string    `json:"manager_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

package auth

import "time"

type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	TempPassword bool      `json:"tempPassword"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type HireResult struct {
	Account      Account `json:"account"`
	TempPassword string  `json:"tempPassword"`
}

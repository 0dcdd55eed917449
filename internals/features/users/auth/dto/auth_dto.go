package dto

import (
	"notesku_backend/internals/features/users/session"
	"notesku_backend/internals/gateway"
)

// Field kosong tidak divalidasi di sini: Guard yang menolak dengan pesan yang sama seperti UI.
type SignUpRequest struct {
	Email    string `json:"email" form:"email" validate:"max=254"`
	Password string `json:"password" form:"password" validate:"max=72"`
	Confirm  string `json:"confirm" form:"confirm" validate:"max=72"`
}

type SignInRequest struct {
	Email    string `json:"email" form:"email" validate:"max=254"`
	Password string `json:"password" form:"password" validate:"max=72"`
}

type SessionResponse struct {
	User        *gateway.Identity   `json:"user"`
	Affordances session.Affordances `json:"affordances"`
}

package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const OwnersCollection = "owners"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity é a conta autenticada cujo namespace isola clientes, companhias e vendas
type Identity struct {
	OwnerID string `json:"ownerId"`
	Email   string `json:"email"`
}

// IdentityEvent é publicado pelo provedor de identidade a cada login/logout.
// Identity nula significa que o dono OwnerID saiu.
type IdentityEvent struct {
	OwnerID  string
	Identity *Identity
}

type AuthSession struct {
	Identity  Identity  `json:"identity"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Claims struct {
	OwnerID string `json:"owner_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{OwnerID: c.OwnerID, Email: c.Email}
}

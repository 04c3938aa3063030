package customer

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Erros de validação do cliente
var (
	ErrEmptyName    = errors.New("nome do cliente não pode ser vazio")
	ErrEmptyPhone   = errors.New("telefone do cliente não pode ser vazio")
	ErrInvalidEmail = errors.New("email inválido")
)

// Customer representa um cliente da joalheria.
// Os pontos de fidelidade são movimentados pelo subsistema de fidelidade.
type Customer struct {
	ID            string    `json:"id"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	LoyaltyPoints int       `json:"loyalty_points"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewCustomer cria um novo cliente
func NewCustomer(fullName, phone, email, address string) (*Customer, error) {
	if fullName == "" {
		return nil, ErrEmptyName
	}
	if phone == "" {
		return nil, ErrEmptyPhone
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	now := time.Now()
	return &Customer{
		ID:        uuid.New().String(),
		FullName:  fullName,
		Phone:     phone,
		Email:     email,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update atualiza os dados cadastrais do cliente
func (c *Customer) Update(fullName, phone, email, address string) error {
	if fullName == "" {
		return ErrEmptyName
	}
	if phone == "" {
		return ErrEmptyPhone
	}
	if email != "" && !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}

	c.FullName = fullName
	c.Phone = phone
	c.Email = email
	c.Address = address
	c.UpdatedAt = time.Now()

	return nil
}

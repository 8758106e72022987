package entity

import "time"

// Client representa un cliente (persona física o jurídica) de la empresa.
type Client struct {
	ID        string
	Name      string
	RNC       string // RNC (9 dígitos) o cédula (11 dígitos)
	Address   string
	Phone     string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClientSnapshot copia de los datos del cliente al momento de emitir un comprobante.
// Queda desactualizada a propósito cuando el cliente cambia; la propagación es un proceso
// aparte y de mejor esfuerzo.
type ClientSnapshot struct {
	Name    string
	RNC     string
	Address string
	Phone   string
	Email   string
}

// Snapshot devuelve la copia desnormalizada del cliente.
func (c *Client) Snapshot() ClientSnapshot {
	return ClientSnapshot{
		Name:    c.Name,
		RNC:     c.RNC,
		Address: c.Address,
		Phone:   c.Phone,
		Email:   c.Email,
	}
}

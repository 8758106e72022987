package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/ttacon/libphonenumber"

	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-RD-api/pkg/dgii"
)

// ClientUseCase registro de clientes. Al editar un cliente, la copia guardada en sus facturas se
// actualiza después del commit como mejor esfuerzo.
type ClientUseCase struct {
	clients  repository.ClientRepository
	invoices repository.InvoiceRepository
	log      zerolog.Logger
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(clients repository.ClientRepository, invoices repository.InvoiceRepository, log zerolog.Logger) *ClientUseCase {
	return &ClientUseCase{clients: clients, invoices: invoices, log: log}
}

// Create crea un nuevo cliente.
func (uc *ClientUseCase) Create(ctx context.Context, in dto.ClientRequest) (*dto.ClientResponse, error) {
	c, err := normalizeClient(in)
	if err != nil {
		return nil, err
	}
	if c.RNC != "" {
		existing, err := uc.clients.GetByRNC(ctx, c.RNC)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: ya existe un cliente con RNC %s", domain.ErrDuplicate, c.RNC)
		}
	}
	now := time.Now()
	c.ID = uuid.New().String()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := uc.clients.Create(ctx, c); err != nil {
		return nil, err
	}
	res := ToClientResponse(c)
	return &res, nil
}

// Get devuelve un cliente.
func (uc *ClientUseCase) Get(ctx context.Context, id string) (*dto.ClientResponse, error) {
	c, err := uc.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("cliente", id)
	}
	res := ToClientResponse(c)
	return &res, nil
}

// List lista clientes por nombre, con búsqueda opcional.
func (uc *ClientUseCase) List(ctx context.Context, search string, page dto.PageRequest) ([]dto.ClientResponse, error) {
	page.DefaultPage()
	list, err := uc.clients.List(ctx, strings.TrimSpace(search), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClientResponse, 0, len(list))
	for _, c := range list {
		out = append(out, ToClientResponse(c))
	}
	return out, nil
}

// Update edita el cliente y propaga la copia a sus facturas. Un fallo de propagación se registra
// y no revierte la edición.
func (uc *ClientUseCase) Update(ctx context.Context, id string, in dto.ClientRequest) (*dto.ClientResponse, error) {
	cur, err := uc.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, domain.NotFound("cliente", id)
	}
	c, err := normalizeClient(in)
	if err != nil {
		return nil, err
	}
	if c.RNC != "" && c.RNC != cur.RNC {
		existing, err := uc.clients.GetByRNC(ctx, c.RNC)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, fmt.Errorf("%w: ya existe un cliente con RNC %s", domain.ErrDuplicate, c.RNC)
		}
	}
	c.ID = cur.ID
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = time.Now()
	if err := uc.clients.Update(ctx, c); err != nil {
		return nil, err
	}

	if c.Snapshot() != cur.Snapshot() {
		n, err := uc.invoices.UpdateClientSnapshot(ctx, c.ID, c.Snapshot())
		if err != nil {
			uc.log.Error().Err(err).Str("client_id", c.ID).Msg("no se pudo propagar el cliente a sus facturas")
		} else {
			uc.log.Info().Str("client_id", c.ID).Int64("invoices", n).Msg("cliente propagado a facturas")
		}
	}
	res := ToClientResponse(c)
	return &res, nil
}

// normalizeClient valida RNC/cédula y teléfono y los deja en forma canónica.
func normalizeClient(in dto.ClientRequest) (*entity.Client, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "requerido")
	}
	c := &entity.Client{
		Name:    name,
		Address: strings.TrimSpace(in.Address),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
	}
	if rnc := strings.TrimSpace(in.RNC); rnc != "" {
		if err := dgii.ValidateTaxID(rnc); err != nil {
			return nil, domain.Invalid("rnc", "%s", err.Error())
		}
		c.RNC = dgii.NormalizeTaxID(rnc)
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		num, err := libphonenumber.Parse(phone, "DO")
		if err != nil || !libphonenumber.IsValidNumber(num) {
			return nil, domain.Invalid("phone", "teléfono %q no válido", phone)
		}
		c.Phone = libphonenumber.Format(num, libphonenumber.E164)
	}
	return c, nil
}

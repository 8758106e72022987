// Package fiscal asigna números de comprobante fiscal (NCF) y la numeración interna de facturas.
package fiscal

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/domain"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-RD-api/pkg/dgii"
)

// InvoiceNumberCode contador reservado para el consecutivo interno de facturas.
const InvoiceNumberCode = "FAC"

// Allocator asignador de secuencias. Allocate y NextInvoiceNumber se llaman dentro de la unidad de
// trabajo del comprobante: si esta se revierte, el número también.
type Allocator struct {
	uow   unitofwork.Runner
	repos repository.Repositories
	log   zerolog.Logger
	now   func() time.Time
}

// NewAllocator construye el asignador.
func NewAllocator(uow unitofwork.Runner, repos repository.Repositories, log zerolog.Logger) *Allocator {
	return &Allocator{uow: uow, repos: repos, log: log, now: time.Now}
}

// Allocate incrementa atómicamente el contador del tipo y devuelve el número y el NCF formateado.
func (a *Allocator) Allocate(ctx context.Context, repos repository.Repositories, ncfType string) (int64, string, error) {
	ncfType = strings.ToUpper(ncfType)
	if !dgii.ValidNCFType(ncfType) {
		return 0, "", domain.Invalid("ncf_type", "tipo de NCF desconocido %q", ncfType)
	}
	cur, err := repos.Sequences.Get(ctx, ncfType)
	if err != nil {
		return 0, "", fmt.Errorf("leer secuencia %s: %w", ncfType, err)
	}
	if cur != nil && cur.ExpiresAt != nil && a.now().After(*cur.ExpiresAt) {
		return 0, "", fmt.Errorf("secuencia %s vencida el %s: %w", ncfType, cur.ExpiresAt.Format("2006-01-02"), domain.ErrNCFExpired)
	}

	seq, err := repos.Sequences.Next(ctx, ncfType)
	if err != nil {
		return 0, "", fmt.Errorf("incrementar secuencia %s: %w", ncfType, err)
	}
	limit := dgii.MaxSequence
	if seq.RangeEnd > 0 && seq.RangeEnd < limit {
		limit = seq.RangeEnd
	}
	if seq.Current > limit {
		return 0, "", fmt.Errorf("secuencia %s: número %d fuera del rango autorizado (%d): %w",
			ncfType, seq.Current, limit, domain.ErrNCFRangeExhausted)
	}
	ncf, err := dgii.FormatNCF(ncfType, seq.Current)
	if err != nil {
		return 0, "", err
	}
	return seq.Current, ncf, nil
}

// NextInvoiceNumber consecutivo interno legible: FAC-00000001.
func (a *Allocator) NextInvoiceNumber(ctx context.Context, repos repository.Repositories) (string, error) {
	seq, err := repos.Sequences.Next(ctx, InvoiceNumberCode)
	if err != nil {
		return "", fmt.Errorf("incrementar consecutivo de facturas: %w", err)
	}
	return fmt.Sprintf("%s-%08d", InvoiceNumberCode, seq.Current), nil
}

// SetSequence fija el último número usado de un tipo. Rechaza valores por debajo del mayor NCF ya
// emitido para no reasignar comprobantes.
func (a *Allocator) SetSequence(ctx context.Context, ncfType string, in dto.SetSequenceRequest) (*dto.SequenceResponse, error) {
	ncfType = strings.ToUpper(ncfType)
	if !dgii.ValidNCFType(ncfType) {
		return nil, domain.Invalid("type", "tipo de NCF desconocido %q", ncfType)
	}
	if in.Value < 0 || in.Value > dgii.MaxSequence {
		return nil, domain.Invalid("value", "fuera de rango")
	}
	if in.RangeEnd > 0 && in.RangeEnd < in.Value {
		return nil, domain.Invalid("range_end", "el fin de rango (%d) es menor que el valor (%d)", in.RangeEnd, in.Value)
	}
	var expires *time.Time
	if in.ExpiresAt != "" {
		t, err := time.Parse("2006-01-02", in.ExpiresAt)
		if err != nil {
			return nil, domain.Invalid("expires_at", "fecha inválida, use YYYY-MM-DD")
		}
		// vigente hasta el final del día
		end := t.Add(24*time.Hour - time.Nanosecond)
		expires = &end
	}

	seq := &entity.NCFSequence{Type: ncfType, Current: in.Value, RangeEnd: in.RangeEnd, ExpiresAt: expires}
	err := a.uow.Run(ctx, "fijar_secuencia_ncf", func(ctx context.Context, repos repository.Repositories) error {
		issued, err := maxIssued(ctx, repos, ncfType)
		if err != nil {
			return err
		}
		if in.Value < issued {
			return &domain.NCFCollisionError{Type: ncfType, Requested: in.Value, MaxIssued: issued}
		}
		seq.UpdatedAt = a.now()
		return repos.Sequences.Save(ctx, seq)
	})
	if err != nil {
		return nil, err
	}
	a.log.Info().Str("ncf_type", ncfType).Int64("value", in.Value).Int64("range_end", in.RangeEnd).Msg("secuencia NCF actualizada")
	res := toSequenceResponse(seq)
	return &res, nil
}

// Resync alinea el contador con el mayor número emitido del tipo.
func (a *Allocator) Resync(ctx context.Context, ncfType string) (*dto.SequenceResponse, error) {
	ncfType = strings.ToUpper(ncfType)
	if !dgii.ValidNCFType(ncfType) {
		return nil, domain.Invalid("type", "tipo de NCF desconocido %q", ncfType)
	}
	var seq *entity.NCFSequence
	err := a.uow.Run(ctx, "resincronizar_secuencia_ncf", func(ctx context.Context, repos repository.Repositories) error {
		maxN, err := maxIssued(ctx, repos, ncfType)
		if err != nil {
			return err
		}
		cur, err := repos.Sequences.Get(ctx, ncfType)
		if err != nil {
			return err
		}
		if cur == nil {
			cur = &entity.NCFSequence{Type: ncfType}
		}
		if cur.Current != maxN {
			a.log.Warn().Str("ncf_type", ncfType).Int64("from", cur.Current).Int64("to", maxN).Msg("resincronizando secuencia NCF")
		}
		cur.Current = maxN
		cur.UpdatedAt = a.now()
		seq = cur
		return repos.Sequences.Save(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	res := toSequenceResponse(seq)
	return &res, nil
}

// List contadores del catálogo; los tipos sin contador aparecen en cero.
func (a *Allocator) List(ctx context.Context) ([]dto.SequenceResponse, error) {
	stored, err := a.repos.Sequences.List(ctx)
	if err != nil {
		return nil, err
	}
	byType := make(map[string]*entity.NCFSequence, len(stored))
	for _, s := range stored {
		byType[s.Type] = s
	}
	types := make([]string, 0, len(dgii.NCFTypes))
	for t := range dgii.NCFTypes {
		types = append(types, t)
	}
	sort.Strings(types)

	out := make([]dto.SequenceResponse, 0, len(types))
	for _, t := range types {
		s, ok := byType[t]
		if !ok {
			s = &entity.NCFSequence{Type: t}
		}
		out = append(out, toSequenceResponse(s))
	}
	return out, nil
}

// maxIssued mayor número emitido: notas de crédito para B04, facturas para el resto.
func maxIssued(ctx context.Context, repos repository.Repositories, ncfType string) (int64, error) {
	if ncfType == dgii.NCFNotaCredito {
		return repos.CreditNotes.MaxNCFNumber(ctx, ncfType)
	}
	return repos.Invoices.MaxNCFNumber(ctx, ncfType)
}

func toSequenceResponse(s *entity.NCFSequence) dto.SequenceResponse {
	res := dto.SequenceResponse{
		Type:        s.Type,
		Description: dgii.NCFTypes[s.Type],
		Current:     s.Current,
		RangeEnd:    s.RangeEnd,
		ExpiresAt:   s.ExpiresAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if next, err := dgii.FormatNCF(s.Type, s.Current+1); err == nil && (s.RangeEnd == 0 || s.Current < s.RangeEnd) {
		res.NextNCF = next
	}
	if s.RangeEnd > 0 {
		remaining := s.RangeEnd - s.Current
		if remaining < 0 {
			remaining = 0
		}
		res.Remaining = &remaining
	}
	return res
}

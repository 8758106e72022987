// seed_ncf carga los rangos de NCF autorizados por la DGII en los contadores de secuencia.
//
// Uso: go run ./cmd/seed_ncf [ruta/rangos.csv]
// Por defecto busca rangos_ncf.csv en el directorio actual. Columnas:
//
//	tipo,ultimo_usado,fin_rango,vencimiento
//	B01,0,500,2027-12-31
//
// El archivo exportado desde la Oficina Virtual suele venir en ISO-8859-1; se convierte a UTF-8
// cuando no es UTF-8 válido.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Gestion-RD-api/internal/application/dto"
	"github.com/jhoicas/Gestion-RD-api/internal/application/fiscal"
	"github.com/jhoicas/Gestion-RD-api/internal/application/unitofwork"
	"github.com/jhoicas/Gestion-RD-api/internal/infrastructure/storage"
	"github.com/jhoicas/Gestion-RD-api/pkg/config"
	"github.com/jhoicas/Gestion-RD-api/pkg/logger"
)

type rangeRow struct {
	line int
	typ  string
	req  dto.SetSequenceRequest
}

func main() {
	path := "rangos_ncf.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	rows, err := parseRanges(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, AppName: "seed_ncf"})

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log.Component(cfg.DB.Driver))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}

	boundary := unitofwork.NewBoundary(backend.Executor, log.Component("unitofwork"))
	allocator := fiscal.NewAllocator(boundary, backend.Repos, log.Component("ncf"))

	failed := 0
	for _, r := range rows {
		seq, err := allocator.SetSequence(ctx, r.typ, r.req)
		if err != nil {
			failed++
			log.Error().Err(err).Int("line", r.line).Str("ncf_type", r.typ).Msg("rango rechazado")
			continue
		}
		fmt.Printf("%s  último=%d  fin=%d  próximo=%s\n", seq.Type, seq.Current, seq.RangeEnd, seq.NextNCF)
	}
	fmt.Printf("%d rangos procesados, %d rechazados\n", len(rows), failed)

	if err := backend.Close(ctx); err != nil {
		log.Error().Err(err).Msg("cerrar almacenamiento")
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// parseRanges lee el CSV; la primera fila se toma como encabezado si su primera columna no es un tipo.
func parseRanges(raw []byte) ([]rangeRow, error) {
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comment = '#'

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	var out []rangeRow
	for i, rec := range records {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		typ := strings.ToUpper(strings.TrimSpace(rec[0]))
		if i == 0 && !strings.HasPrefix(typ, "B") {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("línea %d: se esperan al menos tipo y último usado", i+1)
		}
		row := rangeRow{line: i + 1, typ: typ}
		if row.req.Value, err = strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64); err != nil {
			return nil, fmt.Errorf("línea %d: último usado: %w", i+1, err)
		}
		if len(rec) > 2 && strings.TrimSpace(rec[2]) != "" {
			if row.req.RangeEnd, err = strconv.ParseInt(strings.TrimSpace(rec[2]), 10, 64); err != nil {
				return nil, fmt.Errorf("línea %d: fin de rango: %w", i+1, err)
			}
		}
		if len(rec) > 3 {
			row.req.ExpiresAt = strings.TrimSpace(rec[3])
		}
		out = append(out, row)
	}
	return out, nil
}

package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// EnsureSchema crea stock e historial_bajas si no existen y agrega las columnas que falten.
// Todas las sentencias son idempotentes; se ejecutan en orden de archivo dentro de una tx.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin schema: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, name := range files {
		body, err := migrationsFS.ReadFile(name)
		if err != nil {
			return err
		}
		for _, stmt := range splitStatements(string(body)) {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		log.Debug().Str("file", name).Msg("migración aplicada")
	}
	if err := ensureLotIdentityIndex(ctx, tx, log); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

const lotIdentityIndex = "ux_stock_lot_identity"

const lotIdentityExpr = `TRIM(COALESCE("CODIGO", '')),
	TRIM(COALESCE("ARTICULO", '')),
	TRIM(COALESCE("DEPOSITO", '')),
	TRIM(COALESCE("LOTE", '')),
	TRIM(COALESCE("VENCIMIENTO", ''))`

// ensureLotIdentityIndex crea el índice único por identidad de lote (valores recortados),
// que impide que dos movimientos concurrentes inserten la misma fila destino.
// Si la tabla heredada ya trae identidades repetidas no se crea: se registra un warning
// con la cantidad de grupos y el arranque sigue. Las filas repetidas hay que unificarlas
// a mano; el próximo arranque crea el índice.
func ensureLotIdentityIndex(ctx context.Context, q Querier, log zerolog.Logger) error {
	var exists bool
	if err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = $1)`, lotIdentityIndex,
	).Scan(&exists); err != nil {
		return fmt.Errorf("buscar %s: %w", lotIdentityIndex, err)
	}
	if exists {
		return nil
	}

	var groups int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM (
	SELECT 1 FROM stock GROUP BY `+lotIdentityExpr+`
	HAVING COUNT(*) > 1
) d`).Scan(&groups); err != nil {
		return fmt.Errorf("contar lotes duplicados: %w", err)
	}
	if groups > 0 {
		log.Warn().
			Int64("duplicate_groups", groups).
			Str("index", lotIdentityIndex).
			Msg("stock tiene lotes repetidos; no se crea el índice único hasta unificarlos")
		return nil
	}

	if _, err := q.Exec(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS `+lotIdentityIndex+` ON stock (
	`+lotIdentityExpr+`
)`); err != nil {
		return fmt.Errorf("crear %s: %w", lotIdentityIndex, err)
	}
	log.Info().Str("index", lotIdentityIndex).Msg("índice único de lotes creado")
	return nil
}

// splitStatements separa por ';' al final de línea y descarta comentarios "--" de línea completa.
func splitStatements(sql string) []string {
	var (
		out []string
		cur strings.Builder
	)
	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			if stmt := strings.TrimSpace(cur.String()); stmt != ";" {
				out = append(out, strings.TrimSuffix(stmt, ";"))
			}
			cur.Reset()
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}

package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
)

// ============================================================
// SQLite Repository
// ============================================================

var ErrNotFound = errors.New("piece not found")

//go:embed migrations/*.sql
var migrations embed.FS

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init применяет встроенные миграции по порядку имён.
func (r *Repository) Init(ctx context.Context) error {
	if err := r.runMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// Ping нужен для readiness-пробы.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Create(ctx context.Context, p *models.StoredPiece) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO pieces (id, name, markup, viewbox_w, viewbox_h, shapes)
        VALUES (?, ?, ?, ?, ?, ?)
    `, p.ID, p.Name, p.Markup, p.ViewBoxW, p.ViewBoxH, p.Shapes)
	if err != nil {
		return fmt.Errorf("insert piece: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `SELECT created_at FROM pieces WHERE id = ?`, p.ID)
	if err := row.Scan(&p.CreatedAt); err != nil {
		return fmt.Errorf("read created_at: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.StoredPiece, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, markup, viewbox_w, viewbox_h, shapes, created_at
        FROM pieces
        WHERE id = ?
    `, id)

	var p models.StoredPiece
	if err := row.Scan(&p.ID, &p.Name, &p.Markup, &p.ViewBoxW, &p.ViewBoxH, &p.Shapes, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &p, nil
}

// List возвращает метаданные без разметки, новые первыми.
func (r *Repository) List(ctx context.Context) ([]models.StoredPiece, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, viewbox_w, viewbox_h, shapes, created_at
        FROM pieces
        ORDER BY created_at DESC, rowid DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.StoredPiece{}
	for rows.Next() {
		var p models.StoredPiece
		if err := rows.Scan(&p.ID, &p.Name, &p.ViewBoxW, &p.ViewBoxH, &p.Shapes, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pieces WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete piece: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ============================================================
// Migrations
// ============================================================

func (r *Repository) runMigrations(ctx context.Context) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := migrations.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"jetgrind/internal/domain"
)

const sqliteTimeLayout = time.RFC3339Nano

// SQLiteRepository stores items and their links in relational tables. It
// implements both the whole-list and the id-addressed contracts.
type SQLiteRepository struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// NewSQLiteRepository wraps an open database that already has the schema.
func NewSQLiteRepository(db *sql.DB, logger logrus.FieldLogger) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db, log: logger.WithField("component", "repository")}, nil
}

// OpenSQLite opens the database at path and applies migrations.
func OpenSQLite(path string, logger logrus.FieldLogger) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps PRAGMA settings and serializes writers.
	db.SetMaxOpenConns(1)
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.WithField("path", path).Info("SQLite opened successfully")
	return repo, nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// LoadAll returns every item in stored order.
func (r *SQLiteRepository) LoadAll(ctx context.Context) ([]domain.Item, error) {
	return r.ListItems(ctx, ItemListFilter{})
}

// SaveAll replaces the stored list with items.
func (r *SQLiteRepository) SaveAll(ctx context.Context, items []domain.Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM todo_links`); err != nil {
		return fmt.Errorf("clear links: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM todo_items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	for i, item := range items {
		if err := insertItem(ctx, tx, item, i); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.WithField("item_count", len(items)).Debug("Items saved")
	return nil
}

// CreateItem inserts item ahead of every stored item.
func (r *SQLiteRepository) CreateItem(ctx context.Context, item domain.Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var front int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MIN(position), 0) - 1 FROM todo_items`).Scan(&front); err != nil {
		return fmt.Errorf("next position: %w", err)
	}
	if err := insertItem(ctx, tx, item, front); err != nil {
		return err
	}
	return tx.Commit()
}

// GetItem returns the item with id.
func (r *SQLiteRepository) GetItem(ctx context.Context, id uuid.UUID) (domain.Item, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, is_completed, created_at
		FROM todo_items WHERE id = ?`, id.String())
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Item{}, ErrNotFound
		}
		return domain.Item{}, err
	}
	links, err := r.linksFor(ctx, []string{id.String()})
	if err != nil {
		return domain.Item{}, err
	}
	item.Links = orEmpty(links[id.String()])
	return item, nil
}

// UpdateItem rewrites the item's fields and link table in place.
func (r *SQLiteRepository) UpdateItem(ctx context.Context, item domain.Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE todo_items SET title = ?, description = ?, is_completed = ?
		WHERE id = ?`,
		item.Title, item.Description, item.IsCompleted, item.ID.String(),
	)
	if err != nil {
		return err
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM todo_links WHERE item_id = ?`, item.ID.String()); err != nil {
		return fmt.Errorf("clear links: %w", err)
	}
	if err := insertLinks(ctx, tx, item); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteItem removes the item and its links.
func (r *SQLiteRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todo_items WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// ListItems returns items in stored order, most recent first.
func (r *SQLiteRepository) ListItems(ctx context.Context, filter ItemListFilter) ([]domain.Item, error) {
	query := `SELECT id, title, description, is_completed, created_at FROM todo_items`
	args := make([]any, 0, 3)
	if filter.Completed != nil {
		query += ` WHERE is_completed = ?`
		args = append(args, *filter.Completed)
	}
	query += ` ORDER BY position ASC, created_at DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Item, 0)
	ids := make([]string, 0)
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
		ids = append(ids, item.ID.String())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	links, err := r.linksFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Links = orEmpty(links[out[i].ID.String()])
	}
	return out, nil
}

func (r *SQLiteRepository) linksFor(ctx context.Context, itemIDs []string) (map[string][]domain.Link, error) {
	out := make(map[string][]domain.Link, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(itemIDs)), ",")
	args := make([]any, len(itemIDs))
	for i, id := range itemIDs {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT item_id, id, url, display_title, favicon_data, is_title_fetched
		FROM todo_links WHERE item_id IN (`+placeholders+`)
		ORDER BY item_id, position`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			itemID, id string
			link       domain.Link
			favicon    []byte
		)
		if err := rows.Scan(&itemID, &id, &link.URL, &link.DisplayTitle, &favicon, &link.IsTitleFetched); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse link id %q: %w", id, err)
		}
		link.ID = parsed
		if len(favicon) > 0 {
			link.FaviconData = favicon
		}
		out[itemID] = append(out[itemID], link)
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertItem(ctx context.Context, tx execer, item domain.Item, position int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO todo_items (id, position, title, description, is_completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID.String(), position, item.Title, item.Description, item.IsCompleted, mustTime(item.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert item %s: %w", item.ID, err)
	}
	return insertLinks(ctx, tx, item)
}

func insertLinks(ctx context.Context, tx execer, item domain.Item) error {
	for i, link := range item.Links {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO todo_links (item_id, position, id, url, display_title, favicon_data, is_title_fetched)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.ID.String(), i, link.ID.String(), link.URL, link.DisplayTitle, link.FaviconData, link.IsTitleFetched,
		)
		if err != nil {
			return fmt.Errorf("insert link %s: %w", link.ID, err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (domain.Item, error) {
	var (
		item    domain.Item
		id      string
		created string
	)
	if err := s.Scan(&id, &item.Title, &item.Description, &item.IsCompleted, &created); err != nil {
		return domain.Item{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Item{}, fmt.Errorf("parse item id %q: %w", id, err)
	}
	item.ID = parsed
	item.CreatedAt, err = time.Parse(sqliteTimeLayout, created)
	if err != nil {
		return domain.Item{}, fmt.Errorf("parse created_at: %w", err)
	}
	return item, nil
}

func mustTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(sqliteTimeLayout)
}

func orEmpty(links []domain.Link) []domain.Link {
	if links == nil {
		return []domain.Link{}
	}
	return links
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func applyPagination(args *[]any, limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	*args = append(*args, limit)
	if offset > 0 {
		*args = append(*args, offset)
		return ` LIMIT ? OFFSET ?`
	}
	return ` LIMIT ?`
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                              // Local SQLite driver

	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
	"github.com/wadjakorntonsri/deeplinker/pkg/ports"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}
	if driverName == "sqlite" {
		// one writer at a time keeps click transactions from hitting SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func migrate(db *sql.DB) error {
	// timestamps are unix nanoseconds so both drivers round-trip them the same way
	statements := []string{
		`CREATE TABLE IF NOT EXISTS links (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			slug TEXT NOT NULL UNIQUE,
			url TEXT NOT NULL,
			tag TEXT NOT NULL DEFAULT 'others',
			clicks INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS clicks (
			id TEXT PRIMARY KEY,
			link_id INTEGER NOT NULL,
			clicked_at INTEGER NOT NULL,
			country TEXT NOT NULL DEFAULT 'Unknown',
			region TEXT NOT NULL DEFAULT 'Unknown',
			city TEXT NOT NULL DEFAULT 'Unknown',
			ip TEXT NOT NULL DEFAULT 'Unknown',
			company TEXT NOT NULL DEFAULT 'Unknown',
			FOREIGN KEY(link_id) REFERENCES links(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_clicks_link_id ON clicks(link_id, clicked_at)`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			last_login_at INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Create(ctx context.Context, link *domain.Link) error {
	query := `INSERT INTO links (slug, url, tag, clicks, created_at) VALUES (?, ?, ?, 0, ?)`

	res, err := r.db.ExecContext(ctx, query, link.Slug, link.URL, string(link.Tag), toNanos(link.CreatedAt))
	if err != nil {
		return mapConstraint(err, link.Slug)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	link.ID = id
	return nil
}

func (r *SQLiteRepository) GetBySlug(ctx context.Context, slug string) (*domain.Link, error) {
	query := `SELECT id, slug, url, tag, clicks, created_at FROM links WHERE slug = ?`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (r *SQLiteRepository) GetWithClicks(ctx context.Context, slug string) (*domain.Link, error) {
	link, err := r.GetBySlug(ctx, slug)
	if err != nil || link == nil {
		return link, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, link_id, clicked_at, country, region, city, ip, company
		FROM clicks WHERE link_id = ?
		ORDER BY clicked_at, rowid`, link.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	link.ClickTimestamps = []time.Time{}
	link.ClicksInfo = []domain.ClickEvent{}
	byID := map[int64]*domain.Link{link.ID: link}
	if err := appendClicks(rows, byID); err != nil {
		return nil, err
	}
	return link, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]domain.Link, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, slug, url, tag, clicks, created_at FROM links ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []domain.Link{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *l)
	}
	return links, rows.Err()
}

// DeleteBySlug removes the link together with its click history
func (r *SQLiteRepository) DeleteBySlug(ctx context.Context, slug string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM clicks WHERE link_id IN (SELECT id FROM links WHERE slug = ?)`, slug); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE slug = ?`, slug); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) RecordClick(ctx context.Context, slug string, event domain.ClickEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Increment Link Clicks Counter (Atomic)
	var linkID int64
	err = tx.QueryRowContext(ctx, `UPDATE links SET clicks = clicks + 1 WHERE slug = ? RETURNING id`, slug).Scan(&linkID)
	if err == sql.ErrNoRows {
		// link deleted between resolve and record
		return nil
	}
	if err != nil {
		return err
	}

	// 2. Append Click Record
	if err := insertClick(ctx, tx, linkID, event); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *SQLiteRepository) ClickTimestamps(ctx context.Context) ([]domain.Link, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.slug, l.tag, c.clicked_at
		FROM links l LEFT JOIN clicks c ON c.link_id = l.id
		ORDER BY l.id, c.clicked_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []domain.Link{}
	for rows.Next() {
		var (
			id        int64
			slug, tag string
			clicked   sql.NullInt64
		)
		if err := rows.Scan(&id, &slug, &tag, &clicked); err != nil {
			return nil, err
		}
		if len(links) == 0 || links[len(links)-1].ID != id {
			links = append(links, domain.Link{ID: id, Slug: slug, Tag: domain.Tag(tag)})
		}
		if clicked.Valid {
			last := &links[len(links)-1]
			last.ClickTimestamps = append(last.ClickTimestamps, fromNanos(clicked.Int64))
			last.Clicks++
		}
	}
	return links, rows.Err()
}

// Dump returns every link with its full click history
func (r *SQLiteRepository) Dump(ctx context.Context) ([]domain.Link, error) {
	links, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Link, len(links))
	for i := range links {
		links[i].ClickTimestamps = []time.Time{}
		links[i].ClicksInfo = []domain.ClickEvent{}
		byID[links[i].ID] = &links[i]
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, link_id, clicked_at, country, region, city, ip, company
		FROM clicks ORDER BY link_id, clicked_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := appendClicks(rows, byID); err != nil {
		return nil, err
	}
	return links, nil
}

// Import inserts a link exported by Dump. Timestamps without a matching
// event are stored as clicks from an unknown location.
func (r *SQLiteRepository) Import(ctx context.Context, link *domain.Link) error {
	events := link.ClicksInfo
	if len(events) == 0 {
		for _, ts := range link.ClickTimestamps {
			events = append(events, domain.NewClickEvent(ts, domain.UnknownLocation()))
		}
	}
	clicks := link.Clicks
	if int64(len(events)) > clicks {
		clicks = int64(len(events))
	}
	// counters ahead of the history get placeholder events so both agree
	if missing := clicks - int64(len(events)); missing > 0 {
		log.Printf("[import] %s: padding %d clicks without history", link.Slug, missing)
		for i := int64(0); i < missing; i++ {
			events = append(events, domain.NewClickEvent(link.CreatedAt, domain.UnknownLocation()))
		}
	}
	if link.Tag == "" {
		link.Tag = domain.TagOthers
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO links (slug, url, tag, clicks, created_at) VALUES (?, ?, ?, ?, ?)`,
		link.Slug, link.URL, string(link.Tag), clicks, toNanos(link.CreatedAt))
	if err != nil {
		return mapConstraint(err, link.Slug)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, ev := range events {
		ev.ID = "" // ids are not portable between databases
		if err := insertClick(ctx, tx, id, ev); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	link.ID = id
	link.Clicks = clicks
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// --- User Repository Implementation ---

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, password_hash, last_login_at, created_at FROM users WHERE email = ?`

	var (
		u                  domain.User
		lastLogin, created int64
	)
	err := r.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &lastLogin, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastLogin != 0 {
		u.LastLoginAt = fromNanos(lastLogin)
	}
	u.CreatedAt = fromNanos(created)
	return &u, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, user *domain.User) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)`,
		user.Email, user.PasswordHash, toNanos(user.CreatedAt))
	if err != nil {
		return mapConstraint(err, user.Email)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *SQLiteRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, toNanos(at), id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner) (*domain.Link, error) {
	var (
		l       domain.Link
		tag     string
		created int64
	)
	if err := row.Scan(&l.ID, &l.Slug, &l.URL, &tag, &l.Clicks, &created); err != nil {
		return nil, err
	}
	l.Tag = domain.Tag(tag)
	l.CreatedAt = fromNanos(created)
	return &l, nil
}

func appendClicks(rows *sql.Rows, byID map[int64]*domain.Link) error {
	for rows.Next() {
		var (
			ev      domain.ClickEvent
			linkID  int64
			clicked int64
		)
		if err := rows.Scan(&ev.ID, &linkID, &clicked, &ev.Country, &ev.Region, &ev.City, &ev.IP, &ev.Company); err != nil {
			return err
		}
		link, ok := byID[linkID]
		if !ok {
			continue
		}
		ev.Timestamp = fromNanos(clicked)
		link.ClickTimestamps = append(link.ClickTimestamps, ev.Timestamp)
		link.ClicksInfo = append(link.ClicksInfo, ev)
	}
	return rows.Err()
}

func insertClick(ctx context.Context, tx *sql.Tx, linkID int64, ev domain.ClickEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO clicks (id, link_id, clicked_at, country, region, city, ip, company)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, linkID, toNanos(ev.Timestamp), ev.Country, ev.Region, ev.City, ev.IP, ev.Company)
	return err
}

func mapConstraint(err error, key string) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %s", domain.ErrConflict, key)
	}
	return err
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return time.Now().UnixNano()
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// Ensure interface compliance
var (
	_ ports.LinkRepository = (*SQLiteRepository)(nil)
	_ ports.UserRepository = (*SQLiteRepository)(nil)
)

package store

import (
	"context"
	"database/sql"

	"github.com/D3fc0n3-1/Deal-hunter/internal/platform"
	apperr "github.com/D3fc0n3-1/Deal-hunter/pkg/errors"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS listings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	platform TEXT NOT NULL,
	search_term TEXT,
	title TEXT,
	price REAL,
	seller_rating REAL,
	url TEXT UNIQUE,
	found_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_listings_price ON listings (price);
CREATE INDEX IF NOT EXISTS idx_listings_platform ON listings (platform);
CREATE INDEX IF NOT EXISTS idx_listings_search_term ON listings (search_term);
CREATE INDEX IF NOT EXISTS idx_listings_found_at ON listings (found_at);
`

// Store persists listings across cycles in a sqlite database. The UNIQUE
// constraint on url deduplicates listings seen in multiple cycles.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the listings database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperr.NewStore("failed to open database "+path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperr.NewStore("failed to initialize database "+path, err)
	}
	return &Store{db: db}, nil
}

// Save inserts listings, skipping any whose url is already stored. It
// returns the inserted and skipped counts.
func (s *Store) Save(ctx context.Context, listings []platform.Listing) (inserted, skipped int, err error) {
	if len(listings) == 0 {
		return 0, 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, apperr.NewStore("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO listings (platform, search_term, title, price, seller_rating, url)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, apperr.NewStore("failed to prepare insert", err)
	}
	defer stmt.Close()

	for _, l := range listings {
		var rating sql.NullFloat64
		if l.SellerRating != nil {
			rating = sql.NullFloat64{Float64: *l.SellerRating, Valid: true}
		}
		res, err := stmt.ExecContext(ctx, l.Platform, l.SearchTerm, l.Title, l.Price, rating, l.URL)
		if err != nil {
			return inserted, skipped, apperr.NewStore("failed to insert listing "+l.URL, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		} else {
			skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, skipped, apperr.NewStore("failed to commit", err)
	}
	return inserted, skipped, nil
}

// Recent returns the most recently found listings, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]platform.Listing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT platform, search_term, title, price, seller_rating, url
		FROM listings ORDER BY found_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperr.NewStore("failed to query recent listings", err)
	}
	defer rows.Close()

	var listings []platform.Listing
	for rows.Next() {
		var l platform.Listing
		var rating sql.NullFloat64
		if err := rows.Scan(&l.Platform, &l.SearchTerm, &l.Title, &l.Price, &rating, &l.URL); err != nil {
			return nil, apperr.NewStore("failed to scan listing", err)
		}
		if rating.Valid {
			value := rating.Float64
			l.SellerRating = &value
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.NewStore("failed to iterate listings", err)
	}
	return listings, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

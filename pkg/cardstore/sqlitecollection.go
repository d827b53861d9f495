/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cardstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"

	"github.com/brendonion/fresh-blocks/pkg/card"
	"github.com/pkg/errors"

	_ "modernc.org/sqlite" // database/sql driver
)

const cardsSchema = `
CREATE TABLE IF NOT EXISTS cards (
    card_name          TEXT PRIMARY KEY,
    user_name          TEXT NOT NULL,
    business_network   TEXT NOT NULL,
    connection_profile TEXT NOT NULL,
    enrollment_secret  TEXT NOT NULL,
    roles              TEXT NOT NULL,
    version            INTEGER NOT NULL
);
`

// SQLiteCollection persists card records in a SQLite database.
type SQLiteCollection struct {
	sqlDB *sql.DB
}

// OpenSQLiteCollection opens (creating if needed) a SQLite card
// collection at the given path.
func OpenSQLiteCollection(path string) (*SQLiteCollection, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path is required")
	}
	// busy_timeout makes a second writer wait instead of failing with SQLITE_BUSY
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open of sqlite db failed")
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "ping of sqlite db failed")
	}
	if _, err := sqlDB.Exec(cardsSchema); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "creation of cards table failed")
	}
	return &SQLiteCollection{sqlDB: sqlDB}, nil
}

// Close closes the underlying database handle.
func (c *SQLiteCollection) Close() error {
	return c.sqlDB.Close()
}

// FindOne returns the record stored under cardName.
func (c *SQLiteCollection) FindOne(ctx context.Context, cardName string) (*card.Record, error) {
	row := c.sqlDB.QueryRowContext(ctx, `
SELECT card_name, user_name, business_network, connection_profile, enrollment_secret, roles, version
FROM cards WHERE card_name = ?`, cardName)
	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrCardDataNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query of card record failed")
	}
	return record, nil
}

// Find returns every stored record.
func (c *SQLiteCollection) Find(ctx context.Context) ([]*card.Record, error) {
	rows, err := c.sqlDB.QueryContext(ctx, `
SELECT card_name, user_name, business_network, connection_profile, enrollment_secret, roles, version
FROM cards ORDER BY card_name`)
	if err != nil {
		return nil, errors.Wrap(err, "query of card records failed")
	}
	defer rows.Close()

	var records []*card.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan of card record failed")
		}
		records = append(records, record)
	}
	return records, errors.Wrap(rows.Err(), "iteration of card records failed")
}

// Insert stores a record under its card name. Conflicting writes for the
// same name are serialized by SQLite; the last write wins.
func (c *SQLiteCollection) Insert(ctx context.Context, record *card.Record) error {
	_, err := c.sqlDB.ExecContext(ctx, `
INSERT INTO cards (card_name, user_name, business_network, connection_profile, enrollment_secret, roles, version)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(card_name) DO UPDATE SET
    user_name = excluded.user_name,
    business_network = excluded.business_network,
    connection_profile = excluded.connection_profile,
    enrollment_secret = excluded.enrollment_secret,
    roles = excluded.roles,
    version = excluded.version`,
		record.CardName, record.UserName, record.BusinessNetwork,
		record.ConnectionProfile, record.EnrollmentSecret, record.Roles, record.Version)
	return errors.Wrap(err, "insert of card record failed")
}

// Remove deletes the record stored under cardName.
func (c *SQLiteCollection) Remove(ctx context.Context, cardName string) error {
	result, err := c.sqlDB.ExecContext(ctx, `DELETE FROM cards WHERE card_name = ?`, cardName)
	if err != nil {
		return errors.Wrap(err, "delete of card record failed")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete of card record failed")
	}
	if affected == 0 {
		return ErrCardDataNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*card.Record, error) {
	var record card.Record
	err := row.Scan(&record.CardName, &record.UserName, &record.BusinessNetwork,
		&record.ConnectionProfile, &record.EnrollmentSecret, &record.Roles, &record.Version)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

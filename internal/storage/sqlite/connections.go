// ABOUTME: Connection storage operations for SQLite
// ABOUTME: Directed edges between blocks, unique per (from, to) pair
package sqlite

import (
	"database/sql"

	"github.com/harper/semantic-canvas/internal/models"
)

// ConnectionStore handles connection persistence
type ConnectionStore struct {
	db *DB
}

// NewConnectionStore creates a new ConnectionStore
func NewConnectionStore(db *DB) *ConnectionStore {
	return &ConnectionStore{db: db}
}

// Create inserts a connection. Duplicate directed pairs fail the UNIQUE constraint.
func (s *ConnectionStore) Create(conn *models.Connection) error {
	_, err := s.db.Exec(`
		INSERT INTO connections (id, from_block, to_block, created_at)
		VALUES (?, ?, ?, ?)
	`, conn.ID, conn.FromBlock, conn.ToBlock, conn.CreatedAt)
	return err
}

// Get retrieves a connection by ID, returning nil if it does not exist
func (s *ConnectionStore) Get(id string) (*models.Connection, error) {
	var conn models.Connection
	err := s.db.QueryRow(`
		SELECT id, from_block, to_block, created_at
		FROM connections
		WHERE id = ?
	`, id).Scan(&conn.ID, &conn.FromBlock, &conn.ToBlock, &conn.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// ListAll retrieves all connections, newest first
func (s *ConnectionStore) ListAll() ([]models.Connection, error) {
	rows, err := s.db.Query(`
		SELECT id, from_block, to_block, created_at
		FROM connections
		ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanConnections(rows)
}

// ListByBlock retrieves connections touching blockID on either end
func (s *ConnectionStore) ListByBlock(blockID string) ([]models.Connection, error) {
	rows, err := s.db.Query(`
		SELECT id, from_block, to_block, created_at
		FROM connections
		WHERE from_block = ? OR to_block = ?
		ORDER BY created_at DESC, id ASC
	`, blockID, blockID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanConnections(rows)
}

// Exists reports whether the directed pair from -> to is already connected
func (s *ConnectionStore) Exists(from, to string) (bool, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM connections WHERE from_block = ? AND to_block = ?
	`, from, to).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a connection. Reports whether a row existed.
func (s *ConnectionStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec("DELETE FROM connections WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanConnections(rows *sql.Rows) ([]models.Connection, error) {
	var conns []models.Connection
	for rows.Next() {
		var conn models.Connection
		if err := rows.Scan(&conn.ID, &conn.FromBlock, &conn.ToBlock, &conn.CreatedAt); err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}
	return conns, rows.Err()
}

// ABOUTME: Unified Storage layer that wraps the SQLite block and connection stores
// ABOUTME: Satisfies the backend-neutral canvas store used by the service layer
package sqlite

import (
	"fmt"
	"sync"

	"github.com/harper/semantic-canvas/internal/models"
)

// Storage manages all persistent canvas data using SQLite
type Storage struct {
	db          *DB
	blocks      *BlockStore
	connections *ConnectionStore
	mu          sync.RWMutex
}

// NewStorage initializes storage at the default XDG path
func NewStorage() (*Storage, error) {
	return NewStorageWithPath(DefaultDBPath())
}

// NewStorageWithPath initializes storage with a custom database path
func NewStorageWithPath(dbPath string) (*Storage, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStorage(db), nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return newStorage(db), nil
}

func newStorage(db *DB) *Storage {
	return &Storage{
		db:          db,
		blocks:      NewBlockStore(db),
		connections: NewConnectionStore(db),
	}
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// DB returns the underlying database
func (s *Storage) DB() *DB {
	return s.db
}

// SaveBlock inserts or updates a block including its embedding
func (s *Storage) SaveBlock(block *models.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.blocks.Save(block); err != nil {
		return fmt.Errorf("failed to save block %s: %w", block.ID, err)
	}
	return nil
}

// GetBlock returns the block or nil when it does not exist
func (s *Storage) GetBlock(id string) (*models.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.blocks.Get(id)
}

// ListBlocks returns every block, newest first
func (s *Storage) ListBlocks() ([]models.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.blocks.ListAll()
}

// DeleteBlock removes a block and its connections
func (s *Storage) DeleteBlock(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.blocks.Delete(id)
}

// SetEmbedding replaces the stored vector for a block
func (s *Storage) SetEmbedding(id string, vector []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.blocks.SetEmbedding(id, vector)
}

// CreateConnection inserts a new connection
func (s *Storage) CreateConnection(conn *models.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.connections.Create(conn); err != nil {
		return fmt.Errorf("failed to create connection %s: %w", conn.ID, err)
	}
	return nil
}

// GetConnection returns the connection or nil when it does not exist
func (s *Storage) GetConnection(id string) (*models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.connections.Get(id)
}

// ListConnections returns every connection, newest first
func (s *Storage) ListConnections() ([]models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.connections.ListAll()
}

// ListConnectionsByBlock returns connections touching blockID
func (s *Storage) ListConnectionsByBlock(blockID string) ([]models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.connections.ListByBlock(blockID)
}

// ConnectionExists reports whether from -> to is already stored
func (s *Storage) ConnectionExists(from, to string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.connections.Exists(from, to)
}

// DeleteConnection removes a connection by id
func (s *Storage) DeleteConnection(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.connections.Delete(id)
}

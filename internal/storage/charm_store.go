// ABOUTME: Canvas store with Charm KV backend for cloud-synced blocks and connections
// ABOUTME: Values are JSON documents; listing scans keys by prefix
package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/harper/semantic-canvas/internal/charm"
	"github.com/harper/semantic-canvas/internal/models"
)

// KV is the subset of the Charm client the store needs
type KV interface {
	SetJSON(key string, value any) error
	GetJSON(key string, dest any) (bool, error)
	Delete(key string) error
	ListKeys(prefix string) ([]string, error)
	Close() error
}

var _ KV = (*charm.Client)(nil)

// blockRecord carries the embedding, which Block hides from JSON
type blockRecord struct {
	models.Block
	Embedding []float64 `json:"embedding,omitempty"`
}

// CharmStore implements Store on top of a key-value client
type CharmStore struct {
	kv KV
	mu sync.RWMutex
}

// NewCharmStore creates a CharmStore
func NewCharmStore(kv KV) *CharmStore {
	return &CharmStore{kv: kv}
}

// Close closes the underlying client
func (s *CharmStore) Close() error {
	return s.kv.Close()
}

// SaveBlock upserts a block, keeping the original creation time
func (s *CharmStore) SaveBlock(block *models.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.getBlock(block.ID)
	if err != nil {
		return err
	}
	rec := blockRecord{Block: *block, Embedding: block.Embedding}
	if existing != nil && !existing.CreatedAt.IsZero() {
		rec.CreatedAt = existing.CreatedAt
	}
	return s.kv.SetJSON(charm.BlockKey(block.ID), rec)
}

// GetBlock returns the block or nil when missing
func (s *CharmStore) GetBlock(id string) (*models.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getBlock(id)
}

func (s *CharmStore) getBlock(id string) (*models.Block, error) {
	var rec blockRecord
	ok, err := s.kv.GetJSON(charm.BlockKey(id), &rec)
	if err != nil || !ok {
		return nil, err
	}
	block := rec.Block
	block.Embedding = rec.Embedding
	if block.Tags == nil {
		block.Tags = []string{}
	}
	return &block, nil
}

// ListBlocks returns every block, newest first
func (s *CharmStore) ListBlocks() ([]models.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys, err := s.kv.ListKeys(charm.BlockPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list block keys: %w", err)
	}

	blocks := make([]models.Block, 0, len(keys))
	for _, key := range keys {
		block, err := s.getBlock(charm.IDFromKey(charm.BlockPrefix, key))
		if err != nil {
			return nil, err
		}
		if block != nil {
			blocks = append(blocks, *block)
		}
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		if !blocks[i].CreatedAt.Equal(blocks[j].CreatedAt) {
			return blocks[i].CreatedAt.After(blocks[j].CreatedAt)
		}
		return blocks[i].ID < blocks[j].ID
	})
	return blocks, nil
}

// DeleteBlock removes a block and every connection touching it
func (s *CharmStore) DeleteBlock(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.getBlock(id)
	if err != nil || existing == nil {
		return false, err
	}

	conns, err := s.listConnections(func(c *models.Connection) bool {
		return c.FromBlock == id || c.ToBlock == id
	})
	if err != nil {
		return false, err
	}
	for _, c := range conns {
		if err := s.kv.Delete(charm.ConnectionKey(c.ID)); err != nil {
			return false, err
		}
	}

	if err := s.kv.Delete(charm.BlockKey(id)); err != nil {
		return false, err
	}
	return true, nil
}

// SetEmbedding replaces the stored vector for a block
func (s *CharmStore) SetEmbedding(id string, vector []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	block, err := s.getBlock(id)
	if err != nil {
		return err
	}
	if block == nil {
		return fmt.Errorf("block %s not found", id)
	}
	return s.kv.SetJSON(charm.BlockKey(id), blockRecord{Block: *block, Embedding: vector})
}

// CreateConnection stores a new connection
func (s *CharmStore) CreateConnection(conn *models.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.kv.SetJSON(charm.ConnectionKey(conn.ID), conn)
}

// GetConnection returns the connection or nil when missing
func (s *CharmStore) GetConnection(id string) (*models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getConnection(id)
}

func (s *CharmStore) getConnection(id string) (*models.Connection, error) {
	var conn models.Connection
	ok, err := s.kv.GetJSON(charm.ConnectionKey(id), &conn)
	if err != nil || !ok {
		return nil, err
	}
	return &conn, nil
}

// ListConnections returns every connection, newest first
func (s *CharmStore) ListConnections() ([]models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listConnections(nil)
}

// ListConnectionsByBlock returns connections touching blockID
func (s *CharmStore) ListConnectionsByBlock(blockID string) ([]models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listConnections(func(c *models.Connection) bool {
		return c.FromBlock == blockID || c.ToBlock == blockID
	})
}

// ConnectionExists reports whether from -> to is already stored
func (s *CharmStore) ConnectionExists(from, to string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conns, err := s.listConnections(func(c *models.Connection) bool {
		return c.FromBlock == from && c.ToBlock == to
	})
	if err != nil {
		return false, err
	}
	return len(conns) > 0, nil
}

// DeleteConnection removes a connection by id
func (s *CharmStore) DeleteConnection(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.getConnection(id)
	if err != nil || existing == nil {
		return false, err
	}
	if err := s.kv.Delete(charm.ConnectionKey(id)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CharmStore) listConnections(keep func(*models.Connection) bool) ([]models.Connection, error) {
	keys, err := s.kv.ListKeys(charm.ConnectionPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list connection keys: %w", err)
	}

	conns := make([]models.Connection, 0, len(keys))
	for _, key := range keys {
		conn, err := s.getConnection(charm.IDFromKey(charm.ConnectionPrefix, key))
		if err != nil {
			return nil, err
		}
		if conn == nil || (keep != nil && !keep(conn)) {
			continue
		}
		conns = append(conns, *conn)
	}

	sort.SliceStable(conns, func(i, j int) bool {
		if !conns[i].CreatedAt.Equal(conns[j].CreatedAt) {
			return conns[i].CreatedAt.After(conns[j].CreatedAt)
		}
		return conns[i].ID < conns[j].ID
	})
	return conns, nil
}

var _ Store = (*CharmStore)(nil)

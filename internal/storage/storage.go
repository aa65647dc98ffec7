// ABOUTME: Backend-neutral canvas store interface and backend selection
// ABOUTME: SQLite is the local default; Charm KV gives a cloud-synced alternative
package storage

import (
	"fmt"
	"strings"

	"github.com/harper/semantic-canvas/internal/charm"
	"github.com/harper/semantic-canvas/internal/models"
	"github.com/harper/semantic-canvas/internal/storage/sqlite"
)

// Store persists blocks and connections. Reads of missing records return
// (nil, nil); deletes report whether anything was removed.
type Store interface {
	SaveBlock(block *models.Block) error
	GetBlock(id string) (*models.Block, error)
	ListBlocks() ([]models.Block, error)
	DeleteBlock(id string) (bool, error)
	SetEmbedding(id string, vector []float64) error

	CreateConnection(conn *models.Connection) error
	GetConnection(id string) (*models.Connection, error)
	ListConnections() ([]models.Connection, error)
	ListConnectionsByBlock(blockID string) ([]models.Connection, error)
	ConnectionExists(from, to string) (bool, error)
	DeleteConnection(id string) (bool, error)

	Close() error
}

// Backend names accepted by Open
const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
)

// Options selects and configures a backend
type Options struct {
	Backend string
	DBPath  string
	Charm   *charm.Config
}

// Open returns the configured backend
func Open(opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendSQLite:
		path := opts.DBPath
		if path == "" {
			path = sqlite.DefaultDBPath()
		}
		return sqlite.NewStorageWithPath(path)
	case BackendCharm:
		client, err := charm.NewClient(opts.Charm)
		if err != nil {
			return nil, err
		}
		return NewCharmStore(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want sqlite or charm)", opts.Backend)
	}
}

var _ Store = (*sqlite.Storage)(nil)

// ABOUTME: Canvas block storage operations for SQLite
// ABOUTME: Implements CRUD plus embedding attachment for blocks
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"math"
	"time"

	"github.com/harper/semantic-canvas/internal/models"
)

const blockColumns = `id, type, content, language, tags, x, y, width, height, embedding, created_at, updated_at`

// BlockStore handles canvas block persistence
type BlockStore struct {
	db *DB
}

// NewBlockStore creates a new BlockStore
func NewBlockStore(db *DB) *BlockStore {
	return &BlockStore{db: db}
}

// Save saves or updates a block (upsert). created_at is preserved on update.
func (s *BlockStore) Save(block *models.Block) error {
	tags := block.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return err
	}

	var blob []byte
	if block.HasEmbedding() {
		blob = vectorToBlob(block.Embedding)
	}

	_, err = s.db.Exec(`
		INSERT INTO blocks (`+blockColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			content = excluded.content,
			language = excluded.language,
			tags = excluded.tags,
			x = excluded.x,
			y = excluded.y,
			width = excluded.width,
			height = excluded.height,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
	`, block.ID, string(block.Type), block.Content, nullString(block.Language), string(tagsJSON),
		block.X, block.Y, block.Width, block.Height, blob, block.CreatedAt, block.UpdatedAt)

	return err
}

// Get retrieves a block by ID, returning nil if it does not exist
func (s *BlockStore) Get(blockID string) (*models.Block, error) {
	row := s.db.QueryRow(`SELECT `+blockColumns+` FROM blocks WHERE id = ?`, blockID)

	block, err := scanBlock(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return block, nil
}

// ListAll retrieves all blocks, newest first
func (s *BlockStore) ListAll() ([]models.Block, error) {
	rows, err := s.db.Query(`
		SELECT ` + blockColumns + `
		FROM blocks
		ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var blocks []models.Block
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, *block)
	}
	return blocks, rows.Err()
}

// Delete removes a block (connections cascade). Reports whether a row existed.
func (s *BlockStore) Delete(blockID string) (bool, error) {
	result, err := s.db.Exec("DELETE FROM blocks WHERE id = ?", blockID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetEmbedding replaces only the stored vector of a block. A nil vector clears it.
func (s *BlockStore) SetEmbedding(blockID string, vector []float64) error {
	var blob []byte
	if len(vector) > 0 {
		blob = vectorToBlob(vector)
	}
	_, err := s.db.Exec(`
		UPDATE blocks
		SET embedding = ?, updated_at = ?
		WHERE id = ?
	`, blob, time.Now(), blockID)
	return err
}

// Count returns the number of stored blocks
func (s *BlockStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM blocks").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlock(row rowScanner) (*models.Block, error) {
	var (
		block     models.Block
		blockType string
		language  sql.NullString
		tagsJSON  sql.NullString
		blob      []byte
	)

	err := row.Scan(&block.ID, &blockType, &block.Content, &language, &tagsJSON,
		&block.X, &block.Y, &block.Width, &block.Height, &blob, &block.CreatedAt, &block.UpdatedAt)
	if err != nil {
		return nil, err
	}

	block.Type = models.ContentType(blockType)
	if language.Valid {
		block.Language = language.String
	}

	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &block.Tags); err != nil {
			block.Tags = []string{}
		}
	}
	if block.Tags == nil {
		block.Tags = []string{}
	}

	if len(blob) > 0 {
		block.Embedding = blobToVector(blob)
	}

	return &block, nil
}

// vectorToBlob converts float64 slice to binary blob (little-endian)
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector converts a binary blob to float64 slice
func blobToVector(blob []byte) []float64 {
	count := len(blob) / 8
	vector := make([]float64, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint64(blob[i*8:])
		vector[i] = math.Float64frombits(bits)
	}
	return vector
}

// nullString converts empty string to NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

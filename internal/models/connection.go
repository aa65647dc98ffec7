// ABOUTME: Connection links two canvas blocks
// ABOUTME: Stored directed but compared as an unordered pair for suggestions
package models

import (
	"errors"
	"time"
)

// Connection is an edge between two blocks
type Connection struct {
	ID        string    `json:"id"`
	FromBlock string    `json:"from_block"`
	ToBlock   string    `json:"to_block"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks that both endpoints are set and distinct
func (c *Connection) Validate() error {
	if c.FromBlock == "" || c.ToBlock == "" {
		return errors.New("from_block and to_block are required")
	}
	if len(c.ID) > MaxIDLength || len(c.FromBlock) > MaxIDLength || len(c.ToBlock) > MaxIDLength {
		return errors.New("connection ids must be at most 255 characters")
	}
	if c.FromBlock == c.ToBlock {
		return errors.New("a block cannot be connected to itself")
	}
	return nil
}

// PairKey returns an order-independent key for the block pair a/b
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

// Key returns the unordered pair key for the connection
func (c *Connection) Key() string {
	return PairKey(c.FromBlock, c.ToBlock)
}

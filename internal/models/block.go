// ABOUTME: Block represents a freeform piece of content placed on the canvas
// ABOUTME: Carries text, tags, geometry and an optional cached embedding vector
package models

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// ContentType is the kind of content a block holds
type ContentType string

const (
	TypeText     ContentType = "text"
	TypeMarkdown ContentType = "markdown"
	TypeCode     ContentType = "code"
	TypeImage    ContentType = "image"
	TypeDrawing  ContentType = "drawing"
)

// Limits mirrored by the HTTP and MCP input validation
const (
	MaxContentLength  = 10000
	MaxLanguageLength = 50
	MaxIDLength       = 255
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Block is a single canvas item. Embedding is nil until a vector has been
// generated for the block's derived text; it is never refreshed automatically.
type Block struct {
	ID        string      `json:"id" validate:"required,max=255"`
	Type      ContentType `json:"type" validate:"required,oneof=text markdown code image drawing"`
	Content   string      `json:"content" validate:"required,max=10000"`
	Language  string      `json:"language,omitempty" validate:"omitempty,max=50"`
	Tags      []string    `json:"tags"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	Width     float64     `json:"width" validate:"gte=0"`
	Height    float64     `json:"height" validate:"gte=0"`
	Embedding []float64   `json:"-"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Validate checks struct constraints on the block
func (b *Block) Validate() error {
	if err := validate.Struct(b); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &FieldError{Field: verrs[0].Field(), Tag: verrs[0].Tag(), Param: verrs[0].Param()}
		}
		return err
	}
	return nil
}

// HasEmbedding reports whether a vector is attached to the block
func (b *Block) HasEmbedding() bool {
	return len(b.Embedding) > 0
}

// Distance returns the Euclidean distance between the two blocks' positions
func (b *Block) Distance(other *Block) float64 {
	return math.Hypot(b.X-other.X, b.Y-other.Y)
}

// Summary returns a copy of the block without its embedding vector
func (b Block) Summary() Block {
	b.Embedding = nil
	if b.Tags == nil {
		b.Tags = []string{}
	}
	return b
}

// ContentChanged reports whether the fields that feed the block's derived
// text differ between b and other.
func (b *Block) ContentChanged(other *Block) bool {
	if b.Content != other.Content || b.Language != other.Language || b.Type != other.Type {
		return true
	}
	if len(b.Tags) != len(other.Tags) {
		return true
	}
	for i := range b.Tags {
		if b.Tags[i] != other.Tags[i] {
			return true
		}
	}
	return false
}

// FieldError describes the first failed validation constraint
type FieldError struct {
	Field string
	Tag   string
	Param string
}

func (e *FieldError) Error() string {
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.Field, e.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Field, e.Param)
	default:
		return fmt.Sprintf("%s failed %s validation", e.Field, e.Tag)
	}
}

// ValidateStruct runs tag-based validation on any request struct
func ValidateStruct(s any) error {
	return validate.Struct(s)
}

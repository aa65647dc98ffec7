// ABOUTME: Request bodies for the block, connection and search endpoints
// ABOUTME: Decoded from JSON and checked with go-playground/validator before reaching the service
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/harper/semantic-canvas/internal/canvas"
	"github.com/harper/semantic-canvas/internal/models"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Geometry is integral on the wire; decoding 1.5 into an int is rejected.
type createBlockRequest struct {
	ID       string   `json:"id" validate:"omitempty,max=255"`
	Type     string   `json:"type" validate:"required,oneof=text markdown code image drawing"`
	Content  string   `json:"content" validate:"required,max=10000"`
	Language string   `json:"language" validate:"omitempty,max=50"`
	Tags     []string `json:"tags"`
	X        *int     `json:"x" validate:"required"`
	Y        *int     `json:"y" validate:"required"`
	Width    *int     `json:"width" validate:"required,gte=0"`
	Height   *int     `json:"height" validate:"required,gte=0"`
}

func (r createBlockRequest) block() models.Block {
	return models.Block{
		ID:       r.ID,
		Type:     models.ContentType(r.Type),
		Content:  r.Content,
		Language: r.Language,
		Tags:     r.Tags,
		X:        float64(*r.X),
		Y:        float64(*r.Y),
		Width:    float64(*r.Width),
		Height:   float64(*r.Height),
	}
}

type updateBlockRequest struct {
	Type     *string   `json:"type" validate:"omitempty,oneof=text markdown code image drawing"`
	Content  *string   `json:"content" validate:"omitempty,max=10000"`
	Language *string   `json:"language" validate:"omitempty,max=50"`
	Tags     *[]string `json:"tags"`
	X        *int      `json:"x"`
	Y        *int      `json:"y"`
	Width    *int      `json:"width" validate:"omitempty,gte=0"`
	Height   *int      `json:"height" validate:"omitempty,gte=0"`
}

func (r updateBlockRequest) patch() canvas.BlockPatch {
	p := canvas.BlockPatch{
		Content:  r.Content,
		Language: r.Language,
		Tags:     r.Tags,
		X:        intToFloat(r.X),
		Y:        intToFloat(r.Y),
		Width:    intToFloat(r.Width),
		Height:   intToFloat(r.Height),
	}
	if r.Type != nil {
		t := models.ContentType(*r.Type)
		p.Type = &t
	}
	return p
}

func intToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

type createConnectionRequest struct {
	ID        string `json:"id" validate:"omitempty,max=255"`
	FromBlock string `json:"from_block" validate:"required,max=255"`
	ToBlock   string `json:"to_block" validate:"required,max=255"`
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// requestError is a rejected body with per-field details
type requestError struct {
	details []FieldDetail
}

func (e *requestError) Error() string {
	return "validation failed"
}

// decode reads a JSON body into dst and validates it. Unknown fields are
// ignored.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &requestError{details: []FieldDetail{{Field: "body", Message: "request body is required"}}}
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &requestError{details: []FieldDetail{{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("%s must be a %s", typeErr.Field, typeName(typeErr.Type)),
			}}}
		}
		return &requestError{details: []FieldDetail{{Field: "body", Message: "malformed JSON"}}}
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		details := make([]FieldDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldDetail{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		return &requestError{details: details}
	}
	return nil
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "valid value"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int64, reflect.Int32:
		return "integer"
	case reflect.String:
		return "string"
	case reflect.Slice:
		return "list"
	default:
		return t.String()
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

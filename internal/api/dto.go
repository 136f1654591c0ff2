package api

import (
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notegraph/internal/models"
	"github.com/starford/notegraph/internal/view"
)

// Pointer event types.
const (
	PointerDown = "down"
	PointerMove = "move"
	PointerUp   = "up"
)

// PointerRequest is one pointer event in viewport coordinates.
type PointerRequest struct {
	Type string  `json:"type" example:"down" validate:"required"`
	X    float64 `json:"x" example:"120.5"`
	Y    float64 `json:"y" example:"80"`
}

// Validate checks the event type and coordinates.
func (p PointerRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Type, validation.Required, validation.In(PointerDown, PointerMove, PointerUp)),
		validation.Field(&p.X, validation.By(finite)),
		validation.Field(&p.Y, validation.By(finite)),
	)
}

// Position returns the pointer location.
func (p PointerRequest) Position() models.Position {
	return models.Position{X: p.X, Y: p.Y}
}

// ViewportRequest resizes the layout bounds.
type ViewportRequest struct {
	Width  float64 `json:"width" example:"960" validate:"required"`
	Height float64 `json:"height" example:"600" validate:"required"`
}

// Validate requires a positive size.
func (v ViewportRequest) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.Width, validation.Required, validation.Min(1.0)),
		validation.Field(&v.Height, validation.Required, validation.Min(1.0)),
	)
}

// ClickRequest toggles expansion of a node without a pointer gesture.
type ClickRequest struct {
	ID string `json:"id" example:"note-1" validate:"required"`
}

// Validate requires an id.
func (c ClickRequest) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required),
	)
}

// SelectionResponse reports the expanded node after a click.
type SelectionResponse struct {
	Expanded string `json:"expanded" example:"note-1"`
}

// GraphResponse is the render snapshot.
type GraphResponse = view.Snapshot

// LinksResponse lists the links touching one note.
type LinksResponse struct {
	ID    string                  `json:"id" example:"note-1" validate:"required"`
	Links []models.SimilarityLink `json:"links" validate:"required"`
}

// NoteDetail is the detail panel payload for one note.
type NoteDetail = view.Detail

func finite(value interface{}) error {
	f, _ := value.(float64)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return validation.NewError("validation_finite", "must be a finite number")
	}
	return nil
}

package exercises

import (
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/pkg"
	"github.com/2beens/fittrack/pkg/optional"
)

const (
	DefaultPerPage = 20

	MaxNameLength     = 100
	MaxCategoryLength = 50
)

// Exercise is a shared catalog entry, not owned by any user.
type Exercise struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

func (r *CreateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return apperr.Validation("name is required")
	}
	if pkg.TooLong(r.Name, MaxNameLength) {
		return apperr.Validation("name must be at most %d characters", MaxNameLength)
	}
	if r.Category != nil && pkg.TooLong(*r.Category, MaxCategoryLength) {
		return apperr.Validation("category must be at most %d characters", MaxCategoryLength)
	}
	return nil
}

type UpdateRequest struct {
	Name        optional.Value[string] `json:"name"`
	Description optional.Value[string] `json:"description"`
	Category    optional.Value[string] `json:"category"`
}

func (r *UpdateRequest) Validate() error {
	if r.Name.Set {
		name := strings.TrimSpace(r.Name.V)
		if name == "" {
			return apperr.Validation("name cannot be empty")
		}
		if pkg.TooLong(name, MaxNameLength) {
			return apperr.Validation("name must be at most %d characters", MaxNameLength)
		}
	}
	if r.Category.Set && pkg.TooLong(r.Category.V, MaxCategoryLength) {
		return apperr.Validation("category must be at most %d characters", MaxCategoryLength)
	}
	return nil
}

// Apply copies the present fields onto e and reports whether anything was set.
func (r *UpdateRequest) Apply(e *Exercise) bool {
	changed := false
	if r.Name.Set {
		e.Name = strings.TrimSpace(r.Name.V)
		changed = true
	}
	if r.Description.ApplyTo(&e.Description) {
		changed = true
	}
	if r.Category.ApplyTo(&e.Category) {
		changed = true
	}
	return changed
}

type ListParams struct {
	pkg.PageParams
	Category string
}

type ListResponse struct {
	Exercises []Exercise `json:"exercises"`
	pkg.Page
}

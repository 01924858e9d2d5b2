package workouts

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/exercises"
	"github.com/2beens/fittrack/pkg"
	"github.com/2beens/fittrack/pkg/optional"
)

const (
	DefaultPerPage = 10
	MaxNameLength  = 100
)

type Workout struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	Date      Date      `json:"date"`
	Duration  *int      `json:"duration"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Entries  []Entry `json:"-"`
	expanded bool
}

// Expand attaches the entries; the workout then serializes them under "exercises".
func (w *Workout) Expand(entries []Entry) {
	if entries == nil {
		entries = []Entry{}
	}
	w.Entries = entries
	w.expanded = true
}

func (w *Workout) Expanded() bool {
	return w.expanded
}

func (w Workout) MarshalJSON() ([]byte, error) {
	type plain Workout
	if !w.expanded {
		return json.Marshal(plain(w))
	}
	return json.Marshal(struct {
		plain
		Exercises []Entry `json:"exercises"`
	}{
		plain:     plain(w),
		Exercises: w.Entries,
	})
}

// Entry is one exercise performed within a workout.
type Entry struct {
	ID         int                 `json:"id"`
	WorkoutID  int                 `json:"workout_id"`
	ExerciseID int                 `json:"exercise_id"`
	Exercise   *exercises.Exercise `json:"exercise"`
	Sets       *int                `json:"sets"`
	Reps       *int                `json:"reps"`
	Weight     *float64            `json:"weight"`
	Duration   *int                `json:"duration"`
	Distance   *float64            `json:"distance"`
	Notes      *string             `json:"notes"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

type CreateRequest struct {
	Name     string  `json:"name"`
	Date     *string `json:"date"`
	Duration *int    `json:"duration"`
	Notes    *string `json:"notes"`
}

// ToWorkout validates the request. A missing date means today.
func (r *CreateRequest) ToWorkout(userID int, today Date) (Workout, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return Workout{}, apperr.Validation("name is required")
	}
	if pkg.TooLong(name, MaxNameLength) {
		return Workout{}, apperr.Validation("name must be at most %d characters", MaxNameLength)
	}

	date := today
	if r.Date != nil {
		parsed, err := ParseDate(*r.Date)
		if err != nil {
			return Workout{}, apperr.ValidationWrap(err, "bad workout date")
		}
		date = parsed
	}

	return Workout{
		UserID:   userID,
		Name:     name,
		Date:     date,
		Duration: r.Duration,
		Notes:    r.Notes,
	}, nil
}

type UpdateRequest struct {
	Name     optional.Value[string] `json:"name"`
	Date     optional.Value[string] `json:"date"`
	Duration optional.Value[int]    `json:"duration"`
	Notes    optional.Value[string] `json:"notes"`
}

// Apply validates the present fields and copies them onto w.
func (r *UpdateRequest) Apply(w *Workout) (changed bool, err error) {
	if r.Name.Set {
		name := strings.TrimSpace(r.Name.V)
		if name == "" {
			return false, apperr.Validation("name cannot be empty")
		}
		if pkg.TooLong(name, MaxNameLength) {
			return false, apperr.Validation("name must be at most %d characters", MaxNameLength)
		}
		w.Name = name
		changed = true
	}
	if r.Date.Set {
		if r.Date.Null {
			return false, apperr.Validation("date cannot be null")
		}
		date, err := ParseDate(r.Date.V)
		if err != nil {
			return false, apperr.ValidationWrap(err, "bad workout date")
		}
		w.Date = date
		changed = true
	}
	if r.Duration.ApplyTo(&w.Duration) {
		changed = true
	}
	if r.Notes.ApplyTo(&w.Notes) {
		changed = true
	}
	return changed, nil
}

// CreateEntryRequest carries the performance detail. Numbers are not range checked.
type CreateEntryRequest struct {
	ExerciseID *int     `json:"exercise_id"`
	Sets       *int     `json:"sets"`
	Reps       *int     `json:"reps"`
	Weight     *float64 `json:"weight"`
	Duration   *int     `json:"duration"`
	Distance   *float64 `json:"distance"`
	Notes      *string  `json:"notes"`
}

func (r *CreateEntryRequest) ToEntry(workoutID int) (Entry, error) {
	if r.ExerciseID == nil {
		return Entry{}, apperr.Validation("exercise_id is required")
	}
	return Entry{
		WorkoutID:  workoutID,
		ExerciseID: *r.ExerciseID,
		Sets:       r.Sets,
		Reps:       r.Reps,
		Weight:     r.Weight,
		Duration:   r.Duration,
		Distance:   r.Distance,
		Notes:      r.Notes,
	}, nil
}

type UpdateEntryRequest struct {
	Sets     optional.Value[int]     `json:"sets"`
	Reps     optional.Value[int]     `json:"reps"`
	Weight   optional.Value[float64] `json:"weight"`
	Duration optional.Value[int]     `json:"duration"`
	Distance optional.Value[float64] `json:"distance"`
	Notes    optional.Value[string]  `json:"notes"`
}

func (r *UpdateEntryRequest) Apply(e *Entry) bool {
	changed := r.Sets.ApplyTo(&e.Sets)
	changed = r.Reps.ApplyTo(&e.Reps) || changed
	changed = r.Weight.ApplyTo(&e.Weight) || changed
	changed = r.Duration.ApplyTo(&e.Duration) || changed
	changed = r.Distance.ApplyTo(&e.Distance) || changed
	changed = r.Notes.ApplyTo(&e.Notes) || changed
	return changed
}

type ListResponse struct {
	Workouts []Workout `json:"workouts"`
	pkg.Page
}

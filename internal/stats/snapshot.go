package stats

import "time"

const DateLayout = "2006-01-02"

// Snapshot is everything the engine needs about one user's history.
type Snapshot struct {
	Workouts []WorkoutRecord
	Entries  []EntryRecord
}

// WorkoutRecord is a workout reduced to its date and duration. A missing duration is stored as 0.
type WorkoutRecord struct {
	ID       int       `db:"id"`
	Date     time.Time `db:"date"`
	Duration int       `db:"duration"`
}

// EntryRecord is one logged exercise entry together with its exercise.
type EntryRecord struct {
	WorkoutID  int     `db:"workout_id"`
	ExerciseID int     `db:"exercise_id"`
	Name       string  `db:"name"`
	Category   *string `db:"category"`
}

package stats

import (
	"sort"
	"time"
)

const (
	recentWindowDays = 30
	trendMonths      = 12
)

type Summary struct {
	TotalWorkouts        int     `json:"total_workouts" yaml:"total_workouts"`
	TotalDurationMinutes int     `json:"total_duration_minutes" yaml:"total_duration_minutes"`
	WorkoutsLast30Days   int     `json:"workouts_last_30_days" yaml:"workouts_last_30_days"`
	MostFrequentExercise *string `json:"most_frequent_exercise" yaml:"most_frequent_exercise"`
	LastWorkoutDate      *string `json:"last_workout_date" yaml:"last_workout_date"`
}

type MonthRecord struct {
	Year     int `json:"year" yaml:"year"`
	Month    int `json:"month" yaml:"month"`
	Count    int `json:"count" yaml:"count"`
	Duration int `json:"duration" yaml:"duration"`
}

type ExerciseCount struct {
	ID       int     `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Category *string `json:"category" yaml:"category"`
	Count    int     `json:"count" yaml:"count"`
}

// Engine computes the statistics views. It holds no state and never touches storage.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Summary counts workouts dated within [today-30d, today] as recent.
func (e *Engine) Summary(snap Snapshot, today time.Time) Summary {
	today = day(today)
	windowStart := today.AddDate(0, 0, -recentWindowDays)

	var (
		summary Summary
		last    time.Time
	)
	for _, w := range snap.Workouts {
		summary.TotalWorkouts++
		summary.TotalDurationMinutes += w.Duration

		date := day(w.Date)
		if !date.Before(windowStart) && !date.After(today) {
			summary.WorkoutsLast30Days++
		}
		if date.After(last) {
			last = date
		}
	}

	if summary.TotalWorkouts > 0 {
		lastDate := last.Format(DateLayout)
		summary.LastWorkoutDate = &lastDate
	}
	summary.MostFrequentExercise = mostFrequentExercise(snap.Entries)

	return summary
}

// mostFrequentExercise groups entries by exercise name. Ties go to the group holding the
// lowest exercise id, then to the lexically smaller name.
func mostFrequentExercise(entries []EntryRecord) *string {
	type group struct {
		count int
		minID int
	}
	groups := make(map[string]*group)
	for _, entry := range entries {
		g, ok := groups[entry.Name]
		if !ok {
			groups[entry.Name] = &group{count: 1, minID: entry.ExerciseID}
			continue
		}
		g.count++
		if entry.ExerciseID < g.minID {
			g.minID = entry.ExerciseID
		}
	}

	var (
		best      string
		bestGroup *group
	)
	for name, g := range groups {
		switch {
		case bestGroup == nil,
			g.count > bestGroup.count,
			g.count == bestGroup.count && g.minID < bestGroup.minID,
			g.count == bestGroup.count && g.minID == bestGroup.minID && name < best:
			best, bestGroup = name, g
		}
	}
	if bestGroup == nil {
		return nil
	}
	return &best
}

// MonthlyTrend returns one record per calendar month, the current month first.
func (e *Engine) MonthlyTrend(snap Snapshot, today time.Time) []MonthRecord {
	today = day(today)

	type yearMonth struct {
		year  int
		month time.Month
	}
	index := make(map[yearMonth]int, trendMonths)
	records := make([]MonthRecord, trendMonths)
	for i := 0; i < trendMonths; i++ {
		first := time.Date(today.Year(), today.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		records[i] = MonthRecord{
			Year:  first.Year(),
			Month: int(first.Month()),
		}
		index[yearMonth{first.Year(), first.Month()}] = i
	}

	for _, w := range snap.Workouts {
		date := day(w.Date)
		i, ok := index[yearMonth{date.Year(), date.Month()}]
		if !ok {
			continue
		}
		records[i].Count++
		records[i].Duration += w.Duration
	}

	return records
}

// ExerciseFrequency lists only exercises the user logged, count descending then id ascending.
func (e *Engine) ExerciseFrequency(snap Snapshot) []ExerciseCount {
	byID := make(map[int]*ExerciseCount)
	for _, entry := range snap.Entries {
		c, ok := byID[entry.ExerciseID]
		if !ok {
			c = &ExerciseCount{
				ID:       entry.ExerciseID,
				Name:     entry.Name,
				Category: entry.Category,
			}
			byID[entry.ExerciseID] = c
		}
		c.Count++
	}

	counts := make([]ExerciseCount, 0, len(byID))
	for _, c := range byID {
		counts = append(counts, *c)
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].ID < counts[j].ID
	})

	return counts
}

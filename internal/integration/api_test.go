//go:build integration_test

package integration

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

type authResult struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

type idResult struct {
	ID int `json:"id"`
}

func (s *IntegrationTestSuite) request(method, path, token string, payload any) *apiResponse {
	resp, err := doRequest(method, path, token, payload)
	s.Require().NoError(err)
	return resp
}

func (s *IntegrationTestSuite) registerUser(username string) authResult {
	resp := s.request(http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@fittrack.test",
		"password": "secret-password",
	})
	s.Require().Equal(http.StatusCreated, resp.status, string(resp.body))

	var res authResult
	s.Require().NoError(resp.decode(&res))
	s.Require().NotEmpty(res.AccessToken)
	return res
}

func (s *IntegrationTestSuite) newUsername() string {
	return fmt.Sprintf("%s_%d", gofakeit.Username(), time.Now().UnixNano()%100000)
}

func (s *IntegrationTestSuite) createExercise(token, name string) int {
	resp := s.request(http.MethodPost, "/api/exercises", token, map[string]any{
		"name":     name,
		"category": "strength",
	})
	s.Require().Equal(http.StatusCreated, resp.status, string(resp.body))

	var res idResult
	s.Require().NoError(resp.decode(&res))
	return res.ID
}

func (s *IntegrationTestSuite) createWorkout(token string, payload map[string]any) int {
	resp := s.request(http.MethodPost, "/api/workouts", token, payload)
	s.Require().Equal(http.StatusCreated, resp.status, string(resp.body))

	var res idResult
	s.Require().NoError(resp.decode(&res))
	return res.ID
}

func (s *IntegrationTestSuite) TestRoot() {
	resp := s.request(http.MethodGet, "/", "", nil)
	s.Equal(http.StatusOK, resp.status)
	s.Contains(string(resp.body), `"status":"ok"`)
}

func (s *IntegrationTestSuite) TestTrackingScenario() {
	alice := s.registerUser(s.newUsername())
	exerciseID := s.createExercise(alice.AccessToken, "Squat "+gofakeit.UUID())

	workoutID := s.createWorkout(alice.AccessToken, map[string]any{
		"name":     "Leg day",
		"duration": 30,
	})

	resp := s.request(http.MethodPost, fmt.Sprintf("/api/workouts/%d/exercises", workoutID), alice.AccessToken, map[string]any{
		"exercise_id": exerciseID,
		"sets":        3,
		"reps":        10,
	})
	s.Require().Equal(http.StatusCreated, resp.status, string(resp.body))

	resp = s.request(http.MethodGet, fmt.Sprintf("/api/workouts/%d", workoutID), alice.AccessToken, nil)
	s.Require().Equal(http.StatusOK, resp.status)
	var workout struct {
		Date      string `json:"date"`
		Exercises []struct {
			ExerciseID int `json:"exercise_id"`
			Sets       int `json:"sets"`
			Reps       int `json:"reps"`
		} `json:"exercises"`
	}
	s.Require().NoError(resp.decode(&workout))
	s.Regexp(`^\d{4}-\d{2}-\d{2}$`, workout.Date)
	s.Require().Len(workout.Exercises, 1)
	s.Equal(exerciseID, workout.Exercises[0].ExerciseID)
	s.Equal(3, workout.Exercises[0].Sets)
	s.Equal(10, workout.Exercises[0].Reps)

	resp = s.request(http.MethodGet, "/stats/summary", alice.AccessToken, nil)
	s.Require().Equal(http.StatusOK, resp.status)
	var summary struct {
		TotalWorkouts        int     `json:"total_workouts"`
		TotalDurationMinutes int     `json:"total_duration_minutes"`
		WorkoutsLast30Days   int     `json:"workouts_last_30_days"`
		MostFrequentExercise *string `json:"most_frequent_exercise"`
		LastWorkoutDate      *string `json:"last_workout_date"`
	}
	s.Require().NoError(resp.decode(&summary))
	s.Equal(1, summary.TotalWorkouts)
	s.Equal(30, summary.TotalDurationMinutes)
	s.Equal(1, summary.WorkoutsLast30Days)
	s.Require().NotNil(summary.MostFrequentExercise)
	s.Contains(*summary.MostFrequentExercise, "Squat")
	s.Require().NotNil(summary.LastWorkoutDate)
	s.Equal(workout.Date, *summary.LastWorkoutDate)

	resp = s.request(http.MethodGet, "/stats/monthly", alice.AccessToken, nil)
	s.Require().Equal(http.StatusOK, resp.status)
	var monthly []struct {
		Count int `json:"count"`
	}
	s.Require().NoError(resp.decode(&monthly))
	s.Len(monthly, 12)

	resp = s.request(http.MethodGet, "/stats/exercises", alice.AccessToken, nil)
	s.Require().Equal(http.StatusOK, resp.status)
	var frequency []struct {
		ID    int `json:"id"`
		Count int `json:"count"`
	}
	s.Require().NoError(resp.decode(&frequency))
	s.Require().Len(frequency, 1)
	s.Equal(exerciseID, frequency[0].ID)
	s.Equal(1, frequency[0].Count)
}

func (s *IntegrationTestSuite) TestDuplicateUsername() {
	username := s.newUsername()
	s.registerUser(username)

	resp := s.request(http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    "other-" + username + "@fittrack.test",
		"password": "secret-password",
	})
	s.Equal(http.StatusConflict, resp.status)
	s.Contains(string(resp.body), `"error"`)
}

func (s *IntegrationTestSuite) TestWorkoutPartialUpdate() {
	user := s.registerUser(s.newUsername())
	workoutID := s.createWorkout(user.AccessToken, map[string]any{
		"name":     "Morning run",
		"date":     "2024-05-01",
		"duration": 45,
	})

	resp := s.request(http.MethodPut, fmt.Sprintf("/api/workouts/%d", workoutID), user.AccessToken, map[string]any{
		"notes": "felt good",
	})
	s.Require().Equal(http.StatusOK, resp.status, string(resp.body))

	var updated struct {
		Name     string  `json:"name"`
		Date     string  `json:"date"`
		Duration *int    `json:"duration"`
		Notes    *string `json:"notes"`
	}
	s.Require().NoError(resp.decode(&updated))
	s.Equal("Morning run", updated.Name)
	s.Equal("2024-05-01", updated.Date)
	s.Require().NotNil(updated.Duration)
	s.Equal(45, *updated.Duration)
	s.Require().NotNil(updated.Notes)
	s.Equal("felt good", *updated.Notes)
}

func (s *IntegrationTestSuite) TestExerciseDelete() {
	user := s.registerUser(s.newUsername())
	usedID := s.createExercise(user.AccessToken, "Bench "+gofakeit.UUID())
	unusedID := s.createExercise(user.AccessToken, "Curl "+gofakeit.UUID())

	workoutID := s.createWorkout(user.AccessToken, map[string]any{"name": "Push"})
	resp := s.request(http.MethodPost, fmt.Sprintf("/api/workouts/%d/exercises", workoutID), user.AccessToken, map[string]any{
		"exercise_id": usedID,
	})
	s.Require().Equal(http.StatusCreated, resp.status, string(resp.body))

	resp = s.request(http.MethodDelete, fmt.Sprintf("/api/exercises/%d", usedID), user.AccessToken, nil)
	s.Equal(http.StatusConflict, resp.status)

	resp = s.request(http.MethodDelete, fmt.Sprintf("/api/exercises/%d", unusedID), user.AccessToken, nil)
	s.Equal(http.StatusNoContent, resp.status)

	resp = s.request(http.MethodGet, fmt.Sprintf("/api/exercises/%d", unusedID), "", nil)
	s.Equal(http.StatusNotFound, resp.status)
}

func (s *IntegrationTestSuite) TestWorkoutDeleteCascades() {
	user := s.registerUser(s.newUsername())
	exerciseID := s.createExercise(user.AccessToken, "Row "+gofakeit.UUID())
	workoutID := s.createWorkout(user.AccessToken, map[string]any{"name": "Pull"})

	for range 2 {
		resp := s.request(http.MethodPost, fmt.Sprintf("/api/workouts/%d/exercises", workoutID), user.AccessToken, map[string]any{
			"exercise_id": exerciseID,
		})
		s.Require().Equal(http.StatusCreated, resp.status, string(resp.body))
	}

	resp := s.request(http.MethodDelete, fmt.Sprintf("/api/workouts/%d", workoutID), user.AccessToken, nil)
	s.Require().Equal(http.StatusNoContent, resp.status)

	var remaining int
	err := s.pool.QueryRow(
		context.Background(),
		`SELECT COUNT(*) FROM workout_exercise WHERE workout_id = $1`,
		workoutID,
	).Scan(&remaining)
	s.Require().NoError(err)
	s.Zero(remaining)

	resp = s.request(http.MethodGet, fmt.Sprintf("/api/workouts/%d", workoutID), user.AccessToken, nil)
	s.Equal(http.StatusNotFound, resp.status)
}

func (s *IntegrationTestSuite) TestOwnerIsolation() {
	owner := s.registerUser(s.newUsername())
	intruder := s.registerUser(s.newUsername())
	workoutID := s.createWorkout(owner.AccessToken, map[string]any{"name": "Private"})

	path := fmt.Sprintf("/api/workouts/%d", workoutID)
	s.Equal(http.StatusNotFound, s.request(http.MethodGet, path, intruder.AccessToken, nil).status)
	s.Equal(http.StatusNotFound, s.request(http.MethodPut, path, intruder.AccessToken, map[string]any{"name": "mine"}).status)
	s.Equal(http.StatusNotFound, s.request(http.MethodDelete, path, intruder.AccessToken, nil).status)

	resp := s.request(http.MethodGet, "/api/workouts", intruder.AccessToken, nil)
	s.Require().Equal(http.StatusOK, resp.status)
	var list struct {
		Workouts []idResult `json:"workouts"`
		Total    int        `json:"total"`
	}
	s.Require().NoError(resp.decode(&list))
	s.Zero(list.Total)
	s.Empty(list.Workouts)

	s.Equal(http.StatusOK, s.request(http.MethodGet, path, owner.AccessToken, nil).status)
}

func (s *IntegrationTestSuite) TestLogoutInvalidatesToken() {
	user := s.registerUser(s.newUsername())

	resp := s.request(http.MethodGet, "/auth/profile", user.AccessToken, nil)
	s.Require().Equal(http.StatusOK, resp.status)

	resp = s.request(http.MethodGet, "/auth/logout", user.AccessToken, nil)
	s.Require().Equal(http.StatusOK, resp.status)

	resp = s.request(http.MethodGet, "/auth/profile", user.AccessToken, nil)
	s.Equal(http.StatusUnauthorized, resp.status)
}

func (s *IntegrationTestSuite) TestLoginWrongPassword() {
	username := s.newUsername()
	s.registerUser(username)

	resp := s.request(http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": "nope",
	})
	s.Equal(http.StatusUnauthorized, resp.status)

	resp = s.request(http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": "secret-password",
	})
	s.Require().Equal(http.StatusOK, resp.status)
	var res authResult
	s.Require().NoError(resp.decode(&res))
	s.NotEmpty(res.AccessToken)
}

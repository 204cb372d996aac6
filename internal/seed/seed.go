package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/coursebooking/internal/app/models"
	"github.com/yigit/coursebooking/internal/app/repositories"
)

const defaultSeats = 10

func strPtr(s string) *string { return &s }

// DefaultCourses returns the catalog created on first start.
func DefaultCourses() []models.Course {
	return []models.Course{
		{
			ID:          1,
			Name:        "Artificial Intelligence (AI)",
			Description: strPtr("Learn ML, DL, Neural Networks, and AI applications."),
			TotalSeats:  defaultSeats,
		},
		{
			ID:          2,
			Name:        "Quantum Computing",
			Description: strPtr("Learn Qubits, Quantum Gates, and Algorithms."),
			TotalSeats:  defaultSeats,
		},
	}
}

// DefaultSchedule returns the session slots of the default catalog.
func DefaultSchedule() models.ScheduleTable {
	return models.ScheduleTable{
		1: {Start: "5:00 PM", End: "5:30 PM", Date: "December 1, 2025"},
		2: {Start: "5:45 PM", End: "6:16 PM", Date: "December 1, 2025"},
	}
}

// CreateDefaultData seeds the default courses. Existing courses are kept
// unless reset is set, in which case all bookings and courses are cleared first.
func CreateDefaultData(ctx context.Context, store repositories.Store, reset bool, lgr zerolog.Logger) error {
	courses := DefaultCourses()

	lgr.Info().Int("courses", len(courses)).Bool("reset", reset).Msg("Checking/Creating default courses...")
	if err := store.SeedCourses(ctx, courses, reset); err != nil {
		lgr.Error().Err(err).Msg("Error creating default courses")
		return fmt.Errorf("seed default courses: %w", err)
	}

	lgr.Info().Msg("Default courses ready.")
	return nil
}

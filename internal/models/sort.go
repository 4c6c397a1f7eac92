package models

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortPlans orders plans by name using locale-aware collation, so that
// "bench" and "Bench" sort next to each other rather than by byte value.
// Ties keep their stored order.
func SortPlans(plans []WorkoutPlan) {
	c := collate.New(language.English, collate.Loose)
	sort.SliceStable(plans, func(i, j int) bool {
		return c.CompareString(plans[i].Name, plans[j].Name) < 0
	})
}

// SortWorkouts orders workouts most recent first.
func SortWorkouts(workouts []Workout) {
	sort.SliceStable(workouts, func(i, j int) bool {
		return workouts[i].Date.After(workouts[j].Date)
	})
}

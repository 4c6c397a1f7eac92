package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// ExercisesCodecVersion identifies the layout of the exercises column: a
// bare JSON array of {id, name, amountOfSets, sets:[{reps, weight}]}. Any
// change to that layout needs a new version and a migration.
const ExercisesCodecVersion = 1

// dateLayout matches JavaScript's Date.prototype.toISOString.
const dateLayout = "2006-01-02T15:04:05.000Z"

// EncodeExercises serializes exercises for the exercises column. Nil set
// lists are written as [] and HTML characters are left unescaped, so the
// output matches what existing clients stored.
func EncodeExercises(exercises []models.Exercise) (string, error) {
	out := make([]models.Exercise, len(exercises))
	for i, e := range exercises {
		if e.Sets == nil {
			e.Sets = []models.ExerciseSet{}
		}
		out[i] = e
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return "", fmt.Errorf("encoding exercises: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// DecodeExercises parses the exercises column. Malformed text yields
// ErrCorruptRecord.
func DecodeExercises(text string) ([]models.Exercise, error) {
	var exercises []models.Exercise
	if err := json.Unmarshal([]byte(text), &exercises); err != nil {
		return nil, fmt.Errorf("%w: decoding exercises: %w", ErrCorruptRecord, err)
	}
	if exercises == nil {
		exercises = []models.Exercise{}
	}
	for i := range exercises {
		if exercises[i].Sets == nil {
			exercises[i].Sets = []models.ExerciseSet{}
		}
	}
	return exercises, nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parsing date %q: %w", ErrCorruptRecord, s, err)
	}
	return t, nil
}

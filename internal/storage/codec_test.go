package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// TestEncodeExercisesCompat verifies the exact bytes written to the
// exercises column, including [] for plan exercises and unescaped HTML.
func TestEncodeExercisesCompat(t *testing.T) {
	tests := []struct {
		name      string
		exercises []models.Exercise
		want      string
	}{
		{
			name:      "plan exercise with nil sets",
			exercises: []models.Exercise{{ID: "a", Name: "Bench", AmountOfSets: 3}},
			want:      `[{"id":"a","name":"Bench","amountOfSets":3,"sets":[]}]`,
		},
		{
			name: "workout exercise",
			exercises: []models.Exercise{{ID: "a", Name: "Curl <EZ> & co", AmountOfSets: 2, Sets: []models.ExerciseSet{
				{Reps: "8", Weight: "20"}, {},
			}}},
			want: `[{"id":"a","name":"Curl <EZ> & co","amountOfSets":2,"sets":[{"reps":"8","weight":"20"},{"reps":"","weight":""}]}]`,
		},
		{
			name:      "empty",
			exercises: nil,
			want:      `[]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeExercises(tt.exercises)
			if err != nil {
				t.Fatalf("EncodeExercises: %v", err)
			}
			if got != tt.want {
				t.Errorf("EncodeExercises =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

// TestDecodeExercises covers tolerant decoding of stored text: missing set
// fields, null sets, and malformed input.
func TestDecodeExercises(t *testing.T) {
	got, err := DecodeExercises(`[{"id":"a","name":"Row","amountOfSets":2,"sets":[{"reps":"5"},{}]},{"id":"b","name":"Dip","amountOfSets":1,"sets":null}]`)
	if err != nil {
		t.Fatalf("DecodeExercises: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d exercises, want 2", len(got))
	}
	if got[0].Sets[0].Reps != "5" || got[0].Sets[0].Weight != "" {
		t.Errorf("set 0 = %+v", got[0].Sets[0])
	}
	if got[1].Sets == nil {
		t.Error("null sets decoded as nil, want empty slice")
	}

	for _, bad := range []string{"", "{", `{"id":"a"}`, `[{"amountOfSets":"three"}]`} {
		if _, err := DecodeExercises(bad); !errors.Is(err, ErrCorruptRecord) {
			t.Errorf("DecodeExercises(%q) = %v, want ErrCorruptRecord", bad, err)
		}
	}
}

// TestDateFormat verifies dates are written like JavaScript's toISOString
// and parsed back from either millisecond or plain RFC 3339 text.
func TestDateFormat(t *testing.T) {
	d := time.Date(2024, 2, 29, 23, 5, 7, 45_000_000, time.FixedZone("CET", 3600))
	if got, want := formatDate(d), "2024-02-29T22:05:07.045Z"; got != want {
		t.Errorf("formatDate = %q, want %q", got, want)
	}
	for _, s := range []string{"2024-02-29T22:05:07.045Z", "2024-02-29T23:05:07.045+01:00"} {
		got, err := parseDate(s)
		if err != nil {
			t.Fatalf("parseDate(%q): %v", s, err)
		}
		if !got.Equal(d) {
			t.Errorf("parseDate(%q) = %v, want %v", s, got, d)
		}
	}
	if _, err := parseDate("3/1/2024"); !errors.Is(err, ErrCorruptRecord) {
		t.Errorf("parseDate(locale) = %v, want ErrCorruptRecord", err)
	}
}

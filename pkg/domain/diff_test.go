package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		old  BeliefState
		new  BeliefState
		want map[string]any // nil means no diff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  BeliefState{"a": 1.0},
			want: map[string]any{"a": 1.0},
		},
		{
			name: "No Changes",
			old:  BeliefState{"a": 1.0, "b": true},
			new:  BeliefState{"a": 1.0, "b": true},
			want: nil,
		},
		{
			name: "Added & Modified",
			old:  BeliefState{"a": 1.0, "b": "old"},
			new:  BeliefState{"a": 1.0, "b": "new", "c": true},
			want: map[string]any{"b": "new", "c": true},
		},
		{
			name: "Deletion",
			old:  BeliefState{"a": 1.0, "b": 2.0},
			new:  BeliefState{"a": 1.0},
			want: map[string]any{"b": nil},
		},
		{
			name: "List Values Compared Deeply",
			old:  BeliefState{"l": []any{"x", "y"}},
			new:  BeliefState{"l": []any{"x", "y"}},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff("u1", tt.old, tt.new)
			if tt.want == nil {
				if got != nil {
					t.Errorf("Diff() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Diff() = nil, want %v", tt.want)
			}
			if got.UserID != "u1" {
				t.Errorf("Diff().UserID = %q, want u1", got.UserID)
			}
			if !reflect.DeepEqual(got.Changes, tt.want) {
				t.Errorf("Diff().Changes = %v, want %v", got.Changes, tt.want)
			}
		})
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Deletions as Null", func(t *testing.T) {
		diff := Diff("u1", BeliefState{"a": 1.0, "b": 2.0}, BeliefState{"a": 1.0})
		if diff == nil {
			t.Fatal("Expected diff, got nil")
		}

		bytes, _ := json.Marshal(diff)
		if !strings.Contains(string(bytes), `"b":null`) {
			t.Errorf("JSON should contain 'b':null for deletion, got: %s", string(bytes))
		}
	})

	t.Run("Empty Diff", func(t *testing.T) {
		var d *BeliefDiff
		if !d.IsEmpty() {
			t.Error("nil diff should be empty")
		}
	})
}

func TestBeliefStateClone(t *testing.T) {
	orig := BeliefState{"n": 1.0, "l": []any{"a"}}
	c := orig.Clone()
	c["n"] = 2.0
	c["l"].([]any)[0] = "b"

	if orig["n"] != 1.0 {
		t.Errorf("clone mutated scalar: %v", orig["n"])
	}
	if orig["l"].([]any)[0] != "a" {
		t.Errorf("clone mutated list: %v", orig["l"])
	}
}

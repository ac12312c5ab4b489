package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestParseStringOrArray(t *testing.T) {
	tests := []struct {
		name    string
		param   interface{}
		want    []string
		wantErr string
	}{
		{
			name:  "single string",
			param: "thread-1",
			want:  []string{"thread-1"},
		},
		{
			name:  "array of strings",
			param: []interface{}{"a", "b", "c"},
			want:  []string{"a", "b", "c"},
		},
		{
			name:    "nil",
			param:   nil,
			wantErr: "messageIds is required",
		},
		{
			name:    "empty string",
			param:   "",
			wantErr: "messageIds cannot be empty",
		},
		{
			name:    "empty array",
			param:   []interface{}{},
			wantErr: "messageIds cannot be empty",
		},
		{
			name:    "array with non-string",
			param:   []interface{}{"a", 2},
			wantErr: "messageIds[1] must be a string",
		},
		{
			name:    "array with empty string",
			param:   []interface{}{"a", ""},
			wantErr: "messageIds[1] cannot be empty",
		},
		{
			name:    "number",
			param:   42.0,
			wantErr: "messageIds must be a string or array of strings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringOrArray(tt.param, "messageIds")
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tt.wantErr)
				}
				if err.Error() != tt.wantErr {
					t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d items, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("item %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestProcess(t *testing.T) {
	ctx := context.Background()

	results := Process(ctx, []string{"ok-1", "bad", "ok-2"}, func(id string) (string, error) {
		if id == "bad" {
			return "", errors.New("boom")
		}
		return "done " + id, nil
	})

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Status != "success" || results[0].Result != "done ok-1" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].Status != "error" || results[1].Error != "boom" {
		t.Errorf("unexpected second result: %+v", results[1])
	}
	if results[2].Status != "success" {
		t.Errorf("failed item should not stop the batch: %+v", results[2])
	}
}

func TestProcessCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	results := Process(ctx, []string{"a", "b", "c"}, func(id string) (string, error) {
		calls++
		cancel()
		return "done", nil
	})

	if calls != 1 {
		t.Errorf("expected exactly one call after cancellation, got %d", calls)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Status != "success" {
		t.Errorf("first item should have completed: %+v", results[0])
	}
	for _, r := range results[1:] {
		if r.Status != "error" || !strings.Contains(r.Error, "context canceled") {
			t.Errorf("remaining item should record cancellation: %+v", r)
		}
	}
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		{ID: "1", Status: "success", Result: "archived"},
		{ID: "2", Status: "error", Error: "not found"},
		{ID: "3", Status: "success", Result: "archived"},
	}

	formatted := FormatResults(results)

	var s Summary
	if err := json.Unmarshal([]byte(formatted), &s); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if s.Total != 3 || s.Successful != 2 || s.Failed != 1 {
		t.Errorf("totals = %d/%d/%d, want 3/2/1", s.Total, s.Successful, s.Failed)
	}
	if len(s.Results) != 3 {
		t.Errorf("got %d results in output, want 3", len(s.Results))
	}
}

func TestFormatResultsEmpty(t *testing.T) {
	formatted := FormatResults(nil)

	var s Summary
	if err := json.Unmarshal([]byte(formatted), &s); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if s.Total != 0 || s.Successful != 0 || s.Failed != 0 {
		t.Errorf("unexpected totals for empty batch: %+v", s)
	}
}

func ExampleFormatResults() {
	results := Process(context.Background(), []string{"1"}, func(id string) (string, error) {
		return "ok", nil
	})
	var s Summary
	_ = json.Unmarshal([]byte(FormatResults(results)), &s)
	fmt.Println(s.Total, s.Successful, s.Failed)
	// Output: 1 1 0
}

package siray

import (
	"reflect"
	"testing"
)

func TestTaskStatus_Predicates(t *testing.T) {
	// Every documented status token must land in exactly one bucket.
	tests := []struct {
		status     Status
		completed  bool
		failed     bool
		processing bool
	}{
		{StatusNotStart, false, false, true},
		{StatusSubmitted, false, false, true},
		{StatusQueued, false, false, true},
		{StatusInProgress, false, false, true},
		{StatusSuccess, true, false, false},
		{StatusFailure, false, true, false},
		// Forward compatibility: synonyms and unknown states.
		{"FAILED", false, true, false},
		{"success", true, false, false},
		{"SOME_NEW_STATE", false, false, true},
		{"UNKNOWN", false, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			ts := &TaskStatus{Status: tt.status}

			if got := ts.IsCompleted(); got != tt.completed {
				t.Errorf("IsCompleted() = %t, want %t", got, tt.completed)
			}
			if got := ts.IsFailed(); got != tt.failed {
				t.Errorf("IsFailed() = %t, want %t", got, tt.failed)
			}
			if got := ts.IsProcessing(); got != tt.processing {
				t.Errorf("IsProcessing() = %t, want %t", got, tt.processing)
			}

			// Mutually exclusive, collectively exhaustive.
			count := 0
			for _, b := range []bool{ts.IsCompleted(), ts.IsFailed(), ts.IsProcessing()} {
				if b {
					count++
				}
			}
			if count != 1 {
				t.Errorf("status %q matched %d predicates, want exactly 1", tt.status, count)
			}
			if ts.IsTerminal() != (tt.completed || tt.failed) {
				t.Errorf("IsTerminal() = %t, inconsistent with predicates", ts.IsTerminal())
			}
		})
	}
}

func TestTaskStatus_ProgressPercent(t *testing.T) {
	tests := []struct {
		progress string
		want     int
	}{
		{"100%", 100},
		{"45%", 45},
		{"0%", 0},
		{"45", 45},
		{" 45% ", 45},
		{"", 0},
		{"garbage", 0},
		{"%", 0},
		{"-5%", 0},
	}

	for _, tt := range tests {
		t.Run(tt.progress, func(t *testing.T) {
			ts := &TaskStatus{Progress: tt.progress}
			if got := ts.ProgressPercent(); got != tt.want {
				t.Errorf("ProgressPercent(%q) = %d, want %d", tt.progress, got, tt.want)
			}
		})
	}
}

func TestTaskStatus_Result(t *testing.T) {
	ts := &TaskStatus{}
	if got := ts.Result(); got != "" {
		t.Errorf("Result() with no outputs = %q, want empty", got)
	}

	ts.Outputs = []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"}
	if got := ts.Result(); got != "https://cdn.example.com/a.png" {
		t.Errorf("Result() = %q, want first output", got)
	}
}

func TestNewTaskStatus_ParsesEnvelope(t *testing.T) {
	data := map[string]any{
		"code":    "success",
		"message": "",
		"data": map[string]any{
			"task_id":     "task-123",
			"action":      "imageGenerate",
			"status":      "SUCCESS",
			"outputs":     []any{"https://cdn.example.com/out.png"},
			"progress":    "100%",
			"submit_time": float64(1762512511),
			"start_time":  float64(1762512515),
			"finish_time": float64(1762512530),
		},
	}

	ts := newTaskStatus(data)

	if ts.Code != "success" || ts.TaskID != "task-123" || ts.Action != "imageGenerate" {
		t.Errorf("parsed code=%q task=%q action=%q", ts.Code, ts.TaskID, ts.Action)
	}
	if ts.Status != StatusSuccess {
		t.Errorf("Status = %q, want SUCCESS", ts.Status)
	}
	if !reflect.DeepEqual(ts.Outputs, []string{"https://cdn.example.com/out.png"}) {
		t.Errorf("Outputs = %v", ts.Outputs)
	}
	if ts.ProgressPercent() != 100 {
		t.Errorf("ProgressPercent() = %d, want 100", ts.ProgressPercent())
	}
	if ts.SubmitTime != 1762512511 || ts.StartTime != 1762512515 || ts.FinishTime != 1762512530 {
		t.Errorf("timestamps = %d/%d/%d", ts.SubmitTime, ts.StartTime, ts.FinishTime)
	}
	if ts.SubmitTime > ts.StartTime || ts.StartTime > ts.FinishTime {
		t.Error("timestamps should be non-decreasing")
	}
	if !ts.IsCompleted() || len(ts.Outputs) == 0 {
		t.Error("success status should carry outputs")
	}
}

func TestNewTaskStatus_FailedTask(t *testing.T) {
	ts := newTaskStatus(map[string]any{
		"code": "success",
		"data": map[string]any{
			"task_id":     "task-456",
			"status":      "FAILURE",
			"fail_reason": "content policy violation",
		},
	})

	if !ts.IsFailed() {
		t.Fatal("expected failed task")
	}
	if ts.FailReason != "content policy violation" {
		t.Errorf("FailReason = %q", ts.FailReason)
	}
	if len(ts.Outputs) != 0 {
		t.Errorf("failed task should have no outputs, got %v", ts.Outputs)
	}
}

func TestNewTaskStatus_MissingData(t *testing.T) {
	ts := newTaskStatus(map[string]any{"code": "success"})
	if ts.Status != "UNKNOWN" {
		t.Errorf("Status = %q, want UNKNOWN fallback", ts.Status)
	}
	if !ts.IsProcessing() {
		t.Error("unknown status should count as processing")
	}
}

func TestNewGenerationResponse(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want string
	}{
		{"task_id field", map[string]any{"task_id": "t-1"}, "t-1"},
		{"id fallback", map[string]any{"id": "t-2"}, "t-2"},
		{"task_id wins", map[string]any{"task_id": "t-1", "id": "t-2"}, "t-1"},
		{"neither", map[string]any{"other": "x"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := newGenerationResponse(tt.data)
			if resp.TaskID != tt.want {
				t.Errorf("TaskID = %q, want %q", resp.TaskID, tt.want)
			}
			if !reflect.DeepEqual(resp.Raw, tt.data) {
				t.Error("Raw should hold the full payload")
			}
		})
	}
}

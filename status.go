package siray

import (
	"strconv"
	"strings"
)

// Status is the lifecycle state of a generation task as reported by the
// service.
type Status string

// Status tokens reported by the service. The set of intermediate states
// is open-ended; only SUCCESS and the failure tokens are terminal.
const (
	StatusNotStart   Status = "NOT_START"
	StatusSubmitted  Status = "SUBMITTED"
	StatusQueued     Status = "QUEUED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusSuccess    Status = "SUCCESS"
	StatusFailure    Status = "FAILURE"
)

// GenerationResponse is the acknowledgement of an asynchronous generation
// request. TaskID identifies the task for later status queries; Raw holds
// the full response payload.
type GenerationResponse struct {
	TaskID string
	Raw    map[string]any
}

func newGenerationResponse(data map[string]any) *GenerationResponse {
	id, _ := data["task_id"].(string)
	if id == "" {
		id, _ = data["id"].(string)
	}
	return &GenerationResponse{TaskID: id, Raw: data}
}

// TaskStatus is the state of a generation task. Outputs is non-empty only
// once the task has succeeded; FailReason is set only when it has failed.
type TaskStatus struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	TaskID     string   `json:"task_id"`
	Action     string   `json:"action"`
	Status     Status   `json:"status"`
	Outputs    []string `json:"outputs"`
	FailReason string   `json:"fail_reason,omitempty"`
	Progress   string   `json:"progress,omitempty"`
	SubmitTime int64    `json:"submit_time,omitempty"`
	StartTime  int64    `json:"start_time,omitempty"`
	FinishTime int64    `json:"finish_time,omitempty"`

	Raw map[string]any `json:"-"`
}

// newTaskStatus builds a TaskStatus from the query response, which nests
// the task fields under a "data" envelope.
func newTaskStatus(data map[string]any) *TaskStatus {
	ts := &TaskStatus{Raw: data}

	ts.Code = stringField(data, "code")
	ts.Message = stringField(data, "message")

	task, _ := data["data"].(map[string]any)
	ts.TaskID = stringField(task, "task_id")
	ts.Action = stringField(task, "action")
	ts.Status = Status(stringField(task, "status"))
	if ts.Status == "" {
		ts.Status = "UNKNOWN"
	}
	ts.FailReason = stringField(task, "fail_reason")
	ts.Progress = stringField(task, "progress")
	ts.SubmitTime = intField(task, "submit_time")
	ts.StartTime = intField(task, "start_time")
	ts.FinishTime = intField(task, "finish_time")

	if outputs, ok := task["outputs"].([]any); ok {
		for _, out := range outputs {
			if url, ok := out.(string); ok {
				ts.Outputs = append(ts.Outputs, url)
			}
		}
	}

	return ts
}

// IsCompleted reports whether the task finished successfully.
func (ts *TaskStatus) IsCompleted() bool {
	return strings.ToUpper(string(ts.Status)) == string(StatusSuccess)
}

// IsFailed reports whether the task reached the failure state. The
// service documents FAILURE; FAILED is accepted as a synonym.
func (ts *TaskStatus) IsFailed() bool {
	switch strings.ToUpper(string(ts.Status)) {
	case string(StatusFailure), "FAILED":
		return true
	}
	return false
}

// IsProcessing reports whether the task is still in flight. Anything that
// is neither success nor failure counts as processing, so new
// intermediate states the service may add are handled without changes.
func (ts *TaskStatus) IsProcessing() bool {
	return !ts.IsCompleted() && !ts.IsFailed()
}

// IsTerminal reports whether no further state transitions are expected.
func (ts *TaskStatus) IsTerminal() bool {
	return ts.IsCompleted() || ts.IsFailed()
}

// Result returns the first output URL, or "" while there are no outputs.
func (ts *TaskStatus) Result() string {
	if len(ts.Outputs) == 0 {
		return ""
	}
	return ts.Outputs[0]
}

// ProgressPercent parses the progress string ("45%" -> 45). It returns 0
// when progress is absent or unparseable.
func (ts *TaskStatus) ProgressPercent() int {
	p := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(ts.Progress), "%"))
	if p == "" {
		return 0
	}
	n, err := strconv.Atoi(p)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// intField tolerates both float64 (json decoding) and string timestamps.
func intField(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

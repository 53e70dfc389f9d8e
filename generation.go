package siray

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultPollInterval = 2 * time.Second
	minPollInterval     = 100 * time.Millisecond
)

// GenerationRequest describes one generation task. Model and Prompt are
// required; Image optionally references an input image (URL or embedded
// data). Extra is merged verbatim into the request body — keys are passed
// through to the service unvalidated, so model-specific parameters the SDK
// does not know about work without changes here.
type GenerationRequest struct {
	Model  string
	Prompt string
	Image  string
	Extra  map[string]any
}

func (r *GenerationRequest) body() map[string]any {
	body := map[string]any{
		"model":  r.Model,
		"prompt": r.Prompt,
	}
	if r.Image != "" {
		body["image"] = r.Image
	}
	for k, v := range r.Extra {
		body[k] = v
	}
	return body
}

// RunOptions tunes the Run polling loop. The zero value polls every 2s
// with no deadline.
type RunOptions struct {
	// PollInterval is the spacing between status queries. Values below
	// 100ms are clamped up to 100ms; zero means the 2s default.
	PollInterval time.Duration
	// Timeout bounds the total wall-clock time spent polling. Zero means
	// poll forever. Exceeding it returns a *TimeoutError; the server-side
	// task keeps running either way.
	Timeout time.Duration
}

// GenerationService submits and tracks generation tasks for one media
// kind. Image and video share this implementation and differ only in
// endpoint path and action tag.
type GenerationService struct {
	client *Client
	path   string
	action string
}

// Action returns the action tag the service reports for tasks of this
// kind, e.g. "imageGenerate".
func (s *GenerationService) Action() string { return s.action }

// GenerateAsync submits a generation task and returns its task ID without
// waiting for completion. Missing model or prompt fails before any network
// call.
func (s *GenerationService) GenerateAsync(ctx context.Context, req *GenerationRequest) (*GenerationResponse, error) {
	if req == nil {
		return nil, &ValidationError{Message: "generation request is required"}
	}
	if req.Model == "" {
		return nil, &ValidationError{Message: "model is required"}
	}
	if req.Prompt == "" {
		return nil, &ValidationError{Message: "prompt is required"}
	}

	data, err := s.client.post(ctx, s.path, req.body())
	if err != nil {
		return nil, err
	}

	return newGenerationResponse(data), nil
}

// QueryTask fetches the current status of a previously submitted task.
func (s *GenerationService) QueryTask(ctx context.Context, taskID string) (*TaskStatus, error) {
	if taskID == "" {
		return nil, &ValidationError{Message: "task ID is required"}
	}

	data, err := s.client.get(ctx, s.path+"/"+taskID)
	if err != nil {
		return nil, err
	}

	return newTaskStatus(data), nil
}

// Run submits a task and blocks until it reaches a terminal state,
// polling at opts.PollInterval. A failed task is returned, not an error —
// check IsFailed. A *TimeoutError is returned when opts.Timeout elapses
// first; that only stops polling, the server-side task is not cancelled.
func (s *GenerationService) Run(ctx context.Context, req *GenerationRequest, opts *RunOptions) (*TaskStatus, error) {
	if opts == nil {
		opts = &RunOptions{}
	}

	interval := opts.PollInterval
	if interval == 0 {
		interval = defaultPollInterval
	}
	if interval < minPollInterval {
		interval = minPollInterval
	}

	resp, err := s.GenerateAsync(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.TaskID == "" {
		return nil, fmt.Errorf("siray: generation response did not include a task ID")
	}

	start := time.Now()
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		status, err := s.QueryTask(ctx, resp.TaskID)
		if err != nil {
			return nil, err
		}
		if status.IsTerminal() {
			return status, nil
		}

		if opts.Timeout > 0 && time.Since(start) >= opts.Timeout {
			return nil, &TimeoutError{TaskID: resp.TaskID, Elapsed: time.Since(start)}
		}

		timer.Reset(interval)
	}
}

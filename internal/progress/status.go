package progress

import (
	"sync"
	"time"
)

// StageStatus is the lifecycle state of one pipeline stage.
type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageActive    StageStatus = "active"
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
)

// StageKey identifies one of the pipeline's three stages (spec.md §4.10).
type StageKey string

const (
	StageAddCommitsAndSummaries StageKey = "add_commits_and_summaries"
	StageCommitAmplification    StageKey = "commit_amplification"
	StageGenerateCommitEmbeddings StageKey = "generate_commit_embeddings"
)

// Stage is one entry in ProjectStatus.Stages.
type Stage struct {
	Name     string      `json:"name"`
	Status   StageStatus `json:"status"`
	Progress float64     `json:"progress"`
	Error    string      `json:"error,omitempty"`
}

// ProjectStatus is the full per-project status document persisted to
// status.json (spec.md §4.10, original_source lib/utils/log_utils.py shape).
type ProjectStatus struct {
	Stages          map[StageKey]Stage `json:"stages"`
	OverallProgress float64            `json:"overall_progress"`
	OverallStatus   StageStatus        `json:"overall_status"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// Tracker holds the mutable ProjectStatus for one project, safe for
// concurrent reads (status queries) and a single writer goroutine (the
// periodic updater and stage transitions).
type Tracker struct {
	mu     sync.Mutex
	status ProjectStatus
	now    func() time.Time
}

// NewTracker initializes a Tracker with the given stages, all pending.
func NewTracker(stages []StageKey, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	st := make(map[StageKey]Stage, len(stages))
	for _, k := range stages {
		st[k] = Stage{Name: string(k), Status: StagePending}
	}
	return &Tracker{
		status: ProjectStatus{Stages: st, OverallStatus: StagePending, UpdatedAt: now()},
		now:    now,
	}
}

// StartStage marks a stage active.
func (t *Tracker) StartStage(key StageKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.status.Stages[key]
	s.Status = StageActive
	t.status.Stages[key] = s
	t.recomputeLocked()
}

// SetProgress updates a stage's progress percentage (0-100), reported by
// the stage's own progress getter.
func (t *Tracker) SetProgress(key StageKey, progress float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.status.Stages[key]
	s.Progress = progress
	t.status.Stages[key] = s
	t.recomputeLocked()
}

// CompleteStage marks a stage completed at 100%.
func (t *Tracker) CompleteStage(key StageKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.status.Stages[key]
	s.Status = StageCompleted
	s.Progress = 100
	t.status.Stages[key] = s
	t.recomputeLocked()
}

// FailStage marks a stage failed with err, and the overall status failed.
func (t *Tracker) FailStage(key StageKey, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.status.Stages[key]
	s.Status = StageFailed
	if err != nil {
		s.Error = err.Error()
	}
	t.status.Stages[key] = s
	t.status.OverallStatus = StageFailed
	t.status.UpdatedAt = t.now()
}

// Snapshot returns a copy of the current status, safe to persist or
// serialize without holding the Tracker's lock.
func (t *Tracker) Snapshot() ProjectStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	stages := make(map[StageKey]Stage, len(t.status.Stages))
	for k, v := range t.status.Stages {
		stages[k] = v
	}
	return ProjectStatus{
		Stages:          stages,
		OverallProgress: t.status.OverallProgress,
		OverallStatus:   t.status.OverallStatus,
		UpdatedAt:       t.status.UpdatedAt,
	}
}

// recomputeLocked derives OverallProgress as the mean of stage progresses,
// bounded to [0,100], and OverallStatus from the active stage set. Must be
// called with mu held.
func (t *Tracker) recomputeLocked() {
	if t.status.OverallStatus == StageFailed {
		t.status.UpdatedAt = t.now()
		return
	}
	var sum float64
	allCompleted := true
	anyActive := false
	for _, s := range t.status.Stages {
		sum += s.Progress
		if s.Status == StageActive {
			anyActive = true
		}
		if s.Status != StageCompleted {
			allCompleted = false
		}
	}
	n := len(t.status.Stages)
	overall := 0.0
	if n > 0 {
		overall = sum / float64(n)
	}
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}
	t.status.OverallProgress = overall

	switch {
	case allCompleted && n > 0:
		t.status.OverallStatus = StageCompleted
	case anyActive:
		t.status.OverallStatus = StageActive
	default:
		t.status.OverallStatus = StagePending
	}
	t.status.UpdatedAt = t.now()
}

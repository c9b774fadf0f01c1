package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"deepscout/pkg/report"
	"deepscout/pkg/research"
)

// Job statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var ErrJobNotFound = errors.New("job not found")

// Service owns the in-memory job store and runs research jobs in background
// workers. The generation and search clients are shared across workers so
// their concurrency limits hold process-wide.
type Service struct {
	Gen      research.Generator
	Searcher research.Searcher

	mu   sync.RWMutex
	jobs map[uuid.UUID]*Job
	logs map[uuid.UUID][]LogEntry
}

func NewService(gen research.Generator, searcher research.Searcher) *Service {
	return &Service{
		Gen:      gen,
		Searcher: searcher,
		jobs:     make(map[uuid.UUID]*Job),
		logs:     make(map[uuid.UUID][]LogEntry),
	}
}

type Job struct {
	ID        uuid.UUID        `json:"id"`
	Query     string           `json:"query"`
	Breadth   int              `json:"breadth"`
	Depth     int              `json:"depth"`
	Status    string           `json:"status"`
	State     research.State   `json:"state,omitempty"`
	Error     string           `json:"error,omitempty"`
	Result    *research.Result `json:"result,omitempty"`
	Report    *string          `json:"report,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type CreateJobRequest struct {
	Query   string `json:"query"`
	Breadth int    `json:"breadth"`
	Depth   int    `json:"depth"`
}

type LogEntry struct {
	ID        int             `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Level     string          `json:"level"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata"`
}

// CreateJob registers a new job and starts its background worker. Breadth
// and depth are normalized the same way the CLI normalizes them.
func (s *Service) CreateJob(req CreateJobRequest) (*Job, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.New("query is required")
	}

	r := research.Request{Query: req.Query, Breadth: req.Breadth, Depth: req.Depth}.Normalize()
	now := time.Now()
	job := &Job{
		ID:        uuid.New(),
		Query:     r.Query,
		Breadth:   r.Breadth,
		Depth:     r.Depth,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	snapshot := *job
	s.mu.Unlock()

	// Start background worker
	go s.runWorker(job.ID, r)

	return &snapshot, nil
}

func (s *Service) GetJob(id uuid.UUID) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	snapshot := *job
	return &snapshot, nil
}

// ListJobs returns all jobs, newest first.
func (s *Service) ListJobs() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

func (s *Service) GetJobLogs(id uuid.UUID) ([]LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.jobs[id]; !ok {
		return nil, ErrJobNotFound
	}
	return append([]LogEntry(nil), s.logs[id]...), nil
}

func (s *Service) runWorker(jobID uuid.UUID, req research.Request) {
	defer func() {
		if r := recover(); r != nil {
			s.failJob(jobID, fmt.Sprintf("research worker panicked: %v", r))
		}
	}()

	s.update(jobID, func(j *Job) { j.Status = StatusRunning })

	// Configure a per-job engine so this run gets its own logger and state
	// hook while the underlying clients stay shared.
	jobLogger := slog.New(NewJobLogHandler(s, jobID))
	engine := research.NewEngine(s.Gen, s.Searcher)
	engine.Logger = jobLogger
	engine.OnState = func(state research.State) {
		s.update(jobID, func(j *Job) { j.State = state })
	}

	res := engine.Run(context.Background(), req)
	markdown := report.Render(req.Query, res, time.Now())

	s.update(jobID, func(j *Job) {
		j.Status = StatusCompleted
		j.Error = res.Report.Err
		j.Result = &res
		j.Report = &markdown
	})
}

func (s *Service) failJob(jobID uuid.UUID, reason string) {
	jobLogger := slog.New(NewJobLogHandler(s, jobID))
	jobLogger.Error(reason)

	s.update(jobID, func(j *Job) {
		j.Status = StatusFailed
		j.Error = reason
	})
}

func (s *Service) update(jobID uuid.UUID, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return
	}
	fn(job)
	job.UpdatedAt = time.Now()
}

func (s *Service) appendLog(jobID uuid.UUID, e LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = len(s.logs[jobID]) + 1
	s.logs[jobID] = append(s.logs[jobID], e)
}

// Package watch runs scheduled ingestion jobs against the mandi API.
package watch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iiorcrop/mandi/internal/config"
	"github.com/iiorcrop/mandi/internal/jobs"
)

const jobTimeout = 30 * time.Minute

// Watcher manages scheduled jobs
type Watcher struct {
	schedules  map[string]config.JobSchedule
	cron       *cron.Cron
	jobMap     map[string]jobs.Job
	entryIDs   map[string]cron.EntryID
	mu         sync.Mutex
	isRunning  bool
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// NewWatcher creates a new watcher with the given job schedules
func NewWatcher(schedules map[string]config.JobSchedule) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		schedules:  schedules,
		cron:       cron.New(),
		jobMap:     make(map[string]jobs.Job),
		entryIDs:   make(map[string]cron.EntryID),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// RegisterJob registers a job with the watcher
func (w *Watcher) RegisterJob(job jobs.Job) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	jobName := job.Name()
	if _, exists := w.jobMap[jobName]; exists {
		return fmt.Errorf("job with name '%s' already registered", jobName)
	}

	w.jobMap[jobName] = job
	log.Printf("Registered job '%s': %s", jobName, job.Description())
	return nil
}

// Start schedules all enabled jobs and starts the cron loop
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("watcher is already running")
	}

	for jobName, job := range w.jobMap {
		schedule, ok := w.schedules[jobName]
		if !ok {
			log.Printf("No schedule found for job '%s', skipping", jobName)
			continue
		}
		if !schedule.Enabled {
			log.Printf("Job '%s' is disabled, skipping", jobName)
			continue
		}

		entryID, err := w.cron.AddFunc(schedule.Cron, w.runFunc(job, schedule.Parameters))
		if err != nil {
			return fmt.Errorf("failed to schedule job '%s': %w", jobName, err)
		}

		w.entryIDs[jobName] = entryID
		log.Printf("Scheduled job '%s' with cron expression '%s'", jobName, schedule.Cron)
	}

	w.cron.Start()
	w.isRunning = true
	log.Println("Watcher started")
	return nil
}

// Stop stops the watcher and cancels running jobs
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return
	}

	w.cancelFunc()
	w.cron.Stop()
	w.isRunning = false
	log.Println("Watcher stopped")
}

// RunJobNow runs a registered job immediately, outside its schedule
func (w *Watcher) RunJobNow(jobName string) error {
	w.mu.Lock()
	job, ok := w.jobMap[jobName]
	schedule := w.schedules[jobName]
	w.mu.Unlock()

	if !ok {
		return fmt.Errorf("job '%s' not found", jobName)
	}

	w.runFunc(job, schedule.Parameters)()
	return nil
}

// ListJobs returns all registered jobs
func (w *Watcher) ListJobs() []jobs.Job {
	w.mu.Lock()
	defer w.mu.Unlock()

	jobList := make([]jobs.Job, 0, len(w.jobMap))
	for _, job := range w.jobMap {
		jobList = append(jobList, job)
	}
	return jobList
}

// NextRun returns the next scheduled run time for a job
func (w *Watcher) NextRun(jobName string) (time.Time, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entryID, ok := w.entryIDs[jobName]
	if !ok {
		return time.Time{}, fmt.Errorf("job '%s' not scheduled", jobName)
	}

	return w.cron.Entry(entryID).Next, nil
}

func (w *Watcher) runFunc(job jobs.Job, params map[string]string) func() {
	return func() {
		jobCtx, cancel := context.WithTimeout(w.ctx, jobTimeout)
		defer cancel()

		log.Printf("Starting job '%s'", job.Name())
		start := time.Now()
		err := job.Execute(jobCtx, params)
		elapsed := time.Since(start)

		if err != nil {
			log.Printf("Job '%s' failed after %v: %v", job.Name(), elapsed, err)
			return
		}
		job.SetLastRun(time.Now())
		log.Printf("Job '%s' completed successfully in %v", job.Name(), elapsed)
	}
}

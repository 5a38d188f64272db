package systems

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/shaderbind/engine/core"
)

/**
 * @brief Describes a job to be run.
 */
type JobTask struct {
	/** @brief Used in diagnostics only. */
	Name string
	/** @brief Invoked on a worker. Required. */
	Run func() error
	/** @brief Invoked after Run succeeds. Optional. */
	OnComplete func()
	/** @brief Invoked with the error Run returned. Optional. */
	OnFailure func(err error)
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup
	failed     atomic.Int64
	closed     atomic.Bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemShutdown = fmt.Errorf("job system is shut down")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}
	js.start()
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	if err := job.Run(); err != nil {
		js.failed.Add(1)
		core.LogError("job %s failed: %s", job.Name, err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete()
	}
}

/**
 * @brief Stops accepting jobs and waits for the queued ones to finish.
 */
func (js *JobSystem) Shutdown() error {
	if js.closed.Swap(true) {
		return nil
	}
	close(js.jobQueue)
	js.wg.Wait()
	return nil
}

/**
 * @brief Queues the provided job for execution. Blocks while the queue is full.
 * Must not be called concurrently with Shutdown.
 */
func (js *JobSystem) Submit(jt JobTask) error {
	if js.closed.Load() {
		return ErrJobSystemShutdown
	}
	if jt.Run == nil {
		return fmt.Errorf("job %s has no entry point", jt.Name)
	}
	js.jobQueue <- jt
	return nil
}

/** @brief Number of jobs whose entry point returned an error. */
func (js *JobSystem) Failed() int64 {
	return js.failed.Load()
}

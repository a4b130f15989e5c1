package builder

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// writeJob is one destination of one file.
type writeJob struct {
	index      int
	outputPath string // As set on the file, relative to the output dir.
	target     string // Resolved filesystem path.
	data       []byte
}

// writeResult pairs a job with its outcome.
type writeResult struct {
	job writeJob
	err error
}

// groupByTarget batches jobs that resolve to the same file, keeping
// declaration order inside each batch and ordering batches by first use.
func groupByTarget(jobs []writeJob) [][]writeJob {
	var batches [][]writeJob
	slot := make(map[string]int, len(jobs))
	for _, job := range jobs {
		key := filepath.Clean(job.target)
		i, ok := slot[key]
		if !ok {
			i = len(batches)
			slot[key] = i
			batches = append(batches, nil)
		}
		batches[i] = append(batches[i], job)
	}
	return batches
}

// writeConcurrently runs jobs on a pool of maxWorkers goroutines and returns
// the results indexed like jobs, so callers can report in declaration order.
// Jobs sharing a target are written by one worker in declaration order, so
// the last declared content wins.
func writeConcurrently(fsys afero.Fs, jobs []writeJob, maxWorkers int, logger *zap.Logger) []writeResult {
	results := make([]writeResult, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	batches := groupByTarget(jobs)
	if len(batches) < len(jobs) {
		logger.Warn("Output paths overlap, last declared file wins",
			zap.Int("writes", len(jobs)),
			zap.Int("targets", len(batches)))
	}

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
		logger.Debug("Adjusted worker count", zap.Int("workers", maxWorkers))
	}
	if maxWorkers > len(batches) {
		maxWorkers = len(batches)
	}

	queue := make(chan []writeJob, len(batches))
	var wg sync.WaitGroup

	logger.Debug("Initializing output worker pool", zap.Int("workers", maxWorkers))
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go worker(w, fsys, queue, results, &wg, logger.With(zap.Int("workerID", w)))
	}

	for _, batch := range batches {
		queue <- batch
	}
	close(queue)

	wg.Wait()
	return results
}

// worker writes batches from the queue. Each job owns its slot in results.
func worker(id int, fsys afero.Fs, queue <-chan []writeJob, results []writeResult, wg *sync.WaitGroup, logger *zap.Logger) {
	defer wg.Done()

	for batch := range queue {
		for _, job := range batch {
			err := writeFile(fsys, job.target, job.data, logger)
			results[job.index] = writeResult{job: job, err: err}
		}
	}

	logger.Debug("Worker finished", zap.Int("workerID", id))
}

// writeFile creates parent directories and writes data to target.
func writeFile(fsys afero.Fs, target string, data []byte, logger *zap.Logger) error {
	if err := fsys.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
		logger.Error("Failed to create directory", zap.String("path", filepath.Dir(target)), zap.Error(err))
		return err
	}
	if err := afero.WriteFile(fsys, target, data, 0o644); err != nil {
		logger.Error("Failed to write file", zap.String("path", target), zap.Error(err))
		return err
	}
	logger.Debug("Successfully wrote file", zap.String("path", target))
	return nil
}

package concurrent

import "github.com/ogdakke/pathspec/internal/logger"

// Partition splits paths into at most parts contiguous, non-empty chunks.
func Partition(paths []string, parts int) [][]string {
	if len(paths) == 0 {
		return nil
	}
	if parts <= 0 {
		parts = 1
	}
	if parts > len(paths) {
		parts = len(paths)
	}

	size := (len(paths) + parts - 1) / parts
	chunks := make([][]string, 0, parts)
	for start := 0; start < len(paths); start += size {
		end := min(start+size, len(paths))
		chunks = append(chunks, paths[start:end])
	}
	return chunks
}

// Run partitions paths across a worker pool, applies match to every chunk
// and returns the matches in input order.
func Run(paths []string, workerCount int, match MatchFunc) ([]string, error) {
	pool := NewWorkerPool(workerCount, max(workerCount, 0), match)
	chunks := Partition(paths, pool.WorkerCount())

	logger.Debug("Dispatching partitions", "paths", len(paths), "partitions", len(chunks))

	pool.Start()
	go func() {
		for i, chunk := range chunks {
			pool.AddJob(MatchJob{ID: i, Paths: chunk})
		}
		pool.CloseJobs()
	}()

	collector := NewResultCollector()
	for result := range pool.Results() {
		collector.AddResult(result)
	}
	<-pool.Done()
	logger.Trace("Partitions matched", "paths", pool.Processed())

	return collector.GetResults()
}

package hashlaser

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// ============================================================================
// TYPE DEFINITIONS
// ============================================================================

// FileMatcher decides whether a discovered file takes part in hashing
type FileMatcher interface {
	Matches(path string) bool
}

// SkipReason explains why a file is missing from a Grouping
type SkipReason int

const (
	NotSkipped      SkipReason = iota // file was hashed
	SkipHashError                     // open or read failed
	SkipInterrupted                   // shutdown arrived before the file was hashed
)

// String returns a short label for the reason
func (r SkipReason) String() string {
	switch r {
	case NotSkipped:
		return "hashed"
	case SkipHashError:
		return "hash-error"
	case SkipInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// FileResult is the outcome of hashing one candidate file
type FileResult struct {
	Path        string
	Fingerprint string // empty when skipped
	Size        int64
	Reason      SkipReason
	Err         error
}

// Skipped reports whether the file was left out of the grouping
func (fr FileResult) Skipped() bool {
	return fr.Reason != NotSkipped
}

// ScanStats summarises one scan
type ScanStats struct {
	Discovered  int           // regular files found by traversal
	Accepted    int           // files passing the filter
	Hashed      int           // files with a fingerprint
	Skipped     int           // files dropped from the grouping
	BytesHashed int64         // total size of hashed files
	Elapsed     time.Duration // wall time of the whole scan
}

// ScanResult is the completed grouping plus what was left out of it
type ScanResult struct {
	Grouping Grouping
	Skipped  []FileResult
	Stats    ScanStats
}

// ScanOptions configures a Scanner
type ScanOptions struct {
	HashAlgorithm string          // defaults to DefaultHashAlgorithm
	HashWorkers   int             // defaults to runtime.NumCPU()
	HashBuffer    int             // read chunk size, defaults to DefaultChunkSize
	SymlinkMode   string          // defaults to SymlinkModeNone
	Ignore        *IgnoreList     // optional
	ShutdownChan  <-chan struct{} // optional, nil never fires
}

// Scanner finds files with identical content under a directory
type Scanner struct {
	algorithm    *HashAlgorithm
	hashWorkers  int
	hashBuffer   int
	traverse     TraverseOptions
	shutdownChan <-chan struct{}
}

// maxDefaultWorkers caps the per-CPU default pool size
const maxDefaultWorkers = 64

// hashJob is one file waiting to be hashed
type hashJob struct {
	JobID uint64
	Path  string
}

// hashManager runs a fixed pool of hash workers. Each worker appends to its
// own result slice so no lock is held while hashing; the slices are merged
// after every worker has exited.
type hashManager struct {
	scanner    *Scanner
	jobChan    chan *hashJob
	results    [][]FileResult
	wg         sync.WaitGroup
	closed     bool
	closeMutex sync.Mutex
}

// ============================================================================
// SCANNER
// ============================================================================

// NewScanner creates a scanner, applying defaults for unset options
func NewScanner(opts ScanOptions) (*Scanner, error) {
	algoName := opts.HashAlgorithm
	if algoName == "" {
		algoName = DefaultHashAlgorithm
	}
	algorithm, err := GetHashAlgorithm(algoName)
	if err != nil {
		return nil, err
	}

	workers := opts.HashWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > maxDefaultWorkers {
			workers = maxDefaultWorkers
		}
	}
	if err := ValidateHashWorkers(workers); err != nil {
		return nil, err
	}

	buffer := opts.HashBuffer
	if buffer <= 0 {
		buffer = DefaultChunkSize
	}

	mode := strings.ToLower(opts.SymlinkMode)
	if mode == "" {
		mode = SymlinkModeNone
	}
	if err := ValidateSymlinkMode(mode); err != nil {
		return nil, err
	}

	return &Scanner{
		algorithm:   algorithm,
		hashWorkers: workers,
		hashBuffer:  buffer,
		traverse: TraverseOptions{
			SymlinkMode: mode,
			Ignore:      opts.Ignore,
		},
		shutdownChan: opts.ShutdownChan,
	}, nil
}

// Algorithm returns the hash algorithm used for fingerprints
func (s *Scanner) Algorithm() *HashAlgorithm {
	return s.algorithm
}

// HashWorkers returns the size of the hash worker pool
func (s *Scanner) HashWorkers() int {
	return s.hashWorkers
}

// ScanDirectory traverses root, keeps the files accepted by filter and groups them by fingerprint.
// A nil filter accepts every file. ErrInterrupted is returned, together with the
// partial result, when the shutdown channel fired during the scan.
func (s *Scanner) ScanDirectory(root string, filter FileMatcher) (*ScanResult, error) {
	defer VerboseEnter()()
	start := time.Now()

	files := CollectFiles(root, s.traverse)
	VerboseLog(1, "scan: found %d files under %s", len(files), root)

	accepted := files
	if filter != nil {
		accepted = make([]string, 0, len(files))
		for _, f := range files {
			if filter.Matches(f) {
				accepted = append(accepted, f)
			} else if IsDebugEnabled("scan") {
				VerboseLog(3, "scan: filtered out %s", f)
			}
		}
	}
	VerboseLog(1, "scan: %d of %d files accepted by filter", len(accepted), len(files))

	result := s.ScanFiles(accepted)
	result.Stats.Discovered = len(files)
	result.Stats.Elapsed = time.Since(start)

	if s.interrupted() {
		return result, ErrInterrupted
	}
	return result, nil
}

// ScanFiles hashes every file concurrently and returns the grouping once all workers are done.
// Files that cannot be hashed are left out of the grouping and listed in Skipped.
func (s *Scanner) ScanFiles(files []string) *ScanResult {
	defer VerboseEnter()()
	start := time.Now()

	workers := s.hashWorkers
	if workers > len(files) {
		workers = len(files)
	}

	result := &ScanResult{
		Grouping: make(Grouping),
		Stats: ScanStats{
			Discovered: len(files),
			Accepted:   len(files),
		},
	}
	if len(files) == 0 {
		return result
	}

	manager := s.newHashManager(workers)
	for i, path := range files {
		manager.SubmitHashJob(&hashJob{JobID: uint64(i + 1), Path: path})
	}
	manager.FinishSubmitting()
	manager.Wait()

	// Join barrier passed: only this goroutine touches the results now
	for _, workerResults := range manager.results {
		for _, fr := range workerResults {
			if fr.Skipped() {
				result.Skipped = append(result.Skipped, fr)
				result.Stats.Skipped++
				continue
			}
			result.Grouping.Add(fr.Fingerprint, fr.Path)
			result.Stats.Hashed++
			result.Stats.BytesHashed += fr.Size
		}
	}

	result.Stats.Elapsed = time.Since(start)
	VerboseLog(1, "scan: hashed %d files, skipped %d, %d distinct fingerprints",
		result.Stats.Hashed, result.Stats.Skipped, len(result.Grouping))
	return result
}

func (s *Scanner) interrupted() bool {
	select {
	case <-s.shutdownChan:
		return true
	default:
		return false
	}
}

// hashOne fingerprints a single file; it never panics on I/O failure
func (s *Scanner) hashOne(job *hashJob) FileResult {
	fr := FileResult{Path: job.Path}

	if s.interrupted() {
		fr.Reason = SkipInterrupted
		fr.Err = ErrInterrupted
		return fr
	}

	if IsDebugEnabled("hash") {
		VerboseLog(3, "hash: job %d %s", job.JobID, job.Path)
	}

	fingerprint, err := HashFileInterruptible(job.Path, s.algorithm, s.hashBuffer, s.shutdownChan)
	if err != nil {
		fr.Err = err
		fr.Reason = SkipHashError
		if s.interrupted() {
			fr.Reason = SkipInterrupted
		}
		VerboseLog(1, "hash: skipping %s: %v", job.Path, err)
		return fr
	}

	fr.Fingerprint = fingerprint
	if info, err := os.Stat(job.Path); err == nil {
		fr.Size = info.Size()
	}
	return fr
}

// ============================================================================
// HASH WORKER POOL
// ============================================================================

// newHashManager starts numWorkers hash workers
func (s *Scanner) newHashManager(numWorkers int) *hashManager {
	if numWorkers < 1 {
		numWorkers = 1
	}

	manager := &hashManager{
		scanner: s,
		jobChan: make(chan *hashJob, 100),
		results: make([][]FileResult, numWorkers),
	}

	for i := 0; i < numWorkers; i++ {
		manager.wg.Add(1)
		go manager.hashWorker(i)
	}

	return manager
}

// SubmitHashJob queues a file for hashing
func (hm *hashManager) SubmitHashJob(job *hashJob) {
	hm.jobChan <- job
}

// FinishSubmitting signals that no more hash jobs will be submitted
func (hm *hashManager) FinishSubmitting() {
	hm.closeMutex.Lock()
	defer hm.closeMutex.Unlock()

	if !hm.closed {
		close(hm.jobChan)
		hm.closed = true
	}
}

// Wait blocks until every worker has drained the job channel
func (hm *hashManager) Wait() {
	hm.wg.Wait()
}

// hashWorker hashes jobs until the channel is closed. Interrupted jobs are
// still drained so the submitter never blocks.
func (hm *hashManager) hashWorker(slot int) {
	defer hm.wg.Done()

	for job := range hm.jobChan {
		fr := hm.scanner.hashOne(job)
		hm.results[slot] = append(hm.results[slot], fr)
	}

	if IsDebugEnabled("scan") {
		VerboseLog(3, "scan: worker %d finished with %d results", slot, len(hm.results[slot]))
	}
}

// String implements fmt.Stringer for log output
func (st ScanStats) String() string {
	return fmt.Sprintf("discovered=%d accepted=%d hashed=%d skipped=%d bytes=%d elapsed=%s",
		st.Discovered, st.Accepted, st.Hashed, st.Skipped, st.BytesHashed, st.Elapsed.Round(time.Millisecond))
}

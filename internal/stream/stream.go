// Package stream implements the streaming recognition pipeline (spec
// §4.6, §5): a bounded worker pool processes one record per sequence
// number, a reorder buffer bounds in-flight work, and output is flushed to
// stdout in strict sequence order regardless of worker scheduling.
// Grounded on the teacher's internal/jobs channel-and-slog worker-pool
// idiom (cpu_pool.go/cpu_worker.go), adapted from a job-priority-queue
// scheduler to a flat per-record pipeline since spec §4.6's model has no
// notion of job phases or priorities.
package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/jackzampolin/fingerprint/internal/cliout"
	"github.com/jackzampolin/fingerprint/internal/progress"
	"github.com/jackzampolin/fingerprint/internal/recognize"
	"github.com/jackzampolin/fingerprint/internal/record"
	"github.com/jackzampolin/fingerprint/internal/refusal"
)

// Outcome is the run-level result that determines the process exit code
// (spec §6).
type Outcome string

const (
	AllMatched Outcome = "ALL_MATCHED"
	Partial    Outcome = "PARTIAL"
)

// ProcessFunc recognizes one input record. An error return is always a
// pipeline-level refusal (spec §4.7); per-record failures (parse errors,
// assertion failures) are represented within the returned *record.Output
// itself, never as an error.
type ProcessFunc func(*record.Input) (*record.Output, error)

// Config tunes the worker pool and reorder buffer (spec §4.6), plus the
// envelope fields a panic-isolated record must still carry (spec §6):
// these mirror whatever the driver behind ProcessFunc was built with, so a
// recovered panic's output record is indistinguishable in shape from any
// other record.
type Config struct {
	// Jobs is the worker pool degree J. Zero means "available CPUs,
	// minimum 1".
	Jobs int
	// Buffer is the reorder buffer bound B. Zero means 4*Jobs, the spec's
	// stated minimum.
	Buffer int
	// OutputSchema is this tool's output schema tag, stamped into every
	// record's "version" field (spec §6).
	OutputSchema string
	// ToolName and ToolVersion are stamped into a record's tool_versions
	// map.
	ToolName    string
	ToolVersion string
}

func (c Config) resolved() (jobs, buffer int) {
	jobs = c.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs < 1 {
		jobs = 1
	}
	buffer = c.Buffer
	if buffer < 4*jobs {
		buffer = 4 * jobs
	}
	return jobs, buffer
}

type task struct {
	seq   int
	input *record.Input
}

type workResult struct {
	seq     int
	out     *record.Output
	refusal error
}

// Run reads JSONL records from in, recognizes each with process using a
// pool of cfg.Jobs workers, and writes results to out in strict input
// order. It returns the run's overall Outcome, or a non-nil error if a
// worker reported a pipeline-level refusal (the caller renders the
// refusal envelope and exits 2 instead of any JSONL).
//
// Cancellation: if ctx is cancelled (process-level interrupt), Run stops
// reading further input, drains in-flight workers up to the next
// unemitted gap, and returns Partial with a nil error (spec §4.6
// "downgrade to PARTIAL", §5 "no partial record is ever half-written").
func Run(ctx context.Context, in io.Reader, out *cliout.LineWriter, process ProcessFunc, cfg Config, reporter *progress.Reporter, logger *slog.Logger) (Outcome, error) {
	jobs, buffer := cfg.resolved()
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	slots := make(chan struct{}, buffer)
	tasks := make(chan task, buffer)
	results := make(chan workResult, buffer)

	var workers sync.WaitGroup
	workers.Add(jobs)
	for i := 0; i < jobs; i++ {
		go func(id int) {
			defer workers.Done()
			worker(ctx, id, tasks, results, process, logger, cfg)
		}(i)
	}
	go func() {
		workers.Wait()
		close(results)
	}()

	readErrCh := make(chan error, 1)
	go func() {
		defer close(tasks)
		err := readLoop(ctx, in, slots, tasks)
		if err != nil {
			// Cancel immediately: a malformed input line is an E_BAD_INPUT
			// refusal (spec §4.7), which stops the world rather than
			// waiting for in-flight workers to drain on their own clock.
			cancel()
		}
		readErrCh <- err
	}()

	pending := make(map[int]workResult)
	next := 1
	processed, matched, skipped := 0, 0, 0
	sawNoMatch := false
	outcome := AllMatched
	var refErr error
	var writeErr error

	for r := range results {
		if r.refusal != nil {
			if refErr == nil {
				refErr = r.refusal
				cancel()
			}
			<-slots
			continue
		}
		pending[r.seq] = r

		for {
			rr, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			<-slots

			if refErr != nil || writeErr != nil {
				continue
			}

			processed++
			if rr.out.Skipped {
				skipped++
				outcome = Partial
			}
			if !rr.out.Skipped {
				if fr, ok := rr.out.Fingerprint.(recognize.FingerprintResult); ok && fr.Matched {
					matched++
					for _, c := range fr.Children {
						if !c.Matched {
							outcome = Partial
						}
					}
				} else {
					sawNoMatch = true
				}
			}
			if err := out.WriteLine(rr.out); err != nil {
				writeErr = fmt.Errorf("write output record: %w", err)
				continue
			}
			reporter.Progress(processed, matched, skipped)
		}
	}

	if err := <-readErrCh; err != nil && refErr == nil && writeErr == nil {
		refErr = err
	}

	reporter.Flush(processed, matched, skipped)

	if writeErr != nil {
		return outcome, writeErr
	}
	if refErr != nil {
		return outcome, refErr
	}
	if sawNoMatch {
		outcome = Partial
	}
	if ctx.Err() != nil {
		outcome = Partial
	}
	return outcome, nil
}

func readLoop(ctx context.Context, in io.Reader, slots chan struct{}, tasks chan<- task) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	seq := 0
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := append([]byte(nil), scanner.Bytes()...)
		seq++

		parsed, err := record.ParseLine(line)
		if err != nil {
			return refusal.New(refusal.CodeBadInput,
				fmt.Sprintf("malformed JSON on line %d: %v", seq, err),
				map[string]any{"line": seq})
		}

		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			return nil
		}
		select {
		case tasks <- task{seq: seq, input: parsed}:
		case <-ctx.Done():
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return refusal.New(refusal.CodeBadInput, fmt.Sprintf("reading input: %v", err), nil)
	}
	return nil
}

func worker(ctx context.Context, id int, tasks <-chan task, results chan<- workResult, process ProcessFunc, logger *slog.Logger, cfg Config) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			results <- processOne(t, process, logger, id, cfg)
		}
	}
}

func processOne(t task, process ProcessFunc, logger *slog.Logger, workerID int, cfg Config) (result workResult) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("worker panic recovered", "worker", workerID, "seq", t.seq, "panic", rec)
			result = workResult{seq: t.seq, out: skipOutput(t.input, rec, cfg)}
		}
	}()

	out, err := process(t.input)
	if err != nil {
		return workResult{seq: t.seq, refusal: err}
	}
	return workResult{seq: t.seq, out: out}
}

func skipOutput(in *record.Input, panicVal any, cfg Config) *record.Output {
	out := record.FromInput(in, cfg.OutputSchema, cfg.ToolName, cfg.ToolVersion)
	out.Skipped = true
	out.Fingerprint = nil
	out.Warnings = append(out.Warnings, record.Warning{
		Tool:    cfg.ToolName,
		Code:    "E_PARSE",
		Message: fmt.Sprintf("worker panic: %v", panicVal),
	})
	return out
}

package quizverify

import (
	"context"
	"log"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BatchResult pairs a document with its verification outcome
type BatchResult struct {
	DocumentID string              `json:"document_id"`
	Summary    VerificationSummary `json:"summary"`
	Audit      AuditRecord         `json:"audit"`
}

// BatchVerifier drains a QuizPool with a fixed number of workers.
// The engine holds no mutable state, so workers share it freely.
type BatchVerifier struct {
	engine  *Engine
	workers int
}

// NewBatchVerifier creates a verifier; workers <= 0 means GOMAXPROCS
func NewBatchVerifier(engine *Engine, workers int) *BatchVerifier {
	if engine == nil {
		engine = defaultEngine
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &BatchVerifier{engine: engine, workers: workers}
}

// Run verifies every document in the pool. Results come back in completion
// order; the error is ctx.Err() if the run was cancelled before the pool drained.
func (bv *BatchVerifier) Run(ctx context.Context, pool *QuizPool) ([]BatchResult, error) {
	if pool.IsEmpty() {
		return []BatchResult{}, ctx.Err()
	}

	var (
		mu      sync.Mutex
		results = make([]BatchResult, 0, pool.Size())
	)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < bv.workers; w++ {
		g.Go(func() error {
			for {
				if err := ctx.Err(); err != nil {
					return err
				}
				doc, ok := pool.Get()
				if !ok {
					return nil
				}

				summary := bv.engine.VerifyAndCorrect(doc.Content, doc.Records)
				audit := BuildAuditLog(doc.Context.SubjectID, summary)
				if doc.Context != (VerificationContext{}) {
					vctx := doc.Context
					audit.Context = &vctx
				}
				VerboseLog("Document %s: %d questions, %d corrected", doc.ID, summary.TotalQuestions, summary.CorrectionsApplied)

				mu.Lock()
				results = append(results, BatchResult{DocumentID: doc.ID, Summary: summary, Audit: audit})
				mu.Unlock()
			}
		})
	}

	err := g.Wait()
	log.Printf("Batch verification finished: %d documents", len(results))
	return results, err
}

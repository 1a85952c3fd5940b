package quizverify

import "sync"

// Document is one quiz document queued for verification
type Document struct {
	ID      string
	Content string
	Records []ReferenceRecord
	Context VerificationContext
}

// QuizPool is a FIFO queue of documents waiting for a worker
type QuizPool struct {
	mu    sync.Mutex
	queue []Document
}

// NewQuizPool creates a new pool holding docs in order
func NewQuizPool(docs ...Document) *QuizPool {
	qp := &QuizPool{queue: make([]Document, 0, len(docs))}
	qp.queue = append(qp.queue, docs...)
	return qp
}

// Add appends a document to the pool
func (qp *QuizPool) Add(doc Document) {
	qp.mu.Lock()
	defer qp.mu.Unlock()
	qp.queue = append(qp.queue, doc)
}

// Get removes and returns the next document; ok is false when the pool is empty
func (qp *QuizPool) Get() (Document, bool) {
	qp.mu.Lock()
	defer qp.mu.Unlock()

	if len(qp.queue) == 0 {
		return Document{}, false
	}
	doc := qp.queue[0]
	qp.queue = qp.queue[1:]
	return doc, true
}

// Size returns the number of documents in the pool
func (qp *QuizPool) Size() int {
	qp.mu.Lock()
	defer qp.mu.Unlock()
	return len(qp.queue)
}

// IsEmpty returns true if the pool is empty
func (qp *QuizPool) IsEmpty() bool {
	return qp.Size() == 0
}

package quizverify

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrQuizNotFound = errors.New("quiz not found")
	ErrEmptyCorpus  = errors.New("no reference records for range")
)

// DB represents a quizverify database connection
type DB struct {
	db *sql.DB
}

// DBQuiz is a stored quiz document and its latest verification
type DBQuiz struct {
	ID               string     `json:"id"`
	SubjectID        string     `json:"subject_id"`
	UnitNumber       int        `json:"unit_number"`
	UnitName         string     `json:"unit_name"`
	FromOrdinal      int        `json:"from_ordinal"`
	ToOrdinal        int        `json:"to_ordinal"`
	Content          string     `json:"content"`
	CorrectedContent string     `json:"corrected_content"`
	CreatedAt        time.Time  `json:"created_at"`
	Status           QuizStatus `json:"status"`
}

// Context returns the descriptive metadata for this quiz
func (q *DBQuiz) Context() VerificationContext {
	return VerificationContext{
		SubjectID:  q.SubjectID,
		UnitNumber: q.UnitNumber,
		UnitName:   q.UnitName,
		RangeLabel: formatRange(q.UnitNumber, q.FromOrdinal, q.ToOrdinal),
	}
}

// OpenDB opens a new database connection
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reference_records (
			composite_key TEXT PRIMARY KEY,
			unit_number INTEGER NOT NULL,
			ordinal INTEGER NOT NULL,
			lead_word TEXT,
			transliteration TEXT,
			short_translation TEXT,
			canonical_source_text TEXT,
			canonical_translation TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reference_records_unit ON reference_records(unit_number, ordinal)`,
		`CREATE TABLE IF NOT EXISTS quizzes (
			id TEXT PRIMARY KEY,
			subject_id TEXT,
			unit_number INTEGER NOT NULL,
			unit_name TEXT,
			from_ordinal INTEGER NOT NULL,
			to_ordinal INTEGER NOT NULL,
			content TEXT NOT NULL,
			corrected_content TEXT,
			created_at DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'generated'
		)`,
		`CREATE TABLE IF NOT EXISTS verification_logs (
			id TEXT PRIMARY KEY,
			subject_id TEXT NOT NULL,
			verified_at DATETIME NOT NULL,
			total_questions INTEGER NOT NULL,
			reference_related_questions INTEGER NOT NULL,
			corrections_applied INTEGER NOT NULL,
			corrections TEXT NOT NULL,
			context TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_verification_logs_subject ON verification_logs(subject_id, verified_at)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// UpsertReferenceRecord stores a verified passage, keyed by its composite key
func (db *DB) UpsertReferenceRecord(rec ReferenceRecord) error {
	key, err := ParseKey(rec.CompositeKey)
	if err != nil {
		return fmt.Errorf("failed to store reference record: %w", err)
	}
	if rec.Ordinal == 0 {
		rec.Ordinal = key.Ordinal
	}

	_, err = db.db.Exec(
		`INSERT INTO reference_records (composite_key, unit_number, ordinal, lead_word, transliteration, short_translation, canonical_source_text, canonical_translation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(composite_key) DO UPDATE SET
			unit_number = excluded.unit_number,
			ordinal = excluded.ordinal,
			lead_word = excluded.lead_word,
			transliteration = excluded.transliteration,
			short_translation = excluded.short_translation,
			canonical_source_text = excluded.canonical_source_text,
			canonical_translation = excluded.canonical_translation`,
		key.String(), key.Unit, rec.Ordinal, rec.LeadWord, rec.Transliteration, rec.ShortTranslation, rec.CanonicalSourceText, rec.CanonicalTranslation,
	)
	if err != nil {
		return fmt.Errorf("failed to store reference record %s: %w", rec.CompositeKey, err)
	}
	return nil
}

// GetReferenceRecords returns the verified corpus for a unit, ordered by ordinal.
// from/to of 0 leave that side of the range open.
func (db *DB) GetReferenceRecords(unit, from, to int) ([]ReferenceRecord, error) {
	query := "SELECT composite_key, ordinal, lead_word, transliteration, short_translation, canonical_source_text, canonical_translation FROM reference_records WHERE unit_number = ?"
	args := []interface{}{unit}
	if from > 0 {
		query += " AND ordinal >= ?"
		args = append(args, from)
	}
	if to > 0 {
		query += " AND ordinal <= ?"
		args = append(args, to)
	}
	query += " ORDER BY ordinal"

	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get reference records: %w", err)
	}
	defer rows.Close()

	var records []ReferenceRecord
	for rows.Next() {
		var (
			rec                               ReferenceRecord
			lead, translit, short, sourceText sql.NullString
		)
		if err := rows.Scan(&rec.CompositeKey, &rec.Ordinal, &lead, &translit, &short, &sourceText, &rec.CanonicalTranslation); err != nil {
			return nil, fmt.Errorf("failed to scan reference record: %w", err)
		}
		rec.LeadWord = lead.String
		rec.Transliteration = translit.String
		rec.ShortTranslation = short.String
		rec.CanonicalSourceText = sourceText.String
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reference records: %w", err)
	}
	return records, nil
}

// CreateQuiz stores a new quiz document
func (db *DB) CreateQuiz(quiz *DBQuiz) error {
	if quiz.Status == "" {
		quiz.Status = StatusGenerated
	}
	_, err := db.db.Exec(
		"INSERT INTO quizzes (id, subject_id, unit_number, unit_name, from_ordinal, to_ordinal, content, corrected_content, created_at, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		quiz.ID, quiz.SubjectID, quiz.UnitNumber, quiz.UnitName, quiz.FromOrdinal, quiz.ToOrdinal, quiz.Content, quiz.CorrectedContent, quiz.CreatedAt, string(quiz.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

const quizColumns = "id, subject_id, unit_number, unit_name, from_ordinal, to_ordinal, content, corrected_content, created_at, status"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuiz(row rowScanner) (*DBQuiz, error) {
	var (
		quiz                         DBQuiz
		subject, unitName, corrected sql.NullString
		status                       string
	)
	err := row.Scan(&quiz.ID, &subject, &quiz.UnitNumber, &unitName, &quiz.FromOrdinal, &quiz.ToOrdinal, &quiz.Content, &corrected, &quiz.CreatedAt, &status)
	if err != nil {
		return nil, err
	}
	quiz.SubjectID = subject.String
	quiz.UnitName = unitName.String
	quiz.CorrectedContent = corrected.String
	quiz.Status = QuizStatus(status)
	return &quiz, nil
}

// GetQuiz retrieves a quiz by ID
func (db *DB) GetQuiz(id string) (*DBQuiz, error) {
	quiz, err := scanQuiz(db.db.QueryRow("SELECT "+quizColumns+" FROM quizzes WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrQuizNotFound, id)
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

// ListQuizzes retrieves quizzes newest first, optionally limited by count
func (db *DB) ListQuizzes(limit int) ([]DBQuiz, error) {
	query := "SELECT " + quizColumns + " FROM quizzes ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []DBQuiz
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w", err)
		}
		quizzes = append(quizzes, *quiz)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quizzes: %w", err)
	}
	return quizzes, nil
}

// UpdateQuizVerification stores the corrected content and marks the quiz verified
func (db *DB) UpdateQuizVerification(id, correctedContent string) error {
	res, err := db.db.Exec("UPDATE quizzes SET corrected_content = ?, status = ? WHERE id = ?", correctedContent, string(StatusVerified), id)
	if err != nil {
		return fmt.Errorf("failed to update quiz verification: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrQuizNotFound, id)
	}
	return nil
}

// SaveAuditRecord persists an audit record
func (db *DB) SaveAuditRecord(rec AuditRecord) error {
	corrections, err := json.Marshal(rec.Corrections)
	if err != nil {
		return fmt.Errorf("failed to marshal corrections: %w", err)
	}
	var vctx sql.NullString
	if rec.Context != nil {
		data, err := json.Marshal(rec.Context)
		if err != nil {
			return fmt.Errorf("failed to marshal context: %w", err)
		}
		vctx = sql.NullString{String: string(data), Valid: true}
	}

	_, err = db.db.Exec(
		"INSERT INTO verification_logs (id, subject_id, verified_at, total_questions, reference_related_questions, corrections_applied, corrections, context) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.SubjectID, rec.VerifiedAt, rec.TotalQuestions, rec.ReferenceRelatedQuestions, rec.CorrectionsApplied, string(corrections), vctx,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit record: %w", err)
	}
	return nil
}

// GetAuditRecords returns the audit records for a subject, newest first
func (db *DB) GetAuditRecords(subjectID string, limit int) ([]AuditRecord, error) {
	query := "SELECT id, subject_id, verified_at, total_questions, reference_related_questions, corrections_applied, corrections, context FROM verification_logs WHERE subject_id = ? ORDER BY verified_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.db.Query(query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit records: %w", err)
	}
	defer rows.Close()

	var records []AuditRecord
	for rows.Next() {
		var (
			rec         AuditRecord
			corrections string
			vctx        sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.SubjectID, &rec.VerifiedAt, &rec.TotalQuestions, &rec.ReferenceRelatedQuestions, &rec.CorrectionsApplied, &corrections, &vctx); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		if err := json.Unmarshal([]byte(corrections), &rec.Corrections); err != nil {
			return nil, fmt.Errorf("failed to unmarshal corrections: %w", err)
		}
		if vctx.Valid && vctx.String != "" {
			rec.Context = &VerificationContext{}
			if err := json.Unmarshal([]byte(vctx.String), rec.Context); err != nil {
				return nil, fmt.Errorf("failed to unmarshal context: %w", err)
			}
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit records: %w", err)
	}
	return records, nil
}

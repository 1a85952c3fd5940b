package quizverify

import "strings"

// Thresholds are the tunable similarity cut-offs of the correction engine
type Thresholds struct {
	// MatchFloor is the lowest best-match score accepted as a plausible passage
	MatchFloor float64 `json:"match_floor"`
	// VerifiedFloor is the answer/passage score at or above which an answer stands
	VerifiedFloor float64 `json:"verified_floor"`
	// DistinctCeiling: a correction is applied only when answer/candidate
	// similarity is below this
	DistinctCeiling float64 `json:"distinct_ceiling"`
}

// DefaultThresholds returns 0.2 / 0.4 / 0.6
func DefaultThresholds() Thresholds {
	return Thresholds{
		MatchFloor:      0.2,
		VerifiedFloor:   0.4,
		DistinctCeiling: 0.6,
	}
}

// Limits bound the work done on a single document
type Limits struct {
	MaxContentBytes int `json:"max_content_bytes"`
	MaxQuestions    int `json:"max_questions"`
}

// DefaultLimits returns 1 MiB of content and 500 questions
func DefaultLimits() Limits {
	return Limits{
		MaxContentBytes: 1 << 20,
		MaxQuestions:    500,
	}
}

// Option configures an Engine
type Option func(*Engine)

// WithThresholds replaces the similarity cut-offs
func WithThresholds(t Thresholds) Option { return func(e *Engine) { e.thresholds = t } }

// WithLimits replaces the input guard
func WithLimits(l Limits) Option { return func(e *Engine) { e.limits = l } }

// WithGlyphs sets the correctness markers the parser looks for
func WithGlyphs(glyphs ...string) Option { return func(e *Engine) { e.parser = NewQuizParser(glyphs) } }

// WithRelationRules replaces the relation table used to decide relatedness
func WithRelationRules(rules []Rule) Option { return func(e *Engine) { e.classifier = NewClassifier(rules) } }

// WithReferenceRules replaces the citation table
func WithReferenceRules(rules []Rule) Option {
	return func(e *Engine) { e.extractor = NewReferenceExtractor(rules) }
}

// WithSoleRecordFallback controls whether a single-record corpus is taken as the
// passage under discussion when a related question carries no citation
func WithSoleRecordFallback(on bool) Option { return func(e *Engine) { e.soleRecord = on } }

// Engine checks marked quiz answers against a verified corpus and rewrites
// the ones it is confident are wrong. An Engine is immutable after
// construction and safe for concurrent use.
type Engine struct {
	parser     *QuizParser
	classifier *Classifier
	extractor  *ReferenceExtractor
	thresholds Thresholds
	limits     Limits
	soleRecord bool
}

// NewEngine creates an engine with the default rule tables and thresholds
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		parser:     defaultParser,
		classifier: defaultClassifier,
		extractor:  defaultExtractor,
		thresholds: DefaultThresholds(),
		limits:     DefaultLimits(),
		soleRecord: true,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Thresholds returns the engine's cut-offs
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// VerifyAndCorrect checks every marked answer in content against records.
// It never fails: uncertainty is reported through the per-question results.
func (e *Engine) VerifyAndCorrect(content string, records []ReferenceRecord) VerificationSummary {
	summary := VerificationSummary{
		CorrectedContent: content,
		Results:          []VerificationResult{},
	}
	if len(records) == 0 {
		return summary
	}
	if e.limits.MaxContentBytes > 0 && len(content) > e.limits.MaxContentBytes {
		VerboseLog("Content of %d bytes exceeds limit %d, passing through", len(content), e.limits.MaxContentBytes)
		summary.Limited = true
		return summary
	}

	questions, limited := e.parser.ParseLimit(content, e.limits.MaxQuestions)
	summary.TotalQuestions = len(questions)
	summary.Limited = limited

	// Last block first so splicing never shifts offsets still to be used
	working := content
	results := make([]VerificationResult, 0, len(questions))
	for i := len(questions) - 1; i >= 0; i-- {
		q := questions[i]
		result := e.check(q, records)

		if result.Related {
			summary.ReferenceRelatedQuestions++
		}
		if result.CorrectionMade {
			working = working[:q.SpanStart] + *result.CorrectedAnswer + working[q.SpanEnd:]
			summary.CorrectionsApplied++
		}
		results = append(results, result)
	}

	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}

	summary.CorrectedContent = working
	summary.Results = results
	return summary
}

// check settles a single question without touching the content
func (e *Engine) check(q ParsedQuestion, records []ReferenceRecord) VerificationResult {
	result := VerificationResult{
		QuestionText:   q.QuestionText,
		OriginalAnswer: q.ExtractedAnswer,
	}

	tag, related := e.classifier.Classify(q.QuestionText)
	if !related {
		result.IsVerified = true
		result.Similarity = 1
		result.Outcome = OutcomeNotApplicable
		return result
	}
	result.Related = true
	result.RelationTag = tag

	record, matchedBy := e.resolve(q, records)
	if record == nil {
		result.Outcome = OutcomeUnresolved
		return result
	}
	ordinal := record.Ordinal
	result.ReferenceFound = &ordinal
	result.MatchedKey = record.CompositeKey
	result.MatchedBy = matchedBy

	sim := Similarity(q.ExtractedAnswer, record.CanonicalTranslation)
	result.Similarity = sim
	if sim >= e.thresholds.VerifiedFloor {
		result.IsVerified = true
		result.Outcome = OutcomeVerified
		return result
	}

	// The candidate replaces text inside a single option line
	candidate := strings.TrimSpace(spaceRun.ReplaceAllString(ExtractRelevantSpan(q.QuestionText, *record), " "))
	if candidate == "" || candidate == q.ExtractedAnswer ||
		Similarity(q.ExtractedAnswer, candidate) >= e.thresholds.DistinctCeiling {
		result.Outcome = OutcomeSuppressed
		return result
	}

	result.CorrectionMade = true
	result.CorrectedAnswer = &candidate
	result.Outcome = OutcomeCorrected
	return result
}

// resolve finds the record a related question is about. A citation that is
// not in the corpus only falls back to the best-match scan.
func (e *Engine) resolve(q ParsedQuestion, records []ReferenceRecord) (*ReferenceRecord, string) {
	ref := e.extractor.Extract(q.QuestionText)
	if ref != nil {
		for i := range records {
			if ref.Matches(records[i]) {
				return &records[i], MatchByCitation
			}
		}
		VerboseLog("Citation %d:%d not in corpus, falling back to best match", ref.Unit, ref.Ordinal)
	}

	if e.soleRecord && ref == nil && len(records) == 1 {
		return &records[0], MatchBySoleRecord
	}

	best, bestScore := -1, 0.0
	for i := range records {
		score := Similarity(q.ExtractedAnswer, records[i].CanonicalTranslation)
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 && bestScore >= e.thresholds.MatchFloor {
		return &records[best], MatchByBestMatch
	}
	return nil, ""
}

var defaultEngine = NewEngine()

// VerifyAndCorrect runs the default engine
func VerifyAndCorrect(content string, records []ReferenceRecord) VerificationSummary {
	return defaultEngine.VerifyAndCorrect(content, records)
}

package quizverify

import (
	"regexp"
	"strings"
)

// DefaultGlyphs are the correctness markers placed right after the correct option
var DefaultGlyphs = []string{"✅", "✔", "✓"}

var (
	// Q1. / 1. / 1) / **Q1.** / ### 1. at the start of a line
	blockMarker  = regexp.MustCompile(`(?m)^[ \t]*(?:#+[ \t]*)?(?:\*\*)?[ \t]*(?:Q(?:uestion)?[ \t]*)?\d+[.)](?:\*\*)?(?:[ \t]+|$)`)
	separator    = regexp.MustCompile(`(?m)^[ \t]*(?:-{3,}|={3,}|\*{3,}|_{3,})[ \t]*$`)
	optionMarker = regexp.MustCompile(`\b[A-D]\)`)
	spaceRun     = regexp.MustCompile(`\s+`)
)

// QuizParser finds numbered question blocks and their marked answers
type QuizParser struct {
	glyphs []string
}

// NewQuizParser creates a parser recognising the given correctness glyphs
func NewQuizParser(glyphs []string) *QuizParser {
	if len(glyphs) == 0 {
		glyphs = DefaultGlyphs
	}
	return &QuizParser{glyphs: glyphs}
}

// Parse returns every block that has a marked correct option, in document order
func (qp *QuizParser) Parse(content string) []ParsedQuestion {
	questions, _ := qp.ParseLimit(content, 0)
	return questions
}

// ParseLimit is Parse with an upper bound on the number of questions.
// The bool reports whether a parseable block was dropped. limit <= 0 means no bound.
func (qp *QuizParser) ParseLimit(content string, limit int) ([]ParsedQuestion, bool) {
	markers := blockMarker.FindAllStringIndex(content, -1)
	seps := separator.FindAllStringIndex(content, -1)

	questions := make([]ParsedQuestion, 0, len(markers))
	for i, m := range markers {
		end := len(content)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		for _, s := range seps {
			if s[0] >= m[1] && s[0] < end {
				end = s[0]
				break
			}
		}

		q, ok := qp.parseBlock(content, m[1], end)
		if !ok {
			continue
		}
		if limit > 0 && len(questions) >= limit {
			return questions, true
		}
		questions = append(questions, q)
	}
	return questions, false
}

// parseBlock reads content[start:end]; the block marker is already consumed
func (qp *QuizParser) parseBlock(content string, start, end int) (ParsedQuestion, bool) {
	block := content[start:end]

	question := questionText(block)
	if question == "" {
		return ParsedQuestion{}, false
	}

	for from := 0; from < len(block); {
		at, n := qp.nextGlyph(block, from)
		if at < 0 {
			break
		}
		from = at + n

		lineStart := strings.LastIndexByte(block[:at], '\n') + 1
		opts := optionMarker.FindAllStringIndex(block[lineStart:at], -1)
		if len(opts) == 0 {
			continue
		}

		ansStart := lineStart + opts[len(opts)-1][1]
		ansEnd := at
		raw := block[ansStart:ansEnd]
		ansStart += len(raw) - len(strings.TrimLeft(raw, " \t*"))
		ansEnd -= len(raw) - len(strings.TrimRight(raw, " \t*"))
		if ansStart >= ansEnd {
			continue
		}

		return ParsedQuestion{
			QuestionText:    question,
			ExtractedAnswer: block[ansStart:ansEnd],
			SpanStart:       start + ansStart,
			SpanEnd:         start + ansEnd,
		}, true
	}
	return ParsedQuestion{}, false
}

func (qp *QuizParser) nextGlyph(s string, from int) (int, int) {
	best, n := -1, 0
	for _, g := range qp.glyphs {
		if i := strings.Index(s[from:], g); i >= 0 && (best < 0 || from+i < best) {
			best, n = from+i, len(g)
		}
	}
	return best, n
}

// questionText is the first non-blank line, cut at the first lettered option
func questionText(block string) string {
	text := strings.TrimLeft(block, " \t\r\n")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if loc := optionMarker.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	text = strings.Trim(text, " \t\r*")
	return spaceRun.ReplaceAllString(text, " ")
}

var defaultParser = NewQuizParser(DefaultGlyphs)

// ParseQuestions parses content with the default glyphs
func ParseQuestions(content string) []ParsedQuestion {
	return defaultParser.Parse(content)
}

package readings

import (
	"fmt"
	"strconv"
	"strings"

	"bible-reading-plan/internal/books"
)

// ScriptureReading wraps one raw reading string such as
// "Gen 6-8; Psalm 104; Mark 3".
type ScriptureReading struct {
	raw string
}

// NewScriptureReading wraps raw without validating it; parse errors surface
// from the derived operations.
func NewScriptureReading(raw string) ScriptureReading {
	return ScriptureReading{raw: raw}
}

// Raw returns the reading exactly as written in the plan.
func (r ScriptureReading) Raw() string {
	return r.raw
}

func (r ScriptureReading) String() string {
	return r.raw
}

// part is one ';'-separated piece of a reading with its book resolved.
type part struct {
	book     string
	chapters string
	bare     bool
}

func (r ScriptureReading) parts() ([]part, error) {
	pieces := strings.Split(r.raw, ";")
	result := make([]part, 0, len(pieces))
	for _, piece := range pieces {
		bookToken, chapterToken, ok := BookAndChapterParts(strings.TrimSpace(piece))
		name, found := books.FullName(bookToken)
		if !found {
			return nil, &UnknownBookError{Token: bookToken}
		}
		result = append(result, part{book: name, chapters: chapterToken, bare: !ok})
	}
	return result, nil
}

// ToChapters expands the reading into canonical per-chapter references, one
// entry per chapter, in the order written.
func (r ScriptureReading) ToChapters() ([]string, error) {
	parts, err := r.parts()
	if err != nil {
		return nil, err
	}

	var chapters []string
	for _, p := range parts {
		expanded, err := expand(p)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, expanded...)
	}
	return chapters, nil
}

func expand(p part) ([]string, error) {
	switch {
	case p.bare:
		return []string{p.book}, nil
	case strings.Contains(p.chapters, "-"):
		bounds := strings.Split(p.chapters, "-")
		if len(bounds) != 2 {
			return nil, &ChapterError{Token: p.chapters, Reason: "range must have exactly one start and one end"}
		}
		start, err := chapterNumber(bounds[0], p.chapters)
		if err != nil {
			return nil, err
		}
		end, err := chapterNumber(bounds[1], p.chapters)
		if err != nil {
			return nil, err
		}
		if start > end {
			return nil, &ChapterError{Token: p.chapters, Reason: "range start is after its end"}
		}
		chapters := make([]string, 0, end-start+1)
		for n := start; n <= end; n++ {
			chapters = append(chapters, fmt.Sprintf("%s %d", p.book, n))
		}
		return chapters, nil
	case strings.Contains(p.chapters, ","):
		tokens := strings.Split(p.chapters, ",")
		chapters := make([]string, 0, len(tokens))
		for _, token := range tokens {
			token = strings.TrimSpace(token)
			if _, err := chapterNumber(token, p.chapters); err != nil {
				return nil, err
			}
			chapters = append(chapters, p.book+" "+token)
		}
		return chapters, nil
	default:
		return []string{p.book + " " + p.chapters}, nil
	}
}

func chapterNumber(token, designator string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return 0, &ChapterError{Token: designator, Reason: fmt.Sprintf("%q is not a chapter number", strings.TrimSpace(token))}
	}
	if n < 1 {
		return 0, &ChapterError{Token: designator, Reason: fmt.Sprintf("chapter %d is out of range", n)}
	}
	return n, nil
}

// NiceName renders the reading for people: each part keeps its chapter
// designator unexpanded and the parts are joined as "A; B; and C".
func (r ScriptureReading) NiceName() (string, error) {
	parts, err := r.parts()
	if err != nil {
		return "", err
	}

	names := make([]string, len(parts))
	for i, p := range parts {
		if p.bare {
			names[i] = p.book
		} else {
			names[i] = p.book + " " + p.chapters
		}
	}

	if len(names) == 1 {
		return names[0], nil
	}
	return strings.Join(names[:len(names)-1], "; ") + "; and " + names[len(names)-1], nil
}

// NiceNameSSML is NiceName with psalm numbers marked up for the speech
// synthesizer. When wrap is set the result is a complete <speak> document.
func (r ScriptureReading) NiceNameSSML(wrap bool) (string, error) {
	name, err := r.NiceName()
	if err != nil {
		return "", err
	}
	marked := annotateNumbers(name)
	if wrap {
		return Speak(marked), nil
	}
	return marked, nil
}

// BookAndChapterParts splits a single reading part at the first digit that
// follows a non-digit. Book names with a leading numeral ("1 Samuel 3")
// therefore keep their numeral. ok is false for single-chapter books written
// without a chapter ("Jude"), in which case the whole part is the book.
func BookAndChapterParts(passage string) (book, chapters string, ok bool) {
	for i := 1; i < len(passage); i++ {
		if isDigit(passage[i]) && !isDigit(passage[i-1]) {
			return strings.TrimSpace(passage[:i-1]), strings.TrimSpace(passage[i:]), true
		}
	}
	return strings.TrimSpace(passage), "", false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

package readings

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func TestToChapters(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"Joshua 5-8; Psalm 14; Luke 15", []string{"Joshua 5", "Joshua 6", "Joshua 7", "Joshua 8", "Psalm 14", "Luke 15"}},
		{"1 Samuel 1-2; Psalm 120; Acts 5", []string{"1 Samuel 1", "1 Samuel 2", "Psalm 120", "Acts 5"}},
		{"2 Chr 15-16; 1 Kin 16; Philemon", []string{"2 Chronicles 15", "2 Chronicles 16", "1 Kings 16", "Philemon"}},
		{"Jer 22, 23, 26; Psalm 77; James 2", []string{"Jeremiah 22", "Jeremiah 23", "Jeremiah 26", "Psalm 77", "James 2"}},
		{"Obadiah; Jude; Philemon; Psalm 117", []string{"Obadiah", "Jude", "Philemon", "Psalm 117"}},
	}

	for _, tc := range cases {
		got, err := NewScriptureReading(tc.raw).ToChapters()
		if err != nil {
			t.Fatalf("ToChapters(%q): %v", tc.raw, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ToChapters(%q): expected %v, got %v", tc.raw, tc.want, got)
		}
	}
}

func TestToChaptersRangesRoundTrip(t *testing.T) {
	raws := []string{
		"Gen 6-8; Psalm 104; Mark 3",
		"Num 5-8; Psalm 100",
		"2 Chr 15-16; 1 Kin 16; Philemon",
		"Isa 40-44; Ps 119; Rom 1-3",
	}

	for _, raw := range raws {
		chapters, err := NewScriptureReading(raw).ToChapters()
		if err != nil {
			t.Fatalf("ToChapters(%q): %v", raw, err)
		}

		rebuilt := regroup(t, chapters)
		var want []string
		for _, piece := range strings.Split(raw, ";") {
			book, chapters, ok := BookAndChapterParts(strings.TrimSpace(piece))
			name, _ := lookupForTest(book)
			if ok {
				want = append(want, name+" "+chapters)
			} else {
				want = append(want, name)
			}
		}
		if !reflect.DeepEqual(rebuilt, want) {
			t.Fatalf("round trip of %q: expected %v, got %v", raw, want, rebuilt)
		}
	}
}

// regroup folds consecutive chapters of the same book back into "Book a-b".
func regroup(t *testing.T, chapters []string) []string {
	t.Helper()
	type run struct {
		book       string
		start, end int
		bare       bool
	}
	var runs []run
	for _, chapter := range chapters {
		book, number, ok := BookAndChapterParts(chapter)
		if !ok {
			runs = append(runs, run{book: book, bare: true})
			continue
		}
		n, err := strconv.Atoi(number)
		if err != nil {
			t.Fatalf("chapter %q has non-numeric suffix", chapter)
		}
		if last := len(runs) - 1; last >= 0 && runs[last].book == book && !runs[last].bare && runs[last].end+1 == n {
			runs[last].end = n
			continue
		}
		runs = append(runs, run{book: book, start: n, end: n})
	}

	out := make([]string, 0, len(runs))
	for _, r := range runs {
		switch {
		case r.bare:
			out = append(out, r.book)
		case r.start == r.end:
			out = append(out, fmt.Sprintf("%s %d", r.book, r.start))
		default:
			out = append(out, fmt.Sprintf("%s %d-%d", r.book, r.start, r.end))
		}
	}
	return out
}

func lookupForTest(token string) (string, bool) {
	parts, err := NewScriptureReading(token).parts()
	if err != nil || len(parts) != 1 {
		return "", false
	}
	return parts[0].book, true
}

func TestNiceName(t *testing.T) {
	cases := map[string]string{
		"Ps 119":                             "Psalm 119",
		"Num 5-8; Psalm 100":                 "Numbers 5-8; and Psalm 100",
		"Josh 5-8; Ps 14; Luk 15":            "Joshua 5-8; Psalm 14; and Luke 15",
		"Jer 22, 23, 26; Psalm 77; James 2":  "Jeremiah 22, 23, 26; Psalm 77; and James 2",
		"Obadiah; Jude; Philemon; Psalm 117": "Obadiah; Jude; Philemon; and Psalm 117",
		"Zechariah 12-14; Psalm 94; 2 John":  "Zechariah 12-14; Psalm 94; and 2 John",
		"Gen 6-8; Psalm 104; Mark 3":         "Genesis 6-8; Psalm 104; and Mark 3",
	}
	for raw, want := range cases {
		got, err := NewScriptureReading(raw).NiceName()
		if err != nil {
			t.Fatalf("NiceName(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("NiceName(%q): expected %q, got %q", raw, want, got)
		}
	}
}

func TestNiceNameSSML(t *testing.T) {
	reading := NewScriptureReading("Num 5-8; Psalm 100")

	got, err := reading.NiceNameSSML(false)
	if err != nil {
		t.Fatalf("NiceNameSSML: %v", err)
	}
	want := `Numbers 5-8; and Psalm <say-as interpret-as="cardinal">100</say-as>`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	wrapped, err := reading.NiceNameSSML(true)
	if err != nil {
		t.Fatalf("NiceNameSSML wrapped: %v", err)
	}
	if wrapped != "<speak>"+want+"</speak>" {
		t.Fatalf("expected speak wrapper, got %q", wrapped)
	}

	ranged, err := NewScriptureReading("Ps 120-122").NiceNameSSML(false)
	if err != nil {
		t.Fatalf("NiceNameSSML range: %v", err)
	}
	wantRange := `Psalm <say-as interpret-as="cardinal">120</say-as>-<say-as interpret-as="cardinal">122</say-as>`
	if ranged != wantRange {
		t.Fatalf("expected %q, got %q", wantRange, ranged)
	}
}

func TestUnknownBook(t *testing.T) {
	_, err := NewScriptureReading("Xyz 3").ToChapters()
	var unknown *UnknownBookError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownBookError, got %v", err)
	}
	if unknown.Token != "Xyz" {
		t.Fatalf("expected token Xyz, got %q", unknown.Token)
	}
	if !errors.Is(err, ErrInvalidReading) {
		t.Fatalf("expected error to match ErrInvalidReading")
	}

	if _, err := NewScriptureReading("Gen 1; Xyz 3").NiceName(); !errors.As(err, &unknown) {
		t.Fatalf("expected NiceName to reject unknown book, got %v", err)
	}
}

func TestMalformedChapters(t *testing.T) {
	for _, raw := range []string{"Gen 8-6", "Gen 1-2-3", "Gen 1-x", "Jer 22, b, 26", "Gen 0-2"} {
		_, err := NewScriptureReading(raw).ToChapters()
		var chapterErr *ChapterError
		if !errors.As(err, &chapterErr) {
			t.Fatalf("ToChapters(%q): expected ChapterError, got %v", raw, err)
		}
		if chapterErr.Token == "" {
			t.Fatalf("ToChapters(%q): expected offending token in error", raw)
		}
	}
}

func TestBookAndChapterParts(t *testing.T) {
	cases := []struct {
		in       string
		book     string
		chapters string
		ok       bool
	}{
		{"1 Samuel 1-2", "1 Samuel", "1-2", true},
		{"Psalm 119", "Psalm", "119", true},
		{"2 John", "2 John", "", false},
		{"Philemon", "Philemon", "", false},
		{"Jer 22, 23", "Jer", "22, 23", true},
	}
	for _, tc := range cases {
		book, chapters, ok := BookAndChapterParts(tc.in)
		if book != tc.book || chapters != tc.chapters || ok != tc.ok {
			t.Fatalf("BookAndChapterParts(%q) = (%q, %q, %t), expected (%q, %q, %t)",
				tc.in, book, chapters, ok, tc.book, tc.chapters, tc.ok)
		}
	}
}

func TestChapterAnnouncement(t *testing.T) {
	cases := map[string]string{
		"Genesis 1":   "<speak>Genesis chapter 1</speak>",
		"1 Samuel 16": "<speak>1 Samuel chapter 16</speak>",
		"Psalm 119":   `<speak>Psalm <say-as interpret-as="cardinal">119</say-as></speak>`,
		"Job 3":       `<speak><phoneme alphabet="ipa" ph="dʒoʊb">Job</phoneme> chapter 3</speak>`,
		"Jude":        "<speak>Jude</speak>",
	}
	for chapter, want := range cases {
		if got := ChapterAnnouncement(chapter); got != want {
			t.Fatalf("ChapterAnnouncement(%q): expected %q, got %q", chapter, want, got)
		}
	}
}

func TestIsSSML(t *testing.T) {
	if !IsSSML("  <speak>hi</speak>") {
		t.Fatalf("expected speak document to be detected")
	}
	if IsSSML("Week 1, Day 1.") {
		t.Fatalf("expected plain text to be rejected")
	}
}

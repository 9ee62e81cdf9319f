package readings

import (
	"regexp"
	"strings"
)

const (
	speakOpen  = "<speak>"
	speakClose = "</speak>"
)

// Books the synthesizer tends to read wrongly, with an IPA hint.
var pronunciations = map[string]string{
	"Job": `<phoneme alphabet="ipa" ph="dʒoʊb">Job</phoneme>`,
}

// Numbers after "Psalm"/"Psalms" are forced to cardinals; otherwise "Psalm
// 119" can come out as "nineteen nineteen"-style year reading.
var psalmNumbers = regexp.MustCompile(`\bPsalms? [0-9][0-9,\- ]*`)
var digits = regexp.MustCompile(`[0-9]+`)

var ssmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Speak wraps SSML body text in a <speak> document.
func Speak(body string) string {
	return speakOpen + body + speakClose
}

// IsSSML reports whether text is already a <speak> document.
func IsSSML(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), speakOpen)
}

func cardinal(number string) string {
	return `<say-as interpret-as="cardinal">` + number + `</say-as>`
}

func annotateNumbers(text string) string {
	escaped := ssmlEscaper.Replace(text)
	return psalmNumbers.ReplaceAllStringFunc(escaped, func(match string) string {
		space := strings.Index(match, " ")
		return match[:space+1] + digits.ReplaceAllStringFunc(match[space+1:], cardinal)
	})
}

// ChapterAnnouncement renders the spoken heading for one canonical chapter
// reference ("Job 3", "Psalm 119", "Jude") as an SSML document.
func ChapterAnnouncement(chapter string) string {
	book, number, ok := BookAndChapterParts(chapter)
	spoken, found := pronunciations[book]
	if !found {
		spoken = ssmlEscaper.Replace(book)
	}

	switch {
	case !ok:
		return Speak(spoken)
	case book == "Psalm" || book == "Psalms":
		return Speak(spoken + " " + cardinal(ssmlEscaper.Replace(number)))
	default:
		return Speak(spoken + " chapter " + ssmlEscaper.Replace(number))
	}
}

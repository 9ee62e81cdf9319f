package books

import "strings"

// Book is a canonical book of the Bible together with the abbreviations the
// reading plan uses for it.
type Book struct {
	Name          string
	Order         int
	Abbreviations []string
}

// All lists the 66 books in canonical order. Name is the form used in
// canonical chapter references; the Psalms use the singular "Psalm" since a
// reference always names one psalm at a time.
var All = []Book{
	{"Genesis", 1, []string{"Gen", "Ge", "Gn"}},
	{"Exodus", 2, []string{"Exo", "Ex", "Exod"}},
	{"Leviticus", 3, []string{"Lev", "Le", "Lv"}},
	{"Numbers", 4, []string{"Num", "Nu", "Nm"}},
	{"Deuteronomy", 5, []string{"Deut", "Deu", "Dt"}},
	{"Joshua", 6, []string{"Josh", "Jos"}},
	{"Judges", 7, []string{"Judg", "Jdg", "Jg"}},
	{"Ruth", 8, []string{"Rut", "Ru"}},
	{"1 Samuel", 9, []string{"1 Sam", "1 Sa", "1Sam"}},
	{"2 Samuel", 10, []string{"2 Sam", "2 Sa", "2Sam"}},
	{"1 Kings", 11, []string{"1 Kin", "1 Kgs", "1 Ki", "1Kgs"}},
	{"2 Kings", 12, []string{"2 Kin", "2 Kgs", "2 Ki", "2Kgs"}},
	{"1 Chronicles", 13, []string{"1 Chr", "1 Chron", "1 Ch", "1Chr"}},
	{"2 Chronicles", 14, []string{"2 Chr", "2 Chron", "2 Ch", "2Chr"}},
	{"Ezra", 15, []string{"Ezr"}},
	{"Nehemiah", 16, []string{"Neh", "Ne"}},
	{"Esther", 17, []string{"Esth", "Est", "Es"}},
	{"Job", 18, []string{"Jb"}},
	{"Psalm", 19, []string{"Psalms", "Ps", "Psa", "Pss", "Psm"}},
	{"Proverbs", 20, []string{"Prov", "Pro", "Pr", "Prv"}},
	{"Ecclesiastes", 21, []string{"Eccl", "Ecc", "Ec", "Qoh"}},
	{"Song of Solomon", 22, []string{"Song", "Song of Songs", "SOS", "So"}},
	{"Isaiah", 23, []string{"Isa", "Is"}},
	{"Jeremiah", 24, []string{"Jer", "Je", "Jr"}},
	{"Lamentations", 25, []string{"Lam", "La"}},
	{"Ezekiel", 26, []string{"Ezek", "Eze", "Ezk"}},
	{"Daniel", 27, []string{"Dan", "Da", "Dn"}},
	{"Hosea", 28, []string{"Hos", "Ho"}},
	{"Joel", 29, []string{"Joe", "Jl"}},
	{"Amos", 30, []string{"Amo", "Am"}},
	{"Obadiah", 31, []string{"Obad", "Oba", "Ob"}},
	{"Jonah", 32, []string{"Jon", "Jnh"}},
	{"Micah", 33, []string{"Mic", "Mc"}},
	{"Nahum", 34, []string{"Nah", "Na"}},
	{"Habakkuk", 35, []string{"Hab", "Hb"}},
	{"Zephaniah", 36, []string{"Zeph", "Zep", "Zp"}},
	{"Haggai", 37, []string{"Hag", "Hg"}},
	{"Zechariah", 38, []string{"Zech", "Zec", "Zc"}},
	{"Malachi", 39, []string{"Mal", "Ml"}},
	{"Matthew", 40, []string{"Matt", "Mat", "Mt"}},
	{"Mark", 41, []string{"Mar", "Mrk", "Mk"}},
	{"Luke", 42, []string{"Luk", "Lk"}},
	{"John", 43, []string{"Joh", "Jhn", "Jn"}},
	{"Acts", 44, []string{"Act", "Ac"}},
	{"Romans", 45, []string{"Rom", "Ro", "Rm"}},
	{"1 Corinthians", 46, []string{"1 Cor", "1 Co", "1Cor"}},
	{"2 Corinthians", 47, []string{"2 Cor", "2 Co", "2Cor"}},
	{"Galatians", 48, []string{"Gal", "Ga"}},
	{"Ephesians", 49, []string{"Eph", "Ephes"}},
	{"Philippians", 50, []string{"Phil", "Php", "Pp"}},
	{"Colossians", 51, []string{"Col", "Co"}},
	{"1 Thessalonians", 52, []string{"1 Thess", "1 Thes", "1 Th", "1Thess"}},
	{"2 Thessalonians", 53, []string{"2 Thess", "2 Thes", "2 Th", "2Thess"}},
	{"1 Timothy", 54, []string{"1 Tim", "1 Ti", "1Tim"}},
	{"2 Timothy", 55, []string{"2 Tim", "2 Ti", "2Tim"}},
	{"Titus", 56, []string{"Tit", "Ti"}},
	{"Philemon", 57, []string{"Philem", "Phlm", "Phm"}},
	{"Hebrews", 58, []string{"Heb"}},
	{"James", 59, []string{"Jas", "Jm"}},
	{"1 Peter", 60, []string{"1 Pet", "1 Pe", "1 Pt", "1Pet"}},
	{"2 Peter", 61, []string{"2 Pet", "2 Pe", "2 Pt", "2Pet"}},
	{"1 John", 62, []string{"1 Jn", "1 Jhn", "1John"}},
	{"2 John", 63, []string{"2 Jn", "2 Jhn", "2John"}},
	{"3 John", 64, []string{"3 Jn", "3 Jhn", "3John"}},
	{"Jude", 65, []string{"Jud", "Jd"}},
	{"Revelation", 66, []string{"Rev", "Re", "Rv"}},
}

var byAbbreviation = buildIndex()

func buildIndex() map[string]*Book {
	index := make(map[string]*Book, len(All)*5)
	for i := range All {
		book := &All[i]
		index[book.Name] = book
		for _, abbr := range book.Abbreviations {
			index[abbr] = book
		}
	}
	return index
}

// FullName resolves an abbreviation (or a full name) to the canonical book
// name. Matching is exact after trimming surrounding whitespace.
func FullName(abbreviation string) (string, bool) {
	book, ok := Lookup(abbreviation)
	if !ok {
		return "", false
	}
	return book.Name, true
}

// Lookup is FullName returning the whole table entry.
func Lookup(abbreviation string) (Book, bool) {
	book, ok := byAbbreviation[strings.TrimSpace(abbreviation)]
	if !ok {
		return Book{}, false
	}
	return *book, true
}

// Compare orders two canonical book names by their position in the canon.
// Unknown names sort after every known book.
func Compare(a, b string) int {
	return order(a) - order(b)
}

func order(name string) int {
	if book, ok := byAbbreviation[name]; ok {
		return book.Order
	}
	return len(All) + 1
}

package language

import (
	"strings"

	"golang.org/x/text/cases"
	xlang "golang.org/x/text/language"
)

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}},
	{"es", "spa", "", "Spanish", []string{"spanish"}},
	{"fr", "fra", "fre", "French", []string{"french"}},
	{"de", "deu", "ger", "German", []string{"german"}},
	{"it", "ita", "", "Italian", []string{"italian"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese"}},
	{"ko", "kor", "", "Korean", []string{"korean"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese"}},
	{"ru", "rus", "", "Russian", []string{"russian"}},
	{"ar", "ara", "", "Arabic", []string{"arabic"}},
	{"he", "heb", "", "Hebrew", []string{"hebrew"}},
	{"hi", "hin", "", "Hindi", []string{"hindi"}},
	{"th", "tha", "", "Thai", []string{"thai"}},
	{"tr", "tur", "", "Turkish", []string{"turkish"}},
	{"nl", "nld", "dut", "Dutch", []string{"dutch"}},
	{"pl", "pol", "", "Polish", []string{"polish"}},
	{"sv", "swe", "", "Swedish", []string{"swedish"}},
	{"da", "dan", "", "Danish", []string{"danish"}},
	{"no", "nor", "", "Norwegian", []string{"norwegian"}},
	{"fi", "fin", "", "Finnish", []string{"finnish"}},
	{"cs", "ces", "cze", "Czech", []string{"czech"}},
	{"sk", "slk", "slo", "Slovak", []string{"slovak"}},
	{"hu", "hun", "", "Hungarian", []string{"hungarian"}},
	{"ro", "ron", "rum", "Romanian", []string{"romanian"}},
	{"bg", "bul", "", "Bulgarian", []string{"bulgarian"}},
	{"hr", "hrv", "", "Croatian", []string{"croatian"}},
	{"sr", "srp", "", "Serbian", []string{"serbian"}},
	{"uk", "ukr", "", "Ukrainian", []string{"ukrainian"}},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// ToISO2 converts any recognized language code or word to ISO 639-1.
// If the input is already a 2-letter code (even if unknown), it passes through.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// ToISO3 converts any recognized language code to ISO 639-2 (3-letter).
// Returns "und" for unrecognized 2-letter codes, passes through 3-letter codes.
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "und"
	}
	if e := lookup(code); e != nil {
		return e.code3
	}
	if len(code) == 3 {
		return code
	}
	return "und"
}

var titleCaser = cases.Title(xlang.English)

// DisplayName returns a human-readable language name for any recognized code.
// Unrecognized short codes are uppercased; longer unrecognized values are
// title-cased as-is.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	if len(code) <= 3 {
		return strings.ToUpper(code)
	}
	return titleCaser.String(strings.ToLower(code))
}

// Matches reports whether two language identifiers refer to the same language.
// Unknown identifiers only match themselves (case-insensitive).
func Matches(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	ea, eb := lookup(a), lookup(b)
	return ea != nil && ea == eb
}

// HasLanguage reports whether any identifier in langs refers to the same
// language as requested.
func HasLanguage(requested string, langs []string) bool {
	for _, lang := range langs {
		if Matches(requested, lang) {
			return true
		}
	}
	return false
}

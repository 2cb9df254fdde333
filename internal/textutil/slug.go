package textutil

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength bounds the stem of generated filenames.
const MaxSlugLength = 80

var (
	slugStripPattern      = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespacePattern = regexp.MustCompile(`\s+`)
	slugDashPattern       = regexp.MustCompile(`-+`)
)

// FoldAccents strips combining marks so "Fourier Série" becomes "Fourier Serie".
func FoldAccents(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}

// Slugify lower-cases value, drops everything except letters, digits,
// whitespace and dashes, joins words with single dashes, and truncates to
// MaxSlugLength bytes. The result may be empty.
func Slugify(value string) string {
	s := strings.ToLower(FoldAccents(value))
	s = slugStripPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = slugWhitespacePattern.ReplaceAllString(s, "-")
	s = slugDashPattern.ReplaceAllString(s, "-")
	if len(s) > MaxSlugLength {
		s = s[:MaxSlugLength]
	}
	return s
}

// TitleToFilename renders a title as "<slug>.pdf". It returns "" when the
// title has no usable characters.
func TitleToFilename(title string) string {
	slug := Slugify(title)
	if slug == "" || strings.Trim(slug, "-") == "" {
		return ""
	}
	return slug + ".pdf"
}

// FilenameTitle derives a readable title from a filename: the extension is
// dropped and dashes become spaces.
func FilenameTitle(filename string) string {
	stem := filename
	if ext := strings.LastIndex(stem, "."); ext > 0 && strings.EqualFold(stem[ext:], ".pdf") {
		stem = stem[:ext]
	}
	return strings.ReplaceAll(stem, "-", " ")
}

// Deduper hands out unique filenames, suffixing -2, -3, ... before the
// extension on collision.
type Deduper struct {
	used map[string]struct{}
}

// NewDeduper returns an empty Deduper.
func NewDeduper() *Deduper {
	return &Deduper{used: make(map[string]struct{})}
}

// Claim reserves name, or the first free suffixed variant, and returns it.
func (d *Deduper) Claim(name string) string {
	if _, taken := d.used[name]; !taken {
		d.used[name] = struct{}{}
		return name
	}
	stem, ext := name, ""
	if idx := strings.LastIndex(name, "."); idx > 0 {
		stem, ext = name[:idx], name[idx:]
	}
	for i := 2; ; i++ {
		candidate := stem + "-" + strconv.Itoa(i) + ext
		if _, taken := d.used[candidate]; !taken {
			d.used[candidate] = struct{}{}
			return candidate
		}
	}
}

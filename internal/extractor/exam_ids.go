package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// examButtonSelector matches the "응시하기" button of every row in the
// previous-paper list fragment.
const examButtonSelector = "li > div > div > button:nth-child(2)"

var paperOnRegex = regexp.MustCompile(`paperOn\('(\d+)'`)

type ExamIDExtractor interface {
	ExtractExamIDs(html string) []string
}

type PaperListExtractor struct{}

func NewPaperListExtractor() *PaperListExtractor {
	return &PaperListExtractor{}
}

// ExtractExamIDs returns exam ids in document order. Buttons without a
// paperOn('<digits>' handler are skipped.
func (e *PaperListExtractor) ExtractExamIDs(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var ids []string
	doc.Find(examButtonSelector).Each(func(i int, s *goquery.Selection) {
		onclick, exists := s.Attr("onclick")
		if !exists {
			return
		}
		if id, ok := ParsePaperOn(onclick); ok {
			ids = append(ids, id)
		}
	})

	return ids
}

func ParsePaperOn(onclick string) (string, bool) {
	matches := paperOnRegex.FindStringSubmatch(onclick)
	if len(matches) < 2 {
		return "", false
	}
	return matches[1], true
}

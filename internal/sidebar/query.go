package sidebar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/junepark678/ebsi-csat/internal/ebsi"
)

var subjectNames = map[string]string{
	"1": "국어",
	"2": "수학",
	"3": "영어",
	"4": "한국사",
	"5": "사회탐구",
	"6": "과학탐구",
	"7": "직업탐구",
	"8": "제2외국어/한문",
}

// Form mirrors the sidebar search form fields.
type Form struct {
	Grade      string `json:"grade" form:"grade"`
	Subject    string `json:"subject" form:"subject"`
	Month      string `json:"month" form:"month"`
	Year       string `json:"year" form:"year"`
	ProblemIDs string `json:"problem_ids" form:"problem-ids"`
	Title      string `json:"title" form:"title"`
}

// clone returns a copy that shares no memory with the request it was
// parsed from; fiber hands out zero-copy strings unless Immutable is set.
func (f Form) clone() Form {
	return Form{
		Grade:      strings.Clone(f.Grade),
		Subject:    strings.Clone(f.Subject),
		Month:      strings.Clone(f.Month),
		Year:       strings.Clone(f.Year),
		ProblemIDs: strings.Clone(f.ProblemIDs),
		Title:      strings.Clone(f.Title),
	}
}

type SearchQuery struct {
	Paper   ebsi.PaperQuery
	Numbers []int
}

func BuildQuery(form Form, now time.Time) SearchQuery {
	year := strings.TrimSpace(form.Year)
	if year == "" {
		year = strconv.Itoa(now.Year())
	}

	return SearchQuery{
		Paper: ebsi.PaperQuery{
			Grade:   strings.TrimSpace(form.Grade),
			Subject: strings.TrimSpace(form.Subject),
			Month:   PadMonth(form.Month),
			Year:    year,
		},
		Numbers: ParseNumbers(form.ProblemIDs),
	}
}

func PadMonth(month string) string {
	month = strings.TrimSpace(month)
	if len(month) == 1 {
		return "0" + month
	}
	return month
}

// ParseNumbers reads a comma separated list of question numbers. Entries
// that cannot address a record (non numeric, < 1) are dropped.
func ParseNumbers(s string) []int {
	var numbers []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			continue
		}
		numbers = append(numbers, n)
	}
	return numbers
}

// SubjectName falls back to the raw code for unknown subjects.
func SubjectName(code string) string {
	if name, ok := subjectNames[code]; ok {
		return name
	}
	return code
}

func Label(q ebsi.PaperQuery, number int) string {
	return fmt.Sprintf("%s년 고%s %s월 %s %d번", q.Year, q.Grade, q.Month, SubjectName(q.Subject), number)
}

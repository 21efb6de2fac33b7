package ebsi

import (
	"fmt"
	"net/url"
)

// PaperQuery is the form sent to the previous-paper list endpoint.
// Month is expected zero padded.
type PaperQuery struct {
	Grade   string
	Subject string
	Month   string
	Year    string
}

func (q PaperQuery) Values() url.Values {
	return url.Values{
		"beginYear":   {q.Year},
		"currentPage": {"1"},
		"endYear":     {q.Year},
		"monthList":   {q.Month},
		"pageSize":    {"10"},
		"sort":        {"recent"},
		"subjList":    {q.Subject},
		"targetCd":    {"D" + q.Grade + "00"},
	}
}

type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %s", e.URL, e.Status)
}

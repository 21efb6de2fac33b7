package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrNoStatsData = errors.New("stats payload has no data")

// StatRecord is one question slot of a paper statistics payload.
type StatRecord struct {
	ItemID      string
	CorrectRate float64
}

func (r *StatRecord) UnmarshalJSON(b []byte) error {
	var raw struct {
		ItemID      json.RawMessage `json:"ITEM_ID"`
		CorrectRate json.RawMessage `json:"CORRECT_RATE"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	r.ItemID = rawString(raw.ItemID)
	r.CorrectRate = rawFloat(raw.CorrectRate)
	return nil
}

// Records holds the data array in question order; null entries stay nil.
type Records []*StatRecord

// At looks up question number n (1-indexed).
func (r Records) At(n int) (StatRecord, bool) {
	if n < 1 || n > len(r) || r[n-1] == nil {
		return StatRecord{}, false
	}
	return *r[n-1], true
}

type RecordExtractor interface {
	ExtractRecords(payload []byte) (Records, error)
}

type StatsExtractor struct{}

func NewStatsExtractor() *StatsExtractor {
	return &StatsExtractor{}
}

func (e *StatsExtractor) ExtractRecords(payload []byte) (Records, error) {
	return ParseStats(payload)
}

func ParseStats(payload []byte) (Records, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}

	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, ErrNoStatsData
	}

	var records Records
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode stats data: %w", err)
	}
	return records, nil
}

func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// rawFloat accepts numbers and numeric strings; anything else is 0.
func rawFloat(raw json.RawMessage) float64 {
	s := rawString(raw)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSONB column wrappers for the session repository. Each type round-trips
// through PostgreSQL jsonb via driver.Valuer / sql.Scanner.

func jsonbBytes(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}

// JSONBMap is a custom type for PostgreSQL JSONB columns that maps to map[string]interface{}
type JSONBMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONBMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONBMap) Scan(value interface{}) error {
	bytes, ok := jsonbBytes(value)
	if !ok || len(bytes) == 0 {
		*j = nil
		return nil
	}
	result := make(JSONBMap)
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*j = result
	return nil
}

// QuestionList stores interview questions as a JSONB array.
// A nil list means questions have not been generated yet.
type QuestionList []InterviewQuestion

func (l QuestionList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *QuestionList) Scan(value interface{}) error {
	bytes, ok := jsonbBytes(value)
	if !ok || len(bytes) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// AnswerList stores interview answers as a JSONB array
type AnswerList []InterviewAnswer

func (l AnswerList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]InterviewAnswer{})
	}
	return json.Marshal(l)
}

func (l *AnswerList) Scan(value interface{}) error {
	bytes, ok := jsonbBytes(value)
	if !ok || len(bytes) == 0 {
		*l = AnswerList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// CardList stores analysis cards as a JSONB array
type CardList []AnalysisCard

func (l CardList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]AnalysisCard{})
	}
	return json.Marshal(l)
}

func (l *CardList) Scan(value interface{}) error {
	bytes, ok := jsonbBytes(value)
	if !ok || len(bytes) == 0 {
		*l = CardList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// SolutionList stores solutions as a JSONB array
type SolutionList []Solution

func (l SolutionList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]Solution{})
	}
	return json.Marshal(l)
}

func (l *SolutionList) Scan(value interface{}) error {
	bytes, ok := jsonbBytes(value)
	if !ok || len(bytes) == 0 {
		*l = SolutionList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// StringList stores recommended model ids as a JSONB array
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	bytes, ok := jsonbBytes(value)
	if !ok || len(bytes) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// StringMap stores model-id to reason text mappings as a JSONB object
type StringMap map[string]string

func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(map[string]string{})
	}
	return json.Marshal(m)
}

func (m *StringMap) Scan(value interface{}) error {
	bytes, ok := jsonbBytes(value)
	if !ok || len(bytes) == 0 {
		*m = StringMap{}
		return nil
	}
	return json.Unmarshal(bytes, m)
}

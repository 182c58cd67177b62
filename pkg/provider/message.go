package provider

import (
	"encoding/json"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/multichange/pkg/change"
)

// Message types exchanged between the panel and the host.
const (
	// panel -> host, value is a TransformRequest
	MessageRequestTransform = "request-transform"
	// panel -> host, value is the rule list
	MessageRequestSave = "request-save"
	// panel -> host, no value; answered with apply-import
	MessageRequestImport = "request-import"
	// host -> panel, value is the rule list
	MessageApplyImport = "apply-import"
	// host -> panel, value is a PatternErrorReport
	MessageReportPatternError = "report-pattern-error"
)

// Message is one envelope crossing the panel boundary
type Message struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// TransformRequest asks the host to apply a rule list
type TransformRequest struct {
	Changes     change.List `json:"changes"`
	MultiEditor bool        `json:"multiEditor"`
}

// PatternErrorReport attaches an error message to one rule
type PatternErrorReport struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// NewMessage wraps value in an envelope of the given type.
func NewMessage(typ string, value any) (Message, error) {
	msg := Message{Type: typ}
	if value == nil {
		return msg, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return Message{}, errors.Errorf("encoding %s value: %w", typ, err)
	}
	msg.Value = data
	return msg, nil
}

// Changes decodes a rule list value leniently.
func (m Message) Changes() (change.List, error) {
	if len(m.Value) == 0 {
		return change.List{}, nil
	}
	return change.Unmarshal(m.Value)
}

// TransformRequest decodes a request-transform value. The rule list is
// decoded leniently.
func (m Message) TransformRequest() (TransformRequest, error) {
	var raw struct {
		Changes     json.RawMessage `json:"changes"`
		MultiEditor bool            `json:"multiEditor"`
	}
	if err := json.Unmarshal(m.Value, &raw); err != nil {
		return TransformRequest{}, errors.Errorf("decoding %s value: %w", m.Type, err)
	}

	req := TransformRequest{Changes: change.List{}, MultiEditor: raw.MultiEditor}
	if len(raw.Changes) > 0 && string(raw.Changes) != "null" {
		list, err := change.Unmarshal(raw.Changes)
		if err != nil {
			return TransformRequest{}, errors.Errorf("decoding %s changes: %w", m.Type, err)
		}
		req.Changes = list
	}
	return req, nil
}

// PatternError decodes a report-pattern-error value.
func (m Message) PatternError() (PatternErrorReport, error) {
	var report PatternErrorReport
	if err := json.Unmarshal(m.Value, &report); err != nil {
		return PatternErrorReport{}, errors.Errorf("decoding %s value: %w", m.Type, err)
	}
	return report, nil
}

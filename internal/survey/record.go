package survey

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// NullString is a JSON scalar that may be absent, null, or not a string at all.
// Numbers and booleans keep their literal text so a stray `"answer": 1` still counts as present.
type NullString struct {
	Value string
	Valid bool
}

func String(s string) NullString {
	return NullString{Value: s, Valid: true}
}

func (s *NullString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = NullString{}
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = NullString{Value: v, Valid: true}
		return nil
	}
	*s = NullString{Value: string(b), Valid: true}
	return nil
}

func (s NullString) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// NonEmpty reports whether the value is present and not the empty string.
func (s NullString) NonEmpty() bool {
	return s.Valid && s.Value != ""
}

// Ptr returns nil for an invalid value.
func (s NullString) Ptr() *string {
	if !s.Valid {
		return nil
	}
	v := s.Value
	return &v
}

// ReplyID is the fm_re_id of a stored reply row. WordPress has sent it both
// as a number and as a string.
type ReplyID struct {
	Value  string
	truthy bool
}

func NewReplyID(v string) ReplyID {
	return ReplyID{Value: v, truthy: v != ""}
}

func (id *ReplyID) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch t := v.(type) {
	case nil:
		*id = ReplyID{}
	case string:
		*id = ReplyID{Value: t, truthy: t != ""}
	case json.Number:
		f, err := t.Float64()
		*id = ReplyID{Value: t.String(), truthy: err != nil || f != 0}
	case bool:
		*id = ReplyID{Value: fmt.Sprint(t), truthy: t}
	default:
		*id = ReplyID{Value: string(b), truthy: true}
	}
	return nil
}

func (id ReplyID) MarshalJSON() ([]byte, error) {
	if id.Value == "" {
		return []byte("null"), nil
	}
	return json.Marshal(id.Value)
}

// Exists reports whether the identifier points at a reply row.
func (id ReplyID) Exists() bool {
	return id.truthy
}

// FormData holds per-question answers. The endpoint has delivered it as an
// object, as a JSON-encoded string, as a PHP empty array and as null.
type FormData struct {
	Fields map[string]any
	opaque string
}

func NewFormData(fields map[string]any) FormData {
	return FormData{Fields: fields}
}

func (f *FormData) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = formDataFrom(v)
	return nil
}

func formDataFrom(v any) FormData {
	switch t := v.(type) {
	case nil:
		return FormData{}
	case map[string]any:
		return FormData{Fields: t}
	case []any:
		if len(t) == 0 {
			return FormData{}
		}
		fields := make(map[string]any, len(t))
		for i, item := range t {
			fields[fmt.Sprint(i)] = item
		}
		return FormData{Fields: fields}
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return FormData{}
		}
		var inner any
		if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
			if _, isString := inner.(string); !isString {
				return formDataFrom(inner)
			}
		}
		return FormData{opaque: t}
	case bool:
		if !t {
			return FormData{}
		}
		return FormData{opaque: "true"}
	default:
		return FormData{opaque: fmt.Sprint(t)}
	}
}

// Empty reports whether no answer payload is attached.
func (f FormData) Empty() bool {
	return len(f.Fields) == 0 && strings.TrimSpace(f.opaque) == ""
}

// Reply is the nested reply object of newer history payloads.
type Reply struct {
	ReplyStatus  NullString `json:"reply_status"`
	FmReID       ReplyID    `json:"fm_re_id"`
	Answer       NullString `json:"answer"`
	FormData     FormData   `json:"form_data"`
	ReplyCreated NullString `json:"reply_created"`
	ReplyUpdated NullString `json:"reply_updated"`
}

// RawHistoryRecord is one element of the survey_history response. Fields
// keeps the whole upstream object so unknown keys survive decoration.
type RawHistoryRecord struct {
	Status NullString `json:"status"`
	Reply  *Reply     `json:"reply"`
	Answer NullString `json:"answer"`
	Str    NullString `json:"str"`

	Fields map[string]json.RawMessage `json:"-"`
}

func (r *RawHistoryRecord) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return fmt.Errorf("decoding history record: %w", err)
	}

	rec := RawHistoryRecord{Fields: fields}
	scalars := map[string]*NullString{
		"status": &rec.Status,
		"answer": &rec.Answer,
		"str":    &rec.Str,
	}
	for key, dst := range scalars {
		if raw, ok := fields[key]; ok {
			if err := dst.UnmarshalJSON(raw); err != nil {
				return fmt.Errorf("decoding history record %s: %w", key, err)
			}
		}
	}

	// PHP serializes an empty reply as [] or false; only an object is a reply.
	if raw, ok := fields["reply"]; ok && isObject(raw) {
		var reply Reply
		if err := json.Unmarshal(raw, &reply); err != nil {
			return fmt.Errorf("decoding history record reply: %w", err)
		}
		rec.Reply = &reply
	}

	*r = rec
	return nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// ParseHistory decodes a survey_history body. A null body is an empty
// history. Only a body that is not a JSON list is an error; an element that
// cannot be read as a record becomes an empty record in its place.
func ParseHistory(body []byte) ([]RawHistoryRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []RawHistoryRecord{}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil {
		return nil, err
	}

	records := make([]RawHistoryRecord, len(elems))
	for i, elem := range elems {
		if !isObject(elem) {
			slog.Warn("history element is not an object, treating it as empty",
				"index", i,
				"kind", jsonKind(elem),
			)
			continue
		}
		if err := records[i].UnmarshalJSON(elem); err != nil {
			slog.Warn("history element could not be decoded, treating it as empty",
				"index", i,
				"error", err,
			)
			records[i] = RawHistoryRecord{}
		}
	}
	return records, nil
}

func jsonKind(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "empty"
	}
	switch raw[0] {
	case '[':
		return "array"
	case '"':
		return "string"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}

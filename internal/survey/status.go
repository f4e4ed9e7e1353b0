package survey

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"
)

type Status string

const (
	StatusAnswered   Status = "answered"
	StatusUnanswered Status = "unanswered"
	StatusPending    Status = "pending"
)

func (s Status) IsAnswered() bool {
	return s == StatusAnswered
}

// parseStatus maps a free-form status word. Anything unrecognised is pending.
func parseStatus(s string) Status {
	switch strings.ToLower(s) {
	case "answered":
		return StatusAnswered
	case "unanswered":
		return StatusUnanswered
	default:
		return StatusPending
	}
}

// shape tags which historical payload variant a record arrived in.
type shape uint8

const (
	shapeLegacy shape = iota // flat answer/str fields only
	shapeNested              // reply object, no top-level status
	shapeStatus              // top-level status set by the endpoint
)

type nestedReply struct {
	status     string
	rowExists  bool
	hasPayload bool
}

// normalized is a record reduced to what the cascade reads.
type normalized struct {
	shape  shape
	status string
	reply  nestedReply
	answer string
	str    NullString
}

func normalize(r RawHistoryRecord) normalized {
	n := normalized{
		shape:  shapeLegacy,
		answer: r.Answer.Value,
		str:    r.Str,
	}

	switch {
	case r.Status.NonEmpty():
		n.shape = shapeStatus
		n.status = r.Status.Value
	case r.Reply != nil:
		n.shape = shapeNested
		n.reply = nestedReply{
			status:     r.Reply.ReplyStatus.Value,
			rowExists:  r.Reply.FmReID.Exists(),
			hasPayload: r.Reply.Answer.NonEmpty() || !r.Reply.FormData.Empty(),
		}
	}
	return n
}

type rule struct {
	name  string
	apply func(n normalized) (Status, bool)
}

// cascade is evaluated in order; the first rule that applies decides.
var cascade = []rule{
	{name: "status", apply: explicitStatus},
	{name: "reply_status", apply: replyStatus},
	{name: "reply_payload", apply: replyPayload},
	{name: "answer", apply: legacyAnswer},
	{name: "str", apply: legacyStr},
}

const defaultRule = "default"

// Resolve returns the display status of a history record. It never fails:
// missing, null and malformed fields all resolve to some status.
func Resolve(r RawHistoryRecord) Status {
	status, _ := Explain(r)
	return status
}

// Explain is Resolve plus the name of the rule that decided.
func Explain(r RawHistoryRecord) (Status, string) {
	n := normalize(r)
	for _, rl := range cascade {
		if status, ok := rl.apply(n); ok {
			return status, rl.name
		}
	}
	return StatusUnanswered, defaultRule
}

func explicitStatus(n normalized) (Status, bool) {
	if n.shape != shapeStatus {
		return "", false
	}
	return parseStatus(n.status), true
}

func replyStatus(n normalized) (Status, bool) {
	if n.shape != shapeNested || n.reply.status == "" {
		return "", false
	}
	return parseStatus(n.reply.status), true
}

// replyPayload infers the status of a reply row whose reply_status is null.
// Without a row id it does not apply and the legacy fields decide.
func replyPayload(n normalized) (Status, bool) {
	if n.shape != shapeNested || !n.reply.rowExists {
		return "", false
	}
	if n.reply.hasPayload {
		return StatusAnswered, true
	}
	return StatusUnanswered, true
}

func legacyAnswer(n normalized) (Status, bool) {
	if strings.TrimSpace(n.answer) == "" {
		return "", false
	}
	return StatusAnswered, true
}

func legacyStr(n normalized) (Status, bool) {
	if !n.str.Valid {
		return "", false
	}

	keys, err := keyCount(n.str.Value)
	if err == nil {
		if keys > 0 {
			return StatusAnswered, true
		}
		return "", false
	}

	slog.Debug("history str is not keyed JSON, checking it as text", "error", err)
	if strings.TrimSpace(n.str.Value) != "" {
		return StatusAnswered, true
	}
	return "", false
}

var errNullJSON = errors.New("json value is null")

// keyCount parses s and counts its enumerable keys: object members, array
// elements or string characters. Numbers and booleans have none. Only a
// syntax error or a JSON null is an error.
func keyCount(s string) (int, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case nil:
		return 0, errNullJSON
	case map[string]any:
		return len(t), nil
	case []any:
		return len(t), nil
	case string:
		return utf8.RuneCountInString(t), nil
	default:
		return 0, nil
	}
}

package survey

import "time"

var jst = time.FixedZone("JST", 9*60*60)

// WordPress stores reply timestamps as MySQL datetimes in site time.
var replyDateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatReplyDate renders a reply timestamp for display in Japan time.
// Unparseable input is returned as is.
func FormatReplyDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range replyDateLayouts {
		t, err := time.ParseInLocation(layout, s, jst)
		if err == nil {
			return t.In(jst).Format("2006/01/02 15:04:05")
		}
	}
	return s
}

package conversation

import (
	"strings"

	"github.com/elliotchance/pie/v2"
)

var urgencyMarkers = []string{
	"urgent",
	"emergency",
	"asap",
	"immediately",
	"critical",
	"deadline",
	"broken",
	"down",
	"not working",
	"error",
	"bug",
	"crash",
	"hacked",
	"lost",
}

// IsUrgent reports whether the utterance should page a human.
func IsUrgent(utterance string) bool {
	return containsAny(utterance, urgencyMarkers)
}

func containsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)

	return pie.Any(keywords, func(keyword string) bool {
		return strings.Contains(text, keyword)
	})
}

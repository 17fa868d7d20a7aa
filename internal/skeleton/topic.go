package skeleton

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var topicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`implement\s+(.+)`),
	regexp.MustCompile(`learn\s+(?:about\s+)?(.+)`),
	regexp.MustCompile(`understand\s+(.+)`),
	regexp.MustCompile(`teach\s+(?:me\s+)?(.+)`),
	regexp.MustCompile(`tutorial\s+(?:on\s+|for\s+)?(.+)`),
	regexp.MustCompile(`how\s+(?:to\s+)?(?:implement\s+)?(.+)`),
}

var topicSuffix = regexp.MustCompile(`\s*(paper|algorithm|method|technique)$`)

var titleCase = cases.Title(language.English)

// TopicFromQuery extracts the implementation topic from a free-form request
// such as "I want to implement DPO". Short topics read as acronyms and are
// upper-cased; longer ones are title-cased.
func TopicFromQuery(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	topic := q
	for _, re := range topicPatterns {
		if m := re.FindStringSubmatch(q); m != nil {
			topic = topicSuffix.ReplaceAllString(strings.TrimSpace(m[1]), "")
			break
		}
	}
	topic = strings.TrimRight(strings.TrimSpace(topic), "?.!")
	if len(topic) <= 5 {
		return strings.ToUpper(topic)
	}
	return titleCase.String(topic)
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// FileName returns the exercise file name for a topic.
func FileName(topic string, lang Language) string {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(topic), "_"), "_")
	if slug == "" {
		slug = "exercise"
	}
	return slug + lang.Ext
}

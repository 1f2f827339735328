package domain

import (
	"strings"
	"unicode"
)

// Sentiment captures the customer mood attached to a ticket.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentUrgent   Sentiment = "Urgent"
	SentimentUnknown  Sentiment = "Unknown"
)

// ParseSentiment normalizes a label such as "negative." or " NEUTRAL" into a Sentiment.
// Only the first word is considered so one-word model answers with trailing prose still parse.
func ParseSentiment(raw string) Sentiment {
	fields := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(fields) == 0 {
		return SentimentUnknown
	}
	switch fields[0] {
	case "positive":
		return SentimentPositive
	case "negative":
		return SentimentNegative
	case "neutral":
		return SentimentNeutral
	case "urgent":
		return SentimentUrgent
	default:
		return SentimentUnknown
	}
}

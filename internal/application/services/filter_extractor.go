package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopsense/backend/internal/domain/repositories"
)

// Patterns are tried in order; the first match wins.
var (
	maxPricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)under\s+\$?(\d+)`),
		regexp.MustCompile(`(?i)less\s+than\s+\$?(\d+)`),
	}
	minPricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)over\s+\$?(\d+)`),
		regexp.MustCompile(`(?i)more\s+than\s+\$?(\d+)`),
	}
	orderIDPattern = regexp.MustCompile(`(?i)order[:\s]+(\w+)`)
	statePattern   = regexp.MustCompile(`(?i)users?\s+(?:from|in)\s+(\w+)`)
)

// Category vocabulary, in precedence order. Extraction is substring-based so
// "electronic gadgets" still matches; the first vocabulary entry present in
// the message wins regardless of where it appears.
var categoryVocabulary = []string{
	"electronics",
	"clothing",
	"books",
	"home",
	"sports",
	"beauty",
}

// ExtractProductFilters derives catalog filters from a free-text message.
// Unrecognized messages yield the zero filter, which lists everything up to
// the row cap.
func ExtractProductFilters(message string) repositories.ProductFilter {
	var filter repositories.ProductFilter

	if value, ok := matchPrice(maxPricePatterns, message); ok {
		filter.MaxPrice = &value
	}
	if value, ok := matchPrice(minPricePatterns, message); ok {
		filter.MinPrice = &value
	}

	lowered := strings.ToLower(message)
	for _, category := range categoryVocabulary {
		if strings.Contains(lowered, category) {
			filter.Category = category
			break
		}
	}

	return filter
}

// ExtractOrderID pulls an order identifier from phrases like "order: abc123"
// or "order 42".
func ExtractOrderID(message string) (string, bool) {
	match := orderIDPattern.FindStringSubmatch(message)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// ExtractState pulls a state token from phrases like "users from California"
// or "user in Texas".
func ExtractState(message string) (string, bool) {
	match := statePattern.FindStringSubmatch(message)
	if match == nil {
		return "", false
	}
	return match[1], true
}

func matchPrice(patterns []*regexp.Regexp, message string) (int, bool) {
	for _, pattern := range patterns {
		match := pattern.FindStringSubmatch(message)
		if match == nil {
			continue
		}
		value, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		return value, true
	}
	return 0, false
}

// Package classifier infers a job category and seniority level from a job title.
package classifier

import (
	"regexp"
	"strings"

	"jobetl/internal/models"
)

// FuzzyThreshold is the minimum partial-ratio score accepted by the fuzzy stage.
const FuzzyThreshold = 80

var (
	parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)
	punctuationPattern   = regexp.MustCompile(`[-/,]`)
)

// Source tells which stage produced a classification.
type Source int

// Classification sources.
const (
	SourceKeyword Source = iota
	SourceFuzzy
	SourceDefault
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceKeyword:
		return "keyword"
	case SourceFuzzy:
		return "fuzzy"
	default:
		return "default"
	}
}

// Result is a classification together with how it was reached.
type Result struct {
	models.Classification
	CategorySource Source
	LevelMatched   bool
	FuzzyScore     float64
}

// Defaulted reports whether either field fell through to its default.
func (r Result) Defaulted() bool {
	return r.CategorySource == SourceDefault || !r.LevelMatched
}

// CleanTitle lower-cases a raw title, removes parenthetical asides, turns
// "-", "/" and "," into spaces and collapses whitespace.
func CleanTitle(title string) string {
	s := strings.ToLower(title)
	s = parentheticalPattern.ReplaceAllString(s, "")
	s = punctuationPattern.ReplaceAllString(s, " ")

	return strings.Join(strings.Fields(s), " ")
}

// Classify derives both category and level from an already cleaned title.
func Classify(title string) Result {
	category, source, score := categorize(title)
	level, matched := levelOf(title)

	return Result{
		Classification: models.Classification{Category: category, Level: level},
		CategorySource: source,
		LevelMatched:   matched,
		FuzzyScore:     score,
	}
}

// Category returns the category for a cleaned title.
func Category(title string) string {
	category, _, _ := categorize(title)

	return category
}

// Level returns the seniority level for a title.
func Level(title string) string {
	level, _ := levelOf(title)

	return level
}

func categorize(title string) (string, Source, float64) {
	if category, ok := keywordCategory(title); ok {
		return category, SourceKeyword, 100
	}

	category, score := fuzzyCategory(title)
	if score >= FuzzyThreshold {
		return category, SourceFuzzy, score
	}

	return models.CategorySoftwareEngineering, SourceDefault, score
}

// keywordCategory returns the first category with a keyword occurring in title.
func keywordCategory(title string) (string, bool) {
	for _, rule := range categoryRules {
		if containsAny(title, rule.keywords) {
			return rule.category, true
		}
	}

	return "", false
}

// fuzzyCategory returns the category of the best scoring keyword across all
// rules. Ties keep the earlier keyword.
func fuzzyCategory(title string) (string, float64) {
	bestCategory := ""
	bestScore := 0.0

	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if score := PartialRatio(title, kw); score > bestScore {
				bestCategory, bestScore = rule.category, score
			}
		}
	}

	return bestCategory, bestScore
}

func levelOf(title string) (string, bool) {
	lower := strings.ToLower(title)

	for _, rule := range levelRules {
		if containsAny(lower, rule.keywords) {
			return rule.level, true
		}
	}

	return models.LevelMid, false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}

	return false
}

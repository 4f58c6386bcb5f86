// Package patterns scores free text against weighted tables of case-insensitive
// regular expressions. Scoring is pure: the same text and table always produce
// the same result, which lets callers cache anything derived from it.
package patterns

import (
	"regexp"
	"strings"
)

// DefaultCeiling is the accumulated weight that maps to a confidence of 1.
const DefaultCeiling = 3.0

// Category is a named group of patterns sharing one weight.
type Category struct {
	Name     string
	Weight   float64
	Patterns []*regexp.Regexp
}

// Table is an ordered list of categories. Order decides the order of matched patterns.
type Table struct {
	Categories []Category
	Ceiling    float64
}

// Result is the outcome of scoring a text against a table.
type Result struct {
	Confidence      float64
	MatchedPatterns []string
}

// NewCategory compiles the expressions case-insensitively. It panics on an invalid
// expression, so tables are built at package init like regexp.MustCompile.
func NewCategory(name string, weight float64, exprs ...string) Category {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+expr))
	}
	return Category{Name: name, Weight: weight, Patterns: compiled}
}

// NewTable builds a table with the default ceiling.
func NewTable(categories ...Category) Table {
	return Table{Categories: categories, Ceiling: DefaultCeiling}
}

// Score accumulates the weight of every matching pattern and normalizes the total
// by the table ceiling. Matched patterns are reported as "category:expression".
func Score(text string, table Table) Result {
	result := Result{MatchedPatterns: []string{}}
	if strings.TrimSpace(text) == "" {
		return result
	}

	ceiling := table.Ceiling
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}

	total := 0.0
	for _, category := range table.Categories {
		for _, pattern := range category.Patterns {
			if pattern.MatchString(text) {
				total += category.Weight
				result.MatchedPatterns = append(result.MatchedPatterns, category.Name+":"+strings.TrimPrefix(pattern.String(), "(?i)"))
			}
		}
	}

	if total <= 0 {
		return result
	}
	result.Confidence = total / ceiling
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	return result
}

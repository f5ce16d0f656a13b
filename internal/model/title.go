package model

import "strings"

// titleDelimiter separates category, sub-category and title segments in a
// display title, e.g. "Work - Standup - Weekly notes".
const titleDelimiter = " - "

// ParsedTitle is the decomposition of a display title. Empty Category /
// SubCategory mean the segment was absent.
type ParsedTitle struct {
	Category    string
	SubCategory string
	Title       string
}

// ParseTitle splits a display title on " - " from the left:
//
//	"Title"                      -> {Title}
//	"Cat - Title"                -> {Cat, Title}
//	"Cat - Sub - Rest - Of"      -> {Cat, Sub, "Rest - Of"}
//
// Delimiters beyond the second stay inside the title.
func ParseTitle(s string) ParsedTitle {
	parts := strings.Split(s, titleDelimiter)
	switch len(parts) {
	case 1:
		return ParsedTitle{Title: s}
	case 2:
		return ParsedTitle{Category: parts[0], Title: parts[1]}
	default:
		return ParsedTitle{
			Category:    parts[0],
			SubCategory: parts[1],
			Title:       strings.Join(parts[2:], titleDelimiter),
		}
	}
}

// ParseSubcategoryTitle splits like ParseTitle but treats the first segment
// as a sub-category only. Used when the category is tracked separately from
// the title string.
func ParseSubcategoryTitle(s string) ParsedTitle {
	parts := strings.Split(s, titleDelimiter)
	if len(parts) == 1 {
		return ParsedTitle{Title: s}
	}
	return ParsedTitle{
		SubCategory: parts[0],
		Title:       strings.Join(parts[1:], titleDelimiter),
	}
}

// ConstructTitle is the exact inverse of ParseTitle: present segments are
// joined with " - " in category, sub-category, title order.
func ConstructTitle(category, subCategory, title string) string {
	segments := make([]string, 0, 3)
	if category != "" {
		segments = append(segments, category)
	}
	if subCategory != "" {
		segments = append(segments, subCategory)
	}
	segments = append(segments, title)
	return strings.Join(segments, titleDelimiter)
}

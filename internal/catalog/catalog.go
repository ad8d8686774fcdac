// internal/catalog/catalog.go
package catalog

import (
	"fmt"
	"strings"
)

// PlaceholderPrefix marks a folder id that has not been configured yet.
// Entries carrying it are treated as absent.
const PlaceholderPrefix = "YOUR_"

// Catalog maps composite keys (stream + qualifier + category) to folder ids
// in the document-store backend. It is loaded once at startup and never
// mutated afterwards.
type Catalog map[string]string

// Key builds a lookup key from its parts, e.g. Key("natural", "physics",
// "quizzes") -> "natural_physics_quizzes".
func Key(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "_")
}

// Resolve returns the folder id for key. Missing entries and placeholder
// values both report false.
func (c Catalog) Resolve(key string) (string, bool) {
	id, ok := c[key]
	if !ok || id == "" || strings.HasPrefix(id, PlaceholderPrefix) {
		return "", false
	}
	return id, true
}

// Merge overlays entries from m on top of the catalog and returns it.
// Used to apply folder ids from the config file over the compiled defaults.
func (c Catalog) Merge(m map[string]string) Catalog {
	for k, v := range m {
		if v != "" {
			c[k] = v
		}
	}
	return c
}

// Default returns the full key space the bot serves: textbooks and
// teacher's guides per grade, notes/cheat sheets/quizzes per subject, past
// exams per year, and exam/study tips, for both streams. Values are
// placeholders until overridden from configuration.
func Default() Catalog {
	c := Catalog{}

	grades := []string{"grade9", "grade10", "grade11", "grade12"}
	for _, stream := range []string{"natural", "social"} {
		for _, g := range grades {
			c[Key(stream, g, "textbooks")] = placeholder(stream, g, "textbooks")
			c[Key(stream, g, "teachers_guide")] = placeholder(stream, g, "guide")
		}

		subjects := []string{"math", "english", "aptitude"}
		if stream == "natural" {
			subjects = append(subjects, "physics", "biology", "chemistry")
		} else {
			subjects = append(subjects, "geography", "history", "economics")
		}
		for _, s := range subjects {
			c[Key(stream, s, "notes")] = placeholder(stream, s, "notes")
			c[Key(stream, s, "cheats")] = placeholder(stream, s, "cheats")
			c[Key(stream, s, "quizzes")] = placeholder(stream, s, "quizzes")
		}

		for year := 2000; year <= 2017; year++ {
			c[Key(stream, fmt.Sprint(year), "exam")] = placeholder(stream, fmt.Sprint(year), "exam")
		}

		c[Key(stream, "exam_tips")] = placeholder(stream, "exam_tips")
		c[Key(stream, "study_tips")] = placeholder(stream, "study_tips")
	}

	return c
}

func placeholder(parts ...string) string {
	return PlaceholderPrefix + strings.ToUpper(strings.Join(parts, "_")) + "_FOLDER_ID"
}

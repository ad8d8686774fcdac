package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "natural_physics_quizzes", Key("Natural", "Physics", "quizzes"))
	assert.Equal(t, "social_2014_exam", Key("social", " 2014 ", "exam"))
	assert.Equal(t, "natural_exam_tips", Key("natural", "exam_tips"))
}

func TestResolve(t *testing.T) {
	c := Catalog{
		"natural_physics_quizzes": "folder-123",
		"natural_math_quizzes":    "YOUR_NATURAL_MATH_QUIZZES_FOLDER_ID",
		"natural_biology_quizzes": "",
	}

	id, ok := c.Resolve("natural_physics_quizzes")
	require.True(t, ok)
	assert.Equal(t, "folder-123", id)

	// Placeholders, empties and unknown keys all read as not configured.
	for _, key := range []string{"natural_math_quizzes", "natural_biology_quizzes", "no_such_key"} {
		_, ok := c.Resolve(key)
		assert.False(t, ok, "Resolve(%q)", key)
	}
}

func TestMergeOverridesPlaceholders(t *testing.T) {
	c := Default().Merge(map[string]string{
		"natural_physics_quizzes": "folder-123",
		"social_history_notes":    "",
	})

	id, ok := c.Resolve("natural_physics_quizzes")
	require.True(t, ok)
	assert.Equal(t, "folder-123", id)

	// Empty overrides keep the placeholder.
	_, ok = c.Resolve("social_history_notes")
	assert.False(t, ok)
}

func TestDefaultCoversTheKeySpace(t *testing.T) {
	c := Default()

	keys := []string{
		"natural_grade9_textbooks",
		"natural_grade12_teachers_guide",
		"social_grade10_textbooks",
		"natural_physics_quizzes",
		"natural_chemistry_notes",
		"natural_math_cheats",
		"social_geography_notes",
		"social_economics_quizzes",
		"social_aptitude_cheats",
		"natural_2000_exam",
		"natural_2017_exam",
		"social_2014_exam",
		"natural_exam_tips",
		"social_study_tips",
	}
	for _, key := range keys {
		assert.Contains(t, c, key)
	}

	// Stream-specific subjects must not leak across streams.
	assert.NotContains(t, c, "social_physics_quizzes")
	assert.NotContains(t, c, "natural_history_notes")

	// Every default is a placeholder, so a fresh catalog resolves nothing.
	for key := range c {
		_, ok := c.Resolve(key)
		assert.False(t, ok, "default entry %q must not resolve", key)
	}
}

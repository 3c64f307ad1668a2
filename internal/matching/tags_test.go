package matching

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTag(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`"Hiking"`, "Hiking"},
		{`{"name": "Product design", "label": "ignored"}`, "Product design"},
		{`{"label": "Jazz", "title": "ignored"}`, "Jazz"},
		{`{"title": "Startups"}`, "Startups"},
		{`{"text": "Climbing"}`, "Climbing"},
		{`{"weight": 3, "zeta": "Z", "alpha": "A"}`, "Z"},
		{`{"b": " ", "a": 1, "c": "Cooking", "aa": "Art"}`, "Cooking"},
		{`{"name": 5, "description": "Chess"}`, "Chess"},
		{`{"weight": 3}`, ""},
		{`42`, ""},
		{`null`, ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeTag(json.RawMessage(c.raw)), c.raw)
	}
}

func TestFormatTags(t *testing.T) {
	assert.Equal(t, "no tags available", FormatTags(nil))
	assert.Equal(t, "no tags available", FormatTags([]byte(`[]`)))
	assert.Equal(t, "no tags available", FormatTags([]byte(`not json`)))
	assert.Equal(t, "AI, Tennis", FormatTags([]byte(`["AI", {"weight": 1}, {"name": "Tennis"}]`)))
}

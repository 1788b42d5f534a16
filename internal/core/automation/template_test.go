package automation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock() time.Time {
	return time.Date(2025, time.March, 7, 15, 0, 0, 0, time.UTC)
}

func TestRender_Tokens(t *testing.T) {
	renderer := NewRendererWithClock(fixedClock)

	entity := map[string]interface{}{
		"name":   "Maria Silva",
		"status": "qualified",
		"value":  float64(1500.5),
	}
	event := map[string]interface{}{
		"old_value": "new",
		"new_value": "qualified",
		"count":     float64(3),
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "bare key resolves from entity first",
			template: "Lead {{name}} moved",
			want:     "Lead Maria Silva moved",
		},
		{
			name:     "bare key falls back to event data",
			template: "was {{old_value}}",
			want:     "was new",
		},
		{
			name:     "explicit entity prefix",
			template: "{{entity.status}}",
			want:     "qualified",
		},
		{
			name:     "explicit event prefix",
			template: "{{event.new_value}}",
			want:     "qualified",
		},
		{
			name:     "today renders dd/mm/yyyy",
			template: "Follow up em {{today}}",
			want:     "Follow up em 07/03/2025",
		},
		{
			name:     "numbers are formatted",
			template: "value {{value}} count {{count}}",
			want:     "value 1500.5 count 3",
		},
		{
			name:     "unresolved token stays verbatim",
			template: "hello {{missing}}",
			want:     "hello {{missing}}",
		},
		{
			name:     "prefixed token missing stays verbatim",
			template: "{{event.missing}}",
			want:     "{{event.missing}}",
		},
		{
			name:     "no tokens passes through",
			template: "plain text",
			want:     "plain text",
		},
		{
			name:     "multiple tokens in one template",
			template: "{{name}}: {{old_value}} -> {{new_value}}",
			want:     "Maria Silva: new -> qualified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderer.Render(tt.template, entity, event))
		})
	}
}

func TestRender_NonScalarValuesStayVerbatim(t *testing.T) {
	renderer := NewRendererWithClock(fixedClock)

	entity := map[string]interface{}{
		"tags": []string{"vip", "inbound"},
		"meta": map[string]interface{}{"a": 1},
	}

	assert.Equal(t, "{{tags}}", renderer.Render("{{tags}}", entity, nil))
	assert.Equal(t, "{{meta}}", renderer.Render("{{meta}}", entity, nil))
}

func TestRender_TokenWhitespaceTrimmed(t *testing.T) {
	renderer := NewRendererWithClock(fixedClock)

	entity := map[string]interface{}{"name": "Ana"}
	assert.Equal(t, "Ana", renderer.Render("{{ name }}", entity, nil))
}

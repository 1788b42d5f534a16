package automation

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var tokenPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Renderer substitutes {{key}}, {{entity.key}}, {{event.key}} and {{today}}
// tokens in message/task templates. Only scalar (string/number) values
// participate; tokens with no matching value stay verbatim in the output so
// generated messages never silently drop information.
type Renderer struct {
	now func() time.Time
}

// NewRenderer creates a renderer on the real clock.
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// NewRendererWithClock creates a renderer with a fixed clock for tests.
func NewRendererWithClock(now func() time.Time) *Renderer {
	return &Renderer{now: now}
}

// Render replaces all tokens in template. Bare {{key}} tokens resolve
// against the entity snapshot first, then the event data.
func (r *Renderer) Render(template string, entity, event map[string]interface{}) string {
	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		key := strings.TrimSpace(strings.Trim(token, "{}"))

		if key == "today" {
			return r.now().Format("02/01/2006")
		}

		if name, ok := strings.CutPrefix(key, "entity."); ok {
			return scalarOrToken(entity, name, token)
		}
		if name, ok := strings.CutPrefix(key, "event."); ok {
			return scalarOrToken(event, name, token)
		}

		if value, ok := scalarValue(entity, key); ok {
			return value
		}
		if value, ok := scalarValue(event, key); ok {
			return value
		}
		return token
	})
}

func scalarOrToken(data map[string]interface{}, key, token string) string {
	if value, ok := scalarValue(data, key); ok {
		return value
	}
	return token
}

// scalarValue formats string and numeric values; everything else is ignored.
func scalarValue(data map[string]interface{}, key string) (string, bool) {
	raw, exists := data[key]
	if !exists {
		return "", false
	}

	switch v := raw.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

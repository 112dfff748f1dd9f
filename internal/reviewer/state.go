package reviewer

import (
	"encoding/json"
	"strings"
)

// ExpectedClient reads REFERENCIA.cliente_atual, or REFERENCIA.cliente, from
// the structured conversation state. Malformed or empty state yields "".
func ExpectedClient(state string) string {
	if strings.TrimSpace(state) == "" {
		return ""
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(state), &doc); err != nil {
		return ""
	}

	ref, ok := doc["REFERENCIA"].(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"cliente_atual", "cliente"} {
		if s, ok := ref[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

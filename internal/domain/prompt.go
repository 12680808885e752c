package domain

import (
	"encoding/json"
	"fmt"
)

// BuildPrompt renders the summarization prompt for a pipeline run. The prompt
// doubles as the summary cache key, so the rendering must be deterministic:
// encoding/json sorts map keys, which keeps identical aggregation results on
// byte-identical prompts.
func BuildPrompt(name, description string, data []Record) string {
	payload, err := json.Marshal(data)
	if err != nil {
		// Aggregation output is JSON-compatible by construction.
		payload = []byte("[]")
	}
	return fmt.Sprintf("Summarize this data insight about “%s”. %s\n\n%s", name, description, payload)
}

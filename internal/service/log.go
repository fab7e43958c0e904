package service

import (
	"encoding/json"
	"log"
	"time"
)

// logEvent emits one JSON log line for best-effort failures and anomalies
// that must not abort the surrounding operation. Same line shape as the
// request logger and the migration logs.
func logEvent(component, event string, fields map[string]any) {
	data := map[string]any{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"level":     "warn",
		"component": component,
		"event":     event,
	}
	for k, v := range fields {
		data[k] = v
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal log event: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}

package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// unitFrame is the JSON payload of one SSE data event.
type unitFrame struct {
	Chunk    string              `json:"chunk"`
	Metadata []map[string]string `json:"metadata"`
	Scores   []float64           `json:"scores"`
}

// errorFrame reports a mid-stream failure to the client.
type errorFrame struct {
	Error string `json:"error"`
}

// writeSSE sends one data event and flushes it to the client.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

// writeSSEDone sends the end-of-stream marker.
func writeSSEDone(w http.ResponseWriter, flusher http.Flusher) {
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

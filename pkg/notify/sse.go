package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/strideworks/erp-core/pkg/permissions"
)

// SSEHandler streams approval_decision events to the authenticated user over
// server-sent events. The sink detaches when the client disconnects; events
// arriving afterwards queue for the next connection.
func SSEHandler(bus *Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := permissions.UserFromContext(r.Context())
		if user == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		sink := bus.Register(user.ID)
		defer sink.Close()

		for {
			select {
			case <-r.Context().Done():
				return
			case event, open := <-sink.Events():
				if !open {
					return
				}
				data, err := json.Marshal(event)
				if err != nil {
					slog.Error("marshal decision event", "error", err)
					continue
				}
				fmt.Fprintf(w, "event: approval_decision\ndata: %s\n\n", data)
				flusher.Flush()
			}
		}
	}
}

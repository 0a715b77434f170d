package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pkordes/travel-guide/internal/ui"
)

// keepAliveInterval is how often an idle event stream sends a comment line
// so proxies do not close it.
const keepAliveInterval = 25 * time.Second

// getState handles GET /state.
func (s *Server) getState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Read())
}

// streamEvents handles GET /events as a server-sent event stream. The
// current snapshot is sent first, then one "state" event per change.
// Snapshots the client is too slow to take are coalesced into the latest.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	latest := make(chan ui.State, 1)
	push := func(st ui.State) {
		select {
		case <-latest:
		default:
		}
		latest <- st
	}
	unsubscribe := s.state.Subscribe(push)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	var seq uint64
	send := func(st ui.State) error {
		data, err := json.Marshal(st)
		if err != nil {
			return err
		}
		seq++
		if _, err := fmt.Fprintf(w, "id: %s\nevent: state\ndata: %s\n\n", strconv.FormatUint(seq, 10), data); err != nil {
			return err
		}
		return rc.Flush()
	}

	if err := send(s.state.Read()); err != nil {
		s.log.WarnContext(r.Context(), "event stream: initial write", "error", err)
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case st := <-latest:
			if err := send(st); err != nil {
				s.log.DebugContext(r.Context(), "event stream closed", "error", err)
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

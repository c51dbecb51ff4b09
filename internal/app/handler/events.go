package handler

import (
	"fmt"
	"net/http"

	"topupmart/internal/app/feed"
	"topupmart/internal/app/logger"
)

type EventsHandler struct {
	feed *feed.Publisher
}

func NewEventsHandler(pub *feed.Publisher) *EventsHandler {
	return &EventsHandler{
		feed: pub,
	}
}

// Stream bridges the caller's wallet and order channels to the browser over
// server-sent events. Admins additionally receive the firehose channel.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Events.Stream")
	l.Debug().Send()

	u, err := ReadContextUser(ctx)
	if err != nil {
		l.Debug().Err(err).Msg("Unauthorized")
		WriteError(w, err, http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub := h.feed.Subscribe(ctx, u.ID)
	if u.IsAdmin {
		_ = sub.Close()
		sub = h.feed.SubscribeAdmin(ctx)
	}
	defer func() {
		_ = sub.Close()
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			_, _ = fmt.Fprintf(w, "data: %s\n\n", msg.Payload)
			flusher.Flush()
		}
	}
}

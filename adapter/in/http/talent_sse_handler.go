package http

import (
	"bufio"
	"time"

	"talent_server/adapter/out/realtime"
	"talent_server/core/port/out"
	"talent_server/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// SSEHandler streams realtime events to the authenticated actor.
type SSEHandler struct {
	hub  *realtime.SSEHub
	port out.RealtimePort
	log  zerolog.Logger
}

func NewSSEHandler(hub *realtime.SSEHub, port out.RealtimePort, log zerolog.Logger) *SSEHandler {
	return &SSEHandler{
		hub:  hub,
		port: port,
		log:  log.With().Str("handler", "sse").Logger(),
	}
}

func (h *SSEHandler) Register(router fiber.Router) {
	router.Get("/events", h.Stream)
	router.Get("/events/status", h.Status)
}

func (h *SSEHandler) Stream(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return err
	}

	userID := actor.ID
	client := h.hub.CreateClient(userID)
	h.log.Info().Str("user_id", userID).Msg("SSE client connected")

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(client.HeartbeatInterval())
		defer ticker.Stop()
		defer func() {
			client.Close()
			h.log.Info().Str("user_id", userID).Msg("SSE client disconnected")
		}()

		w.WriteString("event: connected\n")
		w.WriteString("data: {\"status\":\"connected\"}\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case event, ok := <-client.Events:
				if !ok {
					return
				}
				data, err := realtime.SerializeEvent(event)
				if err != nil {
					h.log.Error().Err(err).Msg("failed to serialize event")
					continue
				}

				w.WriteString("event: ")
				w.WriteString(string(event.Type))
				w.WriteString("\ndata: ")
				w.Write(data)
				w.WriteString("\n\n")
				if err := w.Flush(); err != nil {
					h.log.Debug().Err(err).Msg("client disconnected during write")
					return
				}

			case <-ticker.C:
				w.WriteString(": heartbeat\n\n")
				if err := w.Flush(); err != nil {
					h.log.Debug().Err(err).Msg("client disconnected during heartbeat")
					return
				}

			case <-client.Done:
				return
			}
		}
	})

	return nil
}

func (h *SSEHandler) Status(c *fiber.Ctx) error {
	actor, err := GetActor(c)
	if err != nil {
		return err
	}
	status := fiber.Map{
		"user_id":         actor.ID,
		"connected":       h.port.IsConnected(actor.ID),
		"connected_users": h.port.ConnectedCount(),
	}
	if s, ok := h.port.(interface{ Stats() realtime.SSEStats }); ok {
		status["stats"] = s.Stats()
	}
	return response.OK(c, "Realtime status", status)
}

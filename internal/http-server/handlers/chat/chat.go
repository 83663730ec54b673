package chat

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"classroom/entity"
	"classroom/internal/http-server/handlers/httperr"
	"classroom/lib/api/cont"
	"classroom/lib/api/response"
	"classroom/lib/sl"
)

type Core interface {
	SendMessage(from, to, text string) (*entity.ChatMessage, error)
	Conversation(a, b string) ([]*entity.ChatMessage, error)
	MarkAsRead(messageIds []string) error
}

func requestLogger(log *slog.Logger, r *http.Request) *slog.Logger {
	return log.With(
		sl.Module("http.handlers.chat"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, httperr.Status(err))
	render.JSON(w, r, response.Error(httperr.Message(err)))
}

// History returns the conversation between the authenticated user and the
// party named in the query.
func History(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		with := r.URL.Query().Get("with")
		if with == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Query parameter 'with' required"))
			return
		}
		session := cont.GetSession(r.Context())

		messages, err := handler.Conversation(session.Subject, with)
		if err != nil {
			logger.Warn("conversation", sl.Err(err))
			renderError(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(messages))
	}
}

// SendMessage is the request/response fallback for clients without an
// open socket; delivery to attached recipients still goes over the bus.
func SendMessage(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		var req entity.SendMessageRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("From, to and message required"))
			return
		}

		message, err := handler.SendMessage(req.From, req.To, req.Message)
		if err != nil {
			logger.Warn("send message", sl.Err(err))
			renderError(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(message))
	}
}

func MarkAsRead(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		var req entity.MarkAsReadRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Message ids required"))
			return
		}

		if err := handler.MarkAsRead(req.MessageIds); err != nil {
			logger.Warn("mark as read", sl.Err(err))
			renderError(w, r, err)
			return
		}
		logger.Debug("messages marked read", slog.Int("count", len(req.MessageIds)))

		render.JSON(w, r, response.Ok(nil))
	}
}

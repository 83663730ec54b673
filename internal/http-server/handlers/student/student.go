package student

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"classroom/entity"
	"classroom/internal/http-server/handlers/httperr"
	"classroom/lib/api/response"
	"classroom/lib/sl"
)

type Core interface {
	MyLessons(identifier string) (*entity.Student, error)
	MarkLessonDone(phoneNumber, lessonId string) error
	EditProfile(phoneNumber, name, email string) error
}

func requestLogger(log *slog.Logger, r *http.Request) *slog.Logger {
	return log.With(
		sl.Module("http.handlers.student"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, httperr.Status(err))
	render.JSON(w, r, response.Error(httperr.Message(err)))
}

// lessonsPayload mirrors what the dashboard renders: the list plus a
// short profile summary.
type lessonsPayload struct {
	Lessons []entity.Lesson `json:"lessons"`
	Student profileSummary  `json:"student"`
}

type profileSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func MyLessons(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		identifier := r.URL.Query().Get("phone")
		if identifier == "" {
			identifier = r.URL.Query().Get("email")
		}
		if identifier == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Phone or email required"))
			return
		}

		profile, err := handler.MyLessons(identifier)
		if err != nil {
			logger.Warn("my lessons", sl.Err(err))
			renderError(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(lessonsPayload{
			Lessons: profile.Lessons,
			Student: profileSummary{
				Name:  profile.Name,
				Email: profile.Email,
				Phone: profile.Phone,
			},
		}))
	}
}

func MarkLessonDone(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		var req entity.MarkLessonDoneRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Phone and lessonId required"))
			return
		}

		if err := handler.MarkLessonDone(req.Phone, req.LessonId); err != nil {
			logger.Warn("mark lesson done", sl.Err(err))
			renderError(w, r, err)
			return
		}
		logger.Debug("lesson completed",
			sl.Secret("phone", req.Phone),
			slog.String("lesson_id", req.LessonId),
		)

		render.JSON(w, r, response.Ok(nil))
	}
}

func EditProfile(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		var req entity.EditProfileRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Phone, name and email required"))
			return
		}

		if err := handler.EditProfile(req.Phone, req.Name, req.Email); err != nil {
			logger.Warn("edit profile", sl.Err(err))
			renderError(w, r, err)
			return
		}
		logger.Info("profile edited", sl.Secret("phone", req.Phone))

		render.JSON(w, r, response.Ok(nil))
	}
}

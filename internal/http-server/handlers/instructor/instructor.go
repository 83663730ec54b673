package instructor

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"classroom/entity"
	"classroom/internal/http-server/handlers/httperr"
	"classroom/lib/api/response"
	"classroom/lib/sl"
)

type Core interface {
	AddStudent(name, phoneNumber, email string) error
	ListStudents() ([]*entity.Student, error)
	GetStudent(phoneNumber string) (*entity.Student, error)
	EditStudent(phoneNumber, name, email string) error
	DeleteStudent(phoneNumber string) error
	AssignLesson(studentPhone, title, description string) (*entity.Lesson, error)
}

func requestLogger(log *slog.Logger, r *http.Request) *slog.Logger {
	return log.With(
		sl.Module("http.handlers.instructor"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, httperr.Status(err))
	render.JSON(w, r, response.Error(httperr.Message(err)))
}

func AddStudent(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		var req entity.AddStudentRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Name, phone and email required"))
			return
		}

		if err := handler.AddStudent(req.Name, req.Phone, req.Email); err != nil {
			logger.Error("add student", sl.Err(err))
			renderError(w, r, err)
			return
		}
		logger.Info("student added", sl.Secret("phone", req.Phone))

		render.JSON(w, r, response.Ok(nil))
	}
}

func Students(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		students, err := handler.ListStudents()
		if err != nil {
			logger.Error("list students", sl.Err(err))
			renderError(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(students))
	}
}

func Student(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)
		phone := chi.URLParam(r, "phone")

		student, err := handler.GetStudent(phone)
		if err != nil {
			logger.Warn("get student", sl.Err(err))
			renderError(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(student))
	}
}

func EditStudent(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)
		phone := chi.URLParam(r, "phone")

		var req entity.EditStudentRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request"))
			return
		}

		if err := handler.EditStudent(phone, req.Name, req.Email); err != nil {
			logger.Warn("edit student", sl.Err(err))
			renderError(w, r, err)
			return
		}
		logger.Info("student edited", sl.Secret("phone", phone))

		render.JSON(w, r, response.Ok(nil))
	}
}

func DeleteStudent(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)
		phone := chi.URLParam(r, "phone")

		if err := handler.DeleteStudent(phone); err != nil {
			logger.Warn("delete student", sl.Err(err))
			renderError(w, r, err)
			return
		}
		logger.Info("student deleted", sl.Secret("phone", phone))

		render.JSON(w, r, response.Ok(nil))
	}
}

func AssignLesson(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		var req entity.AssignLessonRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Student phone and title required"))
			return
		}

		lesson, err := handler.AssignLesson(req.StudentPhone, req.Title, req.Description)
		if err != nil {
			logger.Warn("assign lesson", sl.Err(err))
			renderError(w, r, err)
			return
		}
		logger.Info("lesson assigned",
			sl.Secret("phone", req.StudentPhone),
			slog.String("lesson_id", lesson.Id),
		)

		render.JSON(w, r, response.Ok(lesson))
	}
}

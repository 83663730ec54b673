package auth

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
	IssuePhoneCode(phoneNumber string) error
	ValidatePhoneCode(phoneNumber, code string) (*entity.CodeValidationResult, error)
	IssueEmailCode(email string) error
	ValidateEmailCode(email, code string) (*entity.CodeValidationResult, error)
	CheckUserType(identifier string) (string, error)
	LoginPassword(identifier, password string) (*entity.LoginResult, error)
	ValidateInvitation(token string) (*entity.InvitationDetails, error)
	SetupAccount(token, username, password string) error
}

func requestLogger(log *slog.Logger, r *http.Request) *slog.Logger {
	return log.With(
		sl.Module("http.handlers.auth"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, httperr.Status(err))
	render.JSON(w, r, response.Error(httperr.Message(err)))
}

func CreateAccessCode(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		var req entity.CreateAccessCodeRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Phone number required"))
			return
		}

		if err := handler.IssuePhoneCode(req.PhoneNumber); err != nil {
			logger.Error("issue phone code", sl.Err(err))
			renderError(w, r, err)
			return
		}
		logger.Debug("phone code issued", sl.Secret("phone", req.PhoneNumber))

		render.JSON(w, r, response.Ok(nil))
	}
}

func ValidateAccessCode(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		var req entity.ValidateAccessCodeRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Phone number and access code required"))
			return
		}

		result, err := handler.ValidatePhoneCode(req.PhoneNumber, req.AccessCode)
		if err != nil {
			logger.Warn("validate phone code", sl.Err(err))
			renderError(w, r, err)
			return
		}
		logger.Debug("phone code validated", slog.String("user_type", result.UserType))

		render.JSON(w, r, response.Ok(result))
	}
}

func LoginEmail(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		var req entity.LoginEmailRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Valid email required"))
			return
		}

		if err := handler.IssueEmailCode(req.Email); err != nil {
			logger.Error("issue email code", sl.Err(err))
			renderError(w, r, err)
			return
		}
		logger.Debug("email code issued", sl.Secret("email", req.Email))

		render.JSON(w, r, response.Ok(nil))
	}
}

func ValidateEmailCode(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		var req entity.ValidateEmailCodeRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Email and access code required"))
			return
		}

		result, err := handler.ValidateEmailCode(req.Email, req.AccessCode)
		if err != nil {
			logger.Warn("validate email code", sl.Err(err))
			renderError(w, r, err)
			return
		}
		logger.Debug("email code validated", slog.String("user_type", result.UserType))

		render.JSON(w, r, response.Ok(result))
	}
}

func CheckUserType(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		var req entity.CheckUserTypeRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Email or phone number required"))
			return
		}

		identifier := req.Email
		if identifier == "" {
			identifier = req.PhoneNumber
		}
		userType, err := handler.CheckUserType(identifier)
		if err != nil {
			logger.Warn("check user type", sl.Err(err))
			renderError(w, r, err)
			return
		}

		render.JSON(w, r, response.Ok(map[string]string{"userType": userType}))
	}
}

func LoginPassword(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		var req entity.LoginPasswordRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Identifier and password required"))
			return
		}

		result, err := handler.LoginPassword(req.Identifier, req.Password)
		if err != nil {
			logger.Warn("password login", sl.Err(err))
			renderError(w, r, err)
			return
		}
		logger.Debug("password login ok", sl.Secret("phone", result.Phone))

		render.JSON(w, r, response.Ok(result))
	}
}

func ValidateInvitation(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		token := r.URL.Query().Get("token")
		if token == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Token required"))
			return
		}
		logger = logger.With(sl.Secret("token", token))

		details, err := handler.ValidateInvitation(token)
		if err != nil {
			logger.Warn("validate invitation", sl.Err(err))
			renderError(w, r, err)
			return
		}
		logger.Debug("invitation valid")

		render.JSON(w, r, response.Ok(details))
	}
}

func SetupAccount(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := requestLogger(log, r)

		var req entity.SetupAccountRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Error("bind request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Token, username and password (6+ characters) required"))
			return
		}
		logger = logger.With(sl.Secret("token", req.Token))

		if err := handler.SetupAccount(req.Token, req.Username, req.Password); err != nil {
			logger.Warn("setup account", sl.Err(err))
			renderError(w, r, err)
			return
		}
		logger.Info("account setup", slog.String("username", req.Username))

		render.JSON(w, r, response.Ok(nil))
	}
}

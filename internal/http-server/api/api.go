package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"classroom/entity"
	"classroom/internal/config"
	authhandler "classroom/internal/http-server/handlers/auth"
	chathandler "classroom/internal/http-server/handlers/chat"
	"classroom/internal/http-server/handlers/errors"
	"classroom/internal/http-server/handlers/instructor"
	"classroom/internal/http-server/handlers/student"
	"classroom/internal/http-server/middleware/authenticate"
	"classroom/internal/http-server/middleware/authorize"
	"classroom/internal/http-server/middleware/timeout"
	"classroom/lib/sl"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	authhandler.Core
	instructor.Core
	student.Core
	chathandler.Core
}

// Realtime serves the websocket endpoint; it lives outside the request
// timeout so long-lived sockets are not cut off.
type Realtime interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

func New(conf *config.Config, log *slog.Logger, handler Handler, realtime Realtime) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Route("/auth", func(rootAuth chi.Router) {
		rootAuth.Use(timeout.Timeout(15))
		rootAuth.Use(render.SetContentType(render.ContentTypeJSON))
		rootAuth.Post("/createAccessCode", authhandler.CreateAccessCode(log, handler))
		rootAuth.Post("/validateAccessCode", authhandler.ValidateAccessCode(log, handler))
		rootAuth.Post("/loginEmail", authhandler.LoginEmail(log, handler))
		rootAuth.Post("/validateEmailCode", authhandler.ValidateEmailCode(log, handler))
		rootAuth.Post("/checkUserType", authhandler.CheckUserType(log, handler))
		rootAuth.Post("/loginPassword", authhandler.LoginPassword(log, handler))
		rootAuth.Post("/login", authhandler.LoginPassword(log, handler))
		rootAuth.Get("/validateInvitation", authhandler.ValidateInvitation(log, handler))
		rootAuth.Post("/setupAccount", authhandler.SetupAccount(log, handler))
	})

	router.Route("/instructor", func(rootInstructor chi.Router) {
		rootInstructor.Use(timeout.Timeout(15))
		rootInstructor.Use(render.SetContentType(render.ContentTypeJSON))
		rootInstructor.Use(authenticate.New(log, handler))
		rootInstructor.Use(authorize.Require(log, entity.RoleInstructor))
		rootInstructor.Post("/addStudent", instructor.AddStudent(log, handler))
		rootInstructor.Get("/students", instructor.Students(log, handler))
		rootInstructor.Get("/student/{phone}", instructor.Student(log, handler))
		rootInstructor.Put("/editStudent/{phone}", instructor.EditStudent(log, handler))
		rootInstructor.Delete("/student/{phone}", instructor.DeleteStudent(log, handler))
		rootInstructor.Post("/assignLesson", instructor.AssignLesson(log, handler))
	})

	router.Route("/student", func(rootStudent chi.Router) {
		rootStudent.Use(timeout.Timeout(15))
		rootStudent.Use(render.SetContentType(render.ContentTypeJSON))
		rootStudent.Use(authenticate.New(log, handler))
		rootStudent.Get("/myLessons", student.MyLessons(log, handler))
		rootStudent.Post("/markLessonDone", student.MarkLessonDone(log, handler))
		rootStudent.Put("/editProfile", student.EditProfile(log, handler))
	})

	router.Route("/chat", func(rootChat chi.Router) {
		if realtime != nil {
			rootChat.Get("/ws", realtime.ServeWS)
		}
		rootChat.Group(func(rest chi.Router) {
			rest.Use(timeout.Timeout(15))
			rest.Use(render.SetContentType(render.ContentTypeJSON))
			rest.Use(authenticate.New(log, handler))
			rest.Get("/history", chathandler.History(log, handler))
			rest.Post("/sendMessage", chathandler.SendMessage(log, handler))
			rest.Post("/markAsRead", chathandler.MarkAsRead(log, handler))
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:      router,
		ErrorLog:     httpLog,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIp, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}

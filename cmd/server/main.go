package main

import (
	"flag"
	"log"
	"log/slog"
	"path/filepath"

	"classroom/impl/auth"
	"classroom/impl/core"
	"classroom/internal/chat"
	"classroom/internal/config"
	"classroom/internal/database"
	"classroom/internal/http-server/api"
	"classroom/internal/mail"
	"classroom/internal/sms"
	"classroom/lib/logger"
	"classroom/lib/sl"
)

const logFileName = "classroom.log"

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, filepath.Join(*logPath, logFileName))
	lg.Info("starting classroom", slog.String("config", *configPath), slog.String("env", conf.Env))

	db := database.NewMongoClient(conf)
	if db == nil {
		log.Fatal("mongo is disabled; the server cannot run without storage")
	}
	if err := db.EnsureIndexes(); err != nil {
		log.Fatal("ensure indexes: ", err)
	}

	classroomCore := core.New(db, core.Options{
		CodeTTL:      conf.Auth.CodeTTL,
		InviteWindow: conf.Auth.InviteWindow,
		BaseUrl:      conf.Auth.BaseUrl,
	}, lg)

	session, err := auth.New(conf.Auth.JwtSecret, conf.Auth.SessionTTL)
	if err != nil {
		log.Fatal("session service: ", err)
	}
	classroomCore.SetSessionService(session)

	if sender := mail.NewMailerSend(conf, lg); sender != nil {
		classroomCore.SetMailSender(sender)
	} else {
		lg.Warn("mailersend not configured, using console mailer")
		classroomCore.SetMailSender(mail.NewConsole(lg))
	}

	if sender := sms.NewTwilio(conf, lg); sender != nil {
		classroomCore.SetSmsSender(sender)
	} else {
		lg.Warn("twilio not configured, using console sms")
		classroomCore.SetSmsSender(sms.NewConsole(lg))
	}

	var bus chat.Bus
	if conf.Nats.Enabled {
		bus, err = chat.NewNatsBus(conf.Nats.Url)
		if err != nil {
			log.Fatal("nats: ", err)
		}
	} else {
		lg.Warn("nats disabled, chat fan-out is in-process only")
		bus = chat.NewMemoryBus()
	}
	defer bus.Close()
	classroomCore.SetPublisher(bus)

	hub := chat.NewHub(classroomCore, bus, lg)

	if err = api.New(conf, lg, classroomCore, hub); err != nil {
		lg.Error("server stopped", sl.Err(err))
	}
}

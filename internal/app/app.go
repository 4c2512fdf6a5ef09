package app

import (
	"net/http"

	"gorm.io/gorm"

	"tribeboard/internal/config"
	"tribeboard/internal/db"
	familydomain "tribeboard/internal/domain/family"
	codedomain "tribeboard/internal/domain/familycode"
	messagingdomain "tribeboard/internal/domain/messaging"
	scheduledomain "tribeboard/internal/domain/schedule"
	syncdomain "tribeboard/internal/domain/sync"
	tasksdomain "tribeboard/internal/domain/tasks"
	userdomain "tribeboard/internal/domain/user"
	"tribeboard/internal/repository/inmemory"
	familyrepo "tribeboard/internal/repository/postgres/family"
	messagingrepo "tribeboard/internal/repository/postgres/messaging"
	schedulerepo "tribeboard/internal/repository/postgres/schedule"
	syncrepo "tribeboard/internal/repository/postgres/sync"
	tasksrepo "tribeboard/internal/repository/postgres/tasks"
	userrepo "tribeboard/internal/repository/postgres/user"
	remotecodes "tribeboard/internal/repository/remote/familycode"
	"tribeboard/internal/transport/httpserver"
	"tribeboard/internal/transport/httpserver/handler"
	"tribeboard/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	families := familyrepo.NewPostgres(dbConn)
	users := userrepo.NewPostgres(dbConn)
	tasks := tasksrepo.NewPostgres(dbConn)
	schedule := schedulerepo.NewPostgres(dbConn)
	messaging := messagingrepo.NewPostgres(dbConn)
	syncOps := syncrepo.NewPostgres(dbConn)

	// Remote uniqueness checks are optional; without a configured backend
	// the code generator runs in local-only mode from the start.
	var remote codedomain.RemoteStore
	if cfg.Remote.BaseURL != "" {
		remote = remotecodes.NewClient(cfg.Remote, log)
	}

	codes := codedomain.NewService(families, remote, codedomain.Config{
		MaxAttempts:            cfg.FamilyCode.MaxAttempts,
		CheckRemote:            cfg.FamilyCode.CheckRemote,
		RemoteFailureThreshold: cfg.FamilyCode.RemoteFailureThreshold,
		BackoffBase:            cfg.FamilyCode.BackoffBase,
		BackoffCap:             cfg.FamilyCode.BackoffCap,
	}, log)

	familyService := familydomain.NewService(families, codes, inmemory.NewFamilyCache(), log)
	userService := userdomain.NewService(users)
	tasksService := tasksdomain.NewService(tasks)
	scheduleService := scheduledomain.NewService(schedule)
	messagingService := messagingdomain.NewService(messaging)
	syncService := syncdomain.NewService(syncOps, tasksService, messagingService)

	handlers := handler.New(familyService, tasksService, scheduleService, messagingService, syncService, log)
	router := httpserver.NewRouter(cfg, handlers, userService, log)
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

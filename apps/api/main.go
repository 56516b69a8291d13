package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/acadio/practia/apps/api/echo"
	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/commission"
	"github.com/acadio/practia/core/group"
	"github.com/acadio/practia/core/matter"
	"github.com/acadio/practia/core/project"
	"github.com/acadio/practia/core/repo"
	"github.com/acadio/practia/core/user"
	emailsvc "github.com/acadio/practia/services/email"
	githubsvc "github.com/acadio/practia/services/github"
	logsvc "github.com/acadio/practia/services/logger"
	"github.com/acadio/practia/storage/database"
	dummydb "github.com/acadio/practia/storage/database/dummy"
	sqlxrepos "github.com/acadio/practia/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig(core.Getwd())
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up storage
	repos, cleanup, err := setUpStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer cleanup()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	ghClient := githubsvc.NewClient(conf)

	usrSvc := user.NewService(conf, repos.user, mailSvc)
	matterSvc := matter.NewService(repos.matter)
	commissionSvc := commission.NewService(repos.commission)
	groupSvc := group.NewService(repos.group)
	projectSvc := project.NewService(repos.project)
	repoSvc := repo.NewService(repos.repo, ghClient)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       usrSvc,
			MatterSvc:     matterSvc,
			CommissionSvc: commissionSvc,
			GroupSvc:      groupSvc,
			ProjectSvc:    projectSvc,
			RepoSvc:       repoSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

type repositories struct {
	user       user.Repository
	matter     matter.Repository
	commission commission.Repository
	group      group.Repository
	project    project.Repository
	repo       repo.Repository
}

// setUpStorage wires repositories against the configured engine. The dummy
// engine keeps everything in memory and is meant for local development only.
func setUpStorage(conf *core.Config) (repositories, func(), error) {
	if conf.Database.Engine == "dummy" {
		db, err := dummydb.Open()
		if err != nil {
			return repositories{}, nil, err
		}
		return repositories{
			user:       dummydb.NewUserRepository(db),
			matter:     dummydb.NewMatterRepository(db),
			commission: dummydb.NewCommissionRepository(db),
			group:      dummydb.NewGroupRepository(db),
			project:    dummydb.NewProjectRepository(db),
			repo:       dummydb.NewRepoRepository(db),
		}, func() {}, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return repositories{}, nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return repositories{}, nil, err
	}
	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return repositories{}, nil, err
	}

	dbx := sqlx.NewDb(db, "postgres")
	return repositories{
		user:       sqlxrepos.NewUserRepository(dbx),
		matter:     sqlxrepos.NewMatterRepository(dbx),
		commission: sqlxrepos.NewCommissionRepository(dbx),
		group:      sqlxrepos.NewGroupRepository(dbx),
		project:    sqlxrepos.NewProjectRepository(dbx),
		repo:       sqlxrepos.NewRepoRepository(dbx),
	}, func() { _ = dbx.Close() }, nil
}

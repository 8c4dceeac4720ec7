package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dboika/folio/config"
	"github.com/dboika/folio/database"
	"github.com/dboika/folio/database/seed"
	"github.com/dboika/folio/logger"
	"github.com/dboika/folio/util/random"
	"github.com/dboika/folio/web"
	"github.com/dboika/folio/web/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func initLogger() {
	level, err := logger.ParseLevel(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level)
}

func openDB() (*gorm.DB, error) {
	return database.Open(config.GetDatabaseConfig())
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())
	initLogger()
	defer logger.CloseLogger()

	db, err := openDB()
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warning("close database err:", err)
		}
	}()

	server, err := web.NewServer(db)
	if err != nil {
		logger.Error(err)
		return
	}
	if err = server.Start(); err != nil {
		logger.Error(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("reloading web server")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server, err = web.NewServer(db)
			if err != nil {
				logger.Error(err)
				return
			}
			if err = server.Start(); err != nil {
				logger.Error(err)
				return
			}
		default:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func migrateDb() error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close(db)

	fmt.Println("Start migrating database...")
	if err := database.Migrate(db); err != nil {
		return err
	}
	fmt.Println("Migration done!")
	return nil
}

func seedDb(count int, seedValue int64) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close(db)

	admin, err := service.NewUserService(db).GetUser(config.GetAdminID())
	if errors.Is(err, service.ErrNotFound) {
		return fmt.Errorf("register the administrator account (id %d) before seeding", config.GetAdminID())
	} else if err != nil {
		return err
	}

	projects := service.NewProjectService(db, service.NewAdminGuard(config.GetAdminID()))
	created, err := seed.Projects(projects, admin, count, seedValue)
	fmt.Printf("created %d projects\n", len(created))
	return err
}

func showSetting() {
	dbCfg := config.GetDatabaseConfig()
	fmt.Println("current settings as follows:")
	fmt.Println("version:", config.GetVersion())
	fmt.Println("listen:", config.GetListen())
	fmt.Println("port:", config.GetPort())
	fmt.Println("database:", dbCfg.Type)
	if dbCfg.IsSQLite() {
		fmt.Println("database path:", dbCfg.SQLite.Path)
	}
	fmt.Println("log folder:", config.GetLogFolder())
	fmt.Println("admin id:", config.GetAdminID())
	fmt.Println("registration:", config.IsRegistrationEnabled())
	fmt.Println("session max age (min):", config.GetSessionMaxAge())
	fmt.Println("metrics:", config.IsMetricsEnabled())
	fmt.Println("secret key set:", config.GetSecretKey() != "")

	db, err := openDB()
	if err != nil {
		fmt.Println("open database failed:", err)
		return
	}
	defer database.Close(db)

	users := service.NewUserService(db)
	count, err := users.CountUsers()
	if err != nil {
		fmt.Println("count users failed:", err)
		return
	}
	fmt.Println("registered users:", count)
	if admin, err := users.GetUser(config.GetAdminID()); err == nil {
		fmt.Printf("administrator: %s (%s)\n", admin.Name, admin.Email)
	} else {
		fmt.Println("administrator: not registered yet")
	}
}

func main() {
	var envFile string

	var rootCmd = &cobra.Command{
		Use:          "folio",
		Short:        "Personal portfolio site",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnv(envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "read environment variables from this file")

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrateDb()
		},
	}

	var seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Add generated demo projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			seedValue, _ := cmd.Flags().GetInt64("seed")
			return seedDb(count, seedValue)
		},
	}
	seedCmd.Flags().Int("count", 6, "number of projects to create")
	seedCmd.Flags().Int64("seed", 0, "random seed, 0 picks one")

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	var keygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Print a random value for SECRET_KEY",
		Run: func(cmd *cobra.Command, args []string) {
			length, _ := cmd.Flags().GetInt("length")
			fmt.Println(random.Seq(length))
		},
	}
	keygenCmd.Flags().Int("length", 64, "number of characters")

	rootCmd.AddCommand(runCmd, migrateCmd, seedCmd, showCmd, keygenCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

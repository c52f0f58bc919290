package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mhsanaei/userhub/config"
	"github.com/mhsanaei/userhub/database"
	"github.com/mhsanaei/userhub/logger"
	"github.com/mhsanaei/userhub/util/crypto"
	"github.com/mhsanaei/userhub/util/token"
	"github.com/mhsanaei/userhub/web"
	"github.com/mhsanaei/userhub/web/entity"
	"github.com/mhsanaei/userhub/web/service"

	"github.com/spf13/cobra"
)

func loadConfig() error {
	if err := config.Load(); err != nil {
		return err
	}
	level, err := logger.ParseLevel(config.GetLogLevel())
	if err != nil {
		return err
	}
	logger.InitLogger(level)
	return nil
}

// setup loads configuration, the logger and the database and returns the
// user directory.
func setup() (*service.UserService, error) {
	if err := loadConfig(); err != nil {
		return nil, err
	}
	if err := config.CheckSecurity(); err != nil {
		return nil, err
	}
	crypto.SetCost(config.GetBcryptCost())

	tokens, err := token.NewService([]byte(config.GetSecretKey()), config.GetTokenTTL())
	if err != nil {
		return nil, err
	}
	if err := database.InitDB(config.GetDatabaseConfig()); err != nil {
		return nil, err
	}
	return service.NewUserService(tokens), nil
}

func teardown() {
	if err := database.CloseDB(); err != nil {
		logger.Warning("close db err:", err)
	}
	logger.CloseLogger()
}

func runWebServer() error {
	users, err := setup()
	if err != nil {
		return err
	}
	defer teardown()
	log.Printf("%v %v (%v)", config.GetName(), config.GetVersion(), config.GetEnvironment())

	server := web.NewServer(users)
	if err := server.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received", sig, "shutting down")
	return server.Stop()
}

func migrateDb() error {
	if err := loadConfig(); err != nil {
		return err
	}
	defer teardown()
	if err := database.OpenDB(config.GetDatabaseConfig()); err != nil {
		return err
	}
	if err := database.Migrate(); err != nil {
		return err
	}
	fmt.Println("migration finished")
	return nil
}

func createAdmin(name, email, password string) error {
	users, err := setup()
	if err != nil {
		return err
	}
	defer teardown()

	email = entity.SanitizeEmail(email)
	if !entity.ValidEmail(email) {
		return fmt.Errorf("invalid email %q", email)
	}
	if problem := entity.PasswordProblem(password); problem != "" {
		return fmt.Errorf("%s", problem)
	}
	user, err := users.CreateAdmin(context.Background(), entity.SanitizeName(name), email, password)
	if err != nil {
		return err
	}
	fmt.Printf("admin %s created with id %d\n", user.Email, user.Id)
	return nil
}

func resetPassword(email, password string) error {
	users, err := setup()
	if err != nil {
		return err
	}
	defer teardown()

	if problem := entity.PasswordProblem(password); problem != "" {
		return fmt.Errorf("%s", problem)
	}
	if err := users.SetPassword(context.Background(), entity.SanitizeEmail(email), password); err != nil {
		return err
	}
	fmt.Println("password updated")
	return nil
}

func listUsers(page, limit int) error {
	users, err := setup()
	if err != nil {
		return err
	}
	defer teardown()

	if page < 1 || limit < 1 {
		return fmt.Errorf("page and limit must be positive")
	}
	list, err := users.List(context.Background(), (page-1)*limit, limit)
	if err != nil {
		return err
	}
	for _, u := range list {
		fmt.Printf("%d\t%s\t%s\tadmin=%v\tuser=%v\n", u.Id, u.Email, u.Name, u.IsAdmin, u.IsUser)
	}
	return nil
}

func issueToken(id int) error {
	users, err := setup()
	if err != nil {
		return err
	}
	defer teardown()

	tok, err := users.IssueToken(context.Background(), id)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

func main() {
	var rootCmd = &cobra.Command{
		Use:           config.GetName(),
		Short:         "User registration and authentication API",
		Version:       config.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema without seeding the admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrateDb()
		},
	}

	var adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}

	var adminCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create an administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			return createAdmin(name, email, password)
		},
	}
	adminCreateCmd.Flags().String("name", "Administrator", "display name")
	adminCreateCmd.Flags().String("email", "", "login email")
	adminCreateCmd.Flags().String("password", "", "login password")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")

	var resetPasswordCmd = &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			return resetPassword(email, password)
		},
	}
	resetPasswordCmd.Flags().String("email", "", "login email")
	resetPasswordCmd.Flags().String("password", "", "new password")
	_ = resetPasswordCmd.MarkFlagRequired("email")
	_ = resetPasswordCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminCreateCmd, resetPasswordCmd)

	var userCmd = &cobra.Command{
		Use:   "user",
		Short: "Inspect user accounts",
	}

	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List users ordered by id",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")
			limit, _ := cmd.Flags().GetInt("limit")
			return listUsers(page, limit)
		},
	}
	listCmd.Flags().Int("page", 1, "page number")
	listCmd.Flags().Int("limit", 50, "users per page")
	userCmd.AddCommand(listCmd)

	var tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Session token tools",
	}

	var issueCmd = &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token for a user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetInt("id")
			return issueToken(id)
		},
	}
	issueCmd.Flags().Int("id", 0, "user id")
	_ = issueCmd.MarkFlagRequired("id")
	tokenCmd.AddCommand(issueCmd)

	rootCmd.AddCommand(runCmd, migrateCmd, adminCmd, userCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

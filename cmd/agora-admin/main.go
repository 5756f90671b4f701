// Package main is the entry point for the Agora admin CLI.
// It manages users directly against the configured store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/agora/internal/config"
	"github.com/prn-tf/agora/internal/domain"
	"github.com/prn-tf/agora/internal/logging"
	"github.com/prn-tf/agora/internal/pkg/crypto"
	"github.com/prn-tf/agora/internal/repository/factory"
	"github.com/prn-tf/agora/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Agora Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "secret":
		secret, err := crypto.GenerateSigningSecret()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate secret: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(secret)

	case "user":
		if err := runUser(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runUser(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("user requires a subcommand: create or list")
	}

	flags := pflag.NewFlagSet("user "+args[0], pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "path to config file")
	username := flags.String("username", "", "username of the new user")
	email := flags.String("email", "", "email of the new user")
	password := flags.String("password", "", "password of the new user")
	role := flags.String("role", domain.RoleUser, "role of the new user (user or admin)")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := config.LoadWithoutSecret(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.Setup(cfg.Logging, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := factory.NewFactory(cfg.Database, logger).Open(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	// The admin CLI never logs anyone in, so no token issuer is needed.
	users := service.NewUserService(store.Repos.User, service.NewBcryptHasher(bcrypt.DefaultCost), nil, logger)

	switch args[0] {
	case "create":
		return createUser(ctx, users, service.RegisterInput{
			Username: *username,
			Email:    *email,
			Password: *password,
			Role:     *role,
		}, logger)
	case "list":
		return listUsers(ctx, users)
	default:
		return fmt.Errorf("unknown user subcommand: %s", args[0])
	}
}

func createUser(ctx context.Context, users *service.UserService, input service.RegisterInput, logger zerolog.Logger) error {
	if input.Role != domain.RoleUser && input.Role != domain.RoleAdmin {
		return fmt.Errorf("role must be %q or %q", domain.RoleUser, domain.RoleAdmin)
	}

	user, err := users.Register(ctx, input)
	if err != nil {
		return err
	}

	logger.Debug().Str("user_id", user.ID).Msg("user created from admin CLI")
	fmt.Printf("Created user %s (%s, role %s)\n", user.Username, user.ID, user.Role)
	return nil
}

func listUsers(ctx context.Context, users *service.UserService) error {
	list, err := users.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE\tCREATED AT")
	for _, u := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role, u.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func printUsage() {
	fmt.Println(`Agora Admin CLI

Usage:
  agora-admin <command> [arguments]

Commands:
  user create   Create a user
                  --username, --email, --password (required), --role user|admin
  user list     List all users
  secret        Print a random signing secret for JWT_SECRET
  version       Print version information
  help          Show this help message

Flags for user commands:
  -c, --config  Path to config file

Examples:
  agora-admin user create --username kay --email kay@example.com --password s3cret --role admin
  agora-admin user list
  JWT_SECRET=$(agora-admin secret) agora-server`)
}

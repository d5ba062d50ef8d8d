package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"brainself/internal/access"
	"brainself/internal/models"
	"brainself/internal/repository"
	"brainself/internal/seed"
	"brainself/internal/services"
	"brainself/pkg/database"
)

var readPasswordFunc = term.ReadPassword // подменяется в тестах

type commandLine struct {
	db       *database.Database
	repos    *repository.Repositories
	profiles services.ProfileService
	inbox    services.InboxService
	log      *slog.Logger
}

func newCommandLine(db *database.Database, log *slog.Logger) *commandLine {
	if log == nil {
		log = slog.Default()
	}
	repos := repository.New(db.DB)
	return &commandLine{
		db:       db,
		repos:    repos,
		profiles: services.NewProfileService(repos.Profiles, access.NewEvents(), log),
		inbox:    services.NewInboxService(repos, nil, log),
		log:      log,
	}
}

func newRootCmd(cli *commandLine) *cobra.Command {
	root := &cobra.Command{
		Use:           "brainself-admin",
		Short:         "BrainSelf administration commands",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		cli.migrateCmd(),
		cli.seedCmd(),
		cli.promoteCmd(),
		cli.setRoleCmd(),
		cli.createAdminCmd(),
		cli.pruneInboxCmd(),
	)
	return root
}

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cli.db.Migrate(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			cmd.Println("schema is up to date")
			return nil
		},
	}
}

func (cli *commandLine) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the achievement catalog and demo content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := seed.Run(cmd.Context(), cli.repos, cli.log)
			if err != nil {
				return err
			}
			cmd.Printf("achievements: %d, subjects: %d, courses: %d, tests: %d, videos: %d\n",
				res.Achievements, res.Subjects, res.Courses, res.Tests, res.Videos)
			return nil
		},
	}
}

func (cli *commandLine) promoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <nickname>",
		Short: "Make a user an admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.setRole(cmd, args[0], models.RoleAdmin)
		},
	}
}

func (cli *commandLine) setRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <nickname> <student|teacher|admin>",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := models.ParseRole(args[1])
			if err != nil {
				return err
			}
			return cli.setRole(cmd, args[0], role)
		},
	}
}

func (cli *commandLine) setRole(cmd *cobra.Command, nickname string, role models.AppRole) error {
	p, err := cli.profiles.SetRoleByNickname(cmd.Context(), nickname, role)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return fmt.Errorf("no user with nickname %q", nickname)
		}
		return err
	}
	cmd.Printf("%s is now %s\n", p.Nickname, role)
	return nil
}

func (cli *commandLine) createAdminCmd() *cobra.Command {
	var nickname string
	cmd := &cobra.Command{
		Use:   "create-admin <email>",
		Short: "Create an admin account; the password is prompted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Print("Enter password: ")
			pwd, err := readPasswordFunc(int(syscall.Stdin))
			cmd.Println()
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			if len(pwd) < 6 {
				return errors.New("password must be at least 6 characters")
			}
			if nickname == "" {
				nickname, _, _ = strings.Cut(args[0], "@")
			}
			return cli.createAdmin(cmd.Context(), args[0], nickname, string(pwd))
		},
	}
	cmd.Flags().StringVar(&nickname, "nickname", "", "nickname of the admin (default: email local part)")
	return cmd
}

func (cli *commandLine) createAdmin(ctx context.Context, email, nickname, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := services.HashPassword(password)
	if err != nil {
		return err
	}
	role := models.RoleAdmin
	return cli.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Users.GetByEmail(ctx, email); err == nil {
			return fmt.Errorf("user %s already exists, use promote instead", email)
		}
		user := &models.User{Email: email, PasswordHash: hash}
		if err := tx.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		p := &models.Profile{UserID: user.ID, Nickname: nickname, Email: email, Role: &role}
		if err := tx.Profiles.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		cli.log.Info("admin created", slog.String("email", email), slog.String("nickname", nickname))
		return nil
	})
}

func (cli *commandLine) pruneInboxCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune-inbox",
		Short: "Delete read inbox messages older than the given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			if err := cli.inbox.Prune(cmd.Context(), time.Now().Add(-olderThan)); err != nil {
				return err
			}
			cmd.Println("inbox pruned")
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "minimum age of read messages to delete")
	return cmd
}

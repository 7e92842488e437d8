package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/neighborhood-library/api-service/internal/auth"
	"github.com/neighborhood-library/api-service/internal/config"
	"github.com/neighborhood-library/api-service/internal/database"
	"github.com/neighborhood-library/api-service/internal/database/members"
	"github.com/neighborhood-library/api-service/internal/database/users"
	"github.com/neighborhood-library/api-service/internal/entities"
)

// CreateAdminCommand provisions an administrator account from the command
// line. It reuses an existing member profile holding the same email.
type CreateAdminCommand struct {
	Email    string
	Password string
	Name     string
}

func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Email, "email", "", "Email address for the admin account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password for the admin account (required)")
	fs.StringVar(&cmd.Name, "name", "", "Display name for the linked member profile (defaults to the email)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin -email <email> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account. Database connection settings are read\n")
		fmt.Fprintf(os.Stderr, "from the environment, the same way the server reads them.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Email == "" {
		return fmt.Errorf("required flag -email not provided")
	}
	if cmd.Password == "" {
		return fmt.Errorf("required flag -password not provided")
	}
	if len(cmd.Password) < auth.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
	}
	if cmd.Name == "" {
		cmd.Name = cmd.Email
	}

	return nil
}

func (cmd *CreateAdminCommand) Run() error {
	cfg := config.NewConfig()

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	usersRepo := users.NewRepository(db)
	membersRepo := members.NewRepository(db)

	if _, err := usersRepo.GetByEmail(cmd.Email); err == nil {
		return fmt.Errorf("a user with email %s already exists", cmd.Email)
	}

	var memberID uint
	existing, err := membersRepo.GetByEmail(cmd.Email)
	switch {
	case err == nil:
		memberID = existing.ID
		fmt.Printf("Reusing existing member profile #%d (%s)\n", existing.ID, existing.Name)
	case errors.Is(err, gorm.ErrRecordNotFound):
		member := entities.Member{Name: cmd.Name, Email: cmd.Email}
		if err := membersRepo.Create(&member, nil); err != nil {
			return fmt.Errorf("failed to create member profile: %w", err)
		}
		memberID = member.ID
	default:
		return fmt.Errorf("failed to look up member profile: %w", err)
	}

	hash, err := auth.HashPassword(cmd.Password, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := entities.User{
		Email:        cmd.Email,
		PasswordHash: hash,
		Role:         entities.RoleAdmin,
		MemberID:     &memberID,
		IsActive:     true,
	}
	if err := usersRepo.Create(&user); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	fmt.Printf("Admin account created: %s (user #%d)\n", cmd.Email, user.ID)
	return nil
}

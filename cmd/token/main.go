// Command token mints a bearer token signed with JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/noah-isme/sma-report-card/internal/models"
	"github.com/noah-isme/sma-report-card/internal/service"
	"github.com/noah-isme/sma-report-card/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := run(os.Args[1:], cfg.JWT, os.Stdout); err != nil {
		log.Fatalf("token: %v", err)
	}
}

func run(args []string, jwtCfg config.JWTConfig, out io.Writer) error {
	var (
		userID    string
		role      string
		studentID int
		expiry    time.Duration
	)

	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&userID, "user", "", "Subject user ID")
	fs.StringVar(&role, "role", string(models.RoleTeacher), "ADMIN, TEACHER or STUDENT")
	fs.IntVar(&studentID, "student", 0, "Student ID bound to a STUDENT token")
	fs.DurationVar(&expiry, "expiry", jwtCfg.Expiration, "Token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if userID == "" {
		return fmt.Errorf("-user is required")
	}
	userRole := models.UserRole(role)
	switch userRole {
	case models.RoleAdmin, models.RoleTeacher:
	case models.RoleStudent:
		if studentID <= 0 {
			return fmt.Errorf("-student is required for role %s", role)
		}
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	var student *int
	if studentID > 0 {
		student = &studentID
	}

	tokens := service.NewTokenService(service.TokenConfig{Secret: jwtCfg.Secret, Expiry: expiry, Issuer: jwtCfg.Issuer})
	token, expiresAt, err := tokens.Issue(userID, userRole, student)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	fmt.Fprintf(out, "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
	return nil
}

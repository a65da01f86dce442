package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/examgate/examgate-backend/internal/config"
	"github.com/examgate/examgate-backend/internal/database"
	"github.com/examgate/examgate-backend/internal/logger"
	"github.com/examgate/examgate-backend/internal/model"
	"github.com/examgate/examgate-backend/internal/repository"
	"github.com/examgate/examgate-backend/internal/service"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	examineeRepo := repository.NewExamineeRepository(pool)
	examineeService := service.NewExamineeService(examineeRepo)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Examinee ===")

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	// Surname
	fmt.Print("Enter Surname: ")
	surname, _ := reader.ReadString('\n')
	surname = strings.TrimSpace(surname)

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	// Enroll Number
	fmt.Print("Enter Enroll Number: ")
	enrollNumber, _ := reader.ReadString('\n')
	enrollNumber = strings.TrimSpace(enrollNumber)
	if enrollNumber == "" {
		fmt.Println("Error: Enroll Number is required")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	newExaminee := &model.Examinee{
		Name:         name,
		Surname:      surname,
		Email:        email,
		EnrollNumber: enrollNumber,
		PasswordHash: string(hashedPassword),
	}

	// Create Examinee
	if err := examineeService.Create(ctx, newExaminee); err != nil {
		log.Fatal().Err(err).Msg("Failed to create examinee")
	}

	fmt.Printf("\nSuccess! Examinee '%s %s' (%s) created with ID: %s\n",
		newExaminee.Name, newExaminee.Surname, newExaminee.Email, newExaminee.ID)
}

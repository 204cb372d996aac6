package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yigit/coursebooking/internal/pkg/auth"
	"github.com/yigit/coursebooking/internal/pkg/logger"
	"github.com/yigit/coursebooking/internal/server"
)

// @title Course Booking API
// @version 1.0
// @description Seat booking for scheduled courses

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Operator JWT for the /admin routes

func main() {
	configPath := flag.String("config", filepath.Join("configs", "config.yaml"), "path to the YAML config file")
	hashPassword := flag.Bool("hash-password", false, "read a password from stdin, print its bcrypt hash for ADMIN_PASSWORD_HASH and exit")
	flag.Parse()

	if *hashPassword {
		if err := printPasswordHash(); err != nil {
			logger.Error().Err(err).Msg("Failed to hash password")
			os.Exit(1)
		}
		return
	}

	srv, err := server.NewServer(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}

func printPasswordHash() error {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return fmt.Errorf("empty password")
	}

	hash, err := auth.HashOperatorPassword(password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

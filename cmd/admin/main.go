// Command admin is a maintenance CLI that edits users and the badword list
// directly in the database, for when the dashboard is unreachable.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"anonychat/backend/internal/config"
	"anonychat/backend/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	command := os.Args[1]

	// hash-password works without a database.
	if command == "hash-password" {
		if len(os.Args) != 3 {
			usage()
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(os.Args[2]), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash failed: %v", err)
		}
		fmt.Println(string(hash))
		return
	}

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	s := storage.NewService(db, nil) // no redis needed for the CLI

	switch command {
	case "ban", "unban":
		if len(os.Args) != 3 {
			usage()
		}
		if err := setBanned(s, os.Args[2], command == "ban"); err != nil {
			log.Fatalf("%s failed: %v", command, err)
		}
		fmt.Printf("User %s has been %sned.\n", os.Args[2], command)
	case "warn":
		if len(os.Args) != 3 {
			usage()
		}
		if err := warn(s, os.Args[2]); err != nil {
			log.Fatalf("warn failed: %v", err)
		}
		fmt.Printf("Warning recorded for %s.\n", os.Args[2])
	case "badword-add", "badword-remove":
		if len(os.Args) != 3 {
			usage()
		}
		if err := editBadwords(s, strings.ToLower(os.Args[2]), command == "badword-add"); err != nil {
			log.Fatalf("%s failed: %v", command, err)
		}
		fmt.Println("Badword list updated.")
	default:
		usage()
	}
}

func usage() {
	fmt.Println(`Usage: admin <command> [args]

Commands:
  ban <user_id>             ban a user
  unban <user_id>           lift a ban
  warn <user_id>            bump a user's warning counter
  badword-add <word>        add a word to the profanity list
  badword-remove <word>     remove a word from the profanity list
  hash-password <password>  print a bcrypt hash for ADMIN_PASSWORD_HASH`)
	os.Exit(1)
}

func setBanned(s storage.Storage, userID string, banned bool) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %s not found", userID)
	}
	user.Banned = banned
	if err := s.SaveUser(user); err != nil {
		return err
	}
	return s.SetBanFlag(userID, banned)
}

func warn(s storage.Storage, userID string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %s not found", userID)
	}
	user.Warnings++
	return s.SaveUser(user)
}

func editBadwords(s storage.Storage, word string, add bool) error {
	settings, err := s.LoadSettings()
	if err != nil {
		return err
	}
	words := settings.Badwords[:0:0]
	for _, w := range settings.Badwords {
		if w != word {
			words = append(words, w)
		}
	}
	if add {
		words = append(words, word)
	}
	settings.Badwords = words
	return s.SaveSettings(settings)
}

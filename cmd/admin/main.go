// cmd/admin/main.go
//
// Maintenance CLI for the user record store:
//
//	admin -list             list all registered users
//	admin -delete <id>      delete one user record
//	admin -wipe             delete ALL user records (asks for confirmation)
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"acebot/config"
	"acebot/internal/db"
	"acebot/pkg/logger"
)

func main() {
	list := flag.Bool("list", false, "list all registered users")
	deleteID := flag.Int64("delete", 0, "delete the user with the given id")
	wipe := flag.Bool("wipe", false, "delete ALL user records")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	if !*list && *deleteID == 0 && !*wipe {
		flag.Usage()
		os.Exit(2)
	}

	l := logger.New()

	cfg, err := config.Load()
	if err != nil {
		l.Fatal("Failed to load config", err)
	}

	database, err := db.NewPostgresDB(cfg.DB)
	if err != nil {
		l.Fatal("Failed to connect to database", err)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch {
	case *list:
		listUsers(ctx, database, l)
	case *deleteID != 0:
		deleteUser(ctx, database, *deleteID, *yes, l)
	case *wipe:
		wipeUsers(ctx, database, *yes, l)
	}
}

func listUsers(ctx context.Context, database *db.PostgresDB, l *logger.Logger) {
	users, err := database.ListUsers(ctx)
	if err != nil {
		l.Fatal("Failed to list users", err)
	}

	if len(users) == 0 {
		fmt.Println("No users found.")
		return
	}

	fmt.Printf("%-12s %-20s %-30s %s\n", "USER ID", "USERNAME", "FULL NAME", "PREMIUM")
	for _, u := range users {
		premium := "no"
		if u.IsPremium {
			premium = "yes"
		}
		fmt.Printf("%-12d %-20s %-30s %s\n", u.UserID, u.Username, u.FullName, premium)
	}
	fmt.Printf("\nTotal: %d users\n", len(users))
}

func deleteUser(ctx context.Context, database *db.PostgresDB, userID int64, yes bool, l *logger.Logger) {
	if !yes && !confirm(fmt.Sprintf("Delete user %d?", userID)) {
		fmt.Println("Aborted.")
		return
	}

	deleted, err := database.DeleteUser(ctx, userID)
	if err != nil {
		l.Fatal("Failed to delete user", err)
	}
	if !deleted {
		fmt.Printf("User %d not found.\n", userID)
		return
	}
	fmt.Printf("User %d deleted.\n", userID)
}

func wipeUsers(ctx context.Context, database *db.PostgresDB, yes bool, l *logger.Logger) {
	if !yes && !confirm("Delete ALL user records? This cannot be undone.") {
		fmt.Println("Aborted.")
		return
	}

	count, err := database.DeleteAllUsers(ctx)
	if err != nil {
		l.Fatal("Failed to wipe users", err)
	}
	fmt.Printf("Deleted %d user records.\n", count)
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

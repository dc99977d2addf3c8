// Command adduser creates an operator account directly in the configured
// database, bypassing the web registration form and its rate limits.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/avelichko/formdesk/internal/common"
	"github.com/avelichko/formdesk/internal/server/accounts"
	"github.com/avelichko/formdesk/internal/server/config"
	"github.com/avelichko/formdesk/internal/server/shared/db"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func getSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func getPassword(w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func run(ctx context.Context, cfg *config.Config) error {
	reader := bufio.NewReader(os.Stdin)

	name, err := getSimpleText(reader, "Name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(reader, "Email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	if name == "" || email == "" || len(password) < 6 {
		return errors.New("name and email are required, password must be at least 6 characters")
	}

	manager, err := db.NewSQLRepositoryManager(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer manager.Close()

	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("db migration error: %w", err)
	}

	account, err := accounts.NewService(manager.Accounts()).Register(ctx, name, email, password)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return fmt.Errorf("account %s already exists", email)
		}
		return err
	}

	fmt.Printf("Created account %d (%s)\n", account.ID, account.Email)
	return nil
}

func main() {
	cfg := config.LoadConfig()
	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

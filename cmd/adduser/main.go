// Command adduser creates an account in the database the server is
// configured to use.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"multi-currency-expenses/internal/auth"
	"multi-currency-expenses/internal/config"
	"multi-currency-expenses/internal/storage"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var errorLabel = color.New(color.FgHiRed, color.Bold)

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s %v\n", errorLabel.Sprint("Error:"), err)
		os.Exit(1)
	}
}

type options struct {
	username string
	password string
	dbPath   string
}

// parseOptions reads the command line. The database path defaults to the
// one resolved from .env, CONFIG_FILE and DB_PATH, like the server.
func parseOptions(args []string, cfg *config.Config, stdout, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.username, "user", "", "Username of the new account")
	fs.StringVar(&opts.password, "password", "", "Password (prompted for when omitted)")
	fs.StringVar(&opts.dbPath, "db", cfg.DBPath, "Path to database file")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.username == "" {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> [-password <password>] [-db <db_path>]")
		fs.PrintDefaults()
		return opts, errors.New("missing required flags: user")
	}
	return opts, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	opts, err := parseOptions(args, cfg, stdout, stderr)
	if err != nil {
		return err
	}

	if opts.password == "" {
		fmt.Fprint(stdout, "Password: ")
		opts.password, err = promptPassword(stdin)
		fmt.Fprintln(stdout)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}
	if strings.TrimSpace(opts.password) == "" {
		return errors.New("password cannot be empty")
	}

	db, err := storage.NewDB(opts.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", opts.dbPath, err)
	}
	defer db.Close()

	user, err := auth.NewManager(db).Register(opts.username, opts.password)
	if errors.Is(err, auth.ErrDuplicateUsername) {
		return fmt.Errorf("user %s already exists", opts.username)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d in %s\n",
		color.GreenString(user.Username), user.ID, color.CyanString(opts.dbPath))
	return nil
}

// promptPassword reads without echo from a terminal, or one line otherwise.
func promptPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return string(b), err
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

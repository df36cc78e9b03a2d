package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"storyhub/internal/accounts"
	"storyhub/internal/database"
	"storyhub/internal/session"
	"storyhub/internal/startup"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Default timeout for database operations
const defaultTimeout = 30 * time.Second

var rootCmd = newRootCmd(os.Stdin, os.Stdout, os.Stderr)

// cli carries the streams and flags shared by every subcommand.
type cli struct {
	in          io.Reader
	lines       *bufio.Reader
	out         io.Writer
	errOut      io.Writer
	databaseDir string
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "storyctl",
		Short:         "Storyhub administration tool",
		Long:          "storyctl inspects and repairs a Storyhub database while the server is stopped or running.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&c.databaseDir, "database-dir", defaultDatabaseDir(),
		"directory containing "+startup.DatabaseFile+" (env DATABASE_DIR)")

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show database status and row counts",
		Args:  cobra.NoArgs,
		RunE:  c.withDatabase(c.status),
	})
	root.AddCommand(&cobra.Command{
		Use:   "reset-password <username>",
		Short: "Set a new password for a user and revoke their sessions",
		Args:  cobra.ExactArgs(1),
		RunE:  c.withDatabase(c.resetPassword),
	})
	root.AddCommand(&cobra.Command{
		Use:   "delete-author <pen-name>",
		Short: "Delete an author profile and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE:  c.withDatabase(c.deleteAuthor),
	})

	return root
}

func defaultDatabaseDir() string {
	if dir := os.Getenv("DATABASE_DIR"); dir != "" {
		return dir
	}
	return "./data"
}

type dbCommand func(ctx context.Context, db *database.Database, args []string) error

// withDatabase opens the database for the duration of fn and cancels its
// context on SIGINT or SIGTERM.
func (c *cli) withDatabase(fn dbCommand) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dbPath := filepath.Join(c.databaseDir, startup.DatabaseFile)
		if _, err := os.Stat(dbPath); err != nil {
			return fmt.Errorf("database not found at %s (set --database-dir or DATABASE_DIR): %w", dbPath, err)
		}

		db, err := database.New(ctx, dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				fmt.Fprintf(c.errOut, "Warning: failed to close database: %v\n", err)
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
		return fn(ctx, db, args)
	}
}

func (c *cli) status(ctx context.Context, db *database.Database, _ []string) error {
	version, err := db.SchemaVersion()
	if err != nil {
		return err
	}

	counts := []struct {
		label string
		count func(context.Context) (int, error)
	}{
		{"Users", db.CountUsers},
		{"Books", db.CountBooks},
		{"Albums", db.CountAlbums},
		{"Visits", db.CountVisits},
	}

	fmt.Fprintf(c.out, "Database:       %s\n", filepath.Join(c.databaseDir, startup.DatabaseFile))
	fmt.Fprintf(c.out, "Schema version: %d\n", version)
	for _, entry := range counts {
		n, err := entry.count(ctx)
		if err != nil {
			return fmt.Errorf("counting %s: %w", strings.ToLower(entry.label), err)
		}
		fmt.Fprintf(c.out, "%-15s %d\n", entry.label+":", n)
	}
	return nil
}

func (c *cli) resetPassword(ctx context.Context, db *database.Database, args []string) error {
	username := args[0]
	if _, err := db.GetUserByUsername(ctx, strings.TrimSpace(username)); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("user %q does not exist", username)
		}
		return err
	}

	password, err := c.readPassword("New Password: ")
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	confirm, err := c.readPassword("Confirm Password: ")
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	svc := accounts.NewService(db, session.NewSQLStore(db, session.DefaultTTL))
	if err := svc.ResetPassword(ctx, username, password); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Password updated successfully.")
	fmt.Fprintln(c.out, "All existing sessions have been invalidated.")
	return nil
}

func (c *cli) deleteAuthor(ctx context.Context, db *database.Database, args []string) error {
	author, err := db.GetAuthorByPenName(ctx, args[0])
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("author %q does not exist", args[0])
		}
		return err
	}
	if err := db.DeleteAuthor(ctx, author.ID); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Deleted author %q and all of their books and albums.\n", author.PenName)
	return nil
}

// readPassword prompts on a terminal without echo. When input is not a
// terminal it reads one line, so passwords can be piped in.
func (c *cli) readPassword(prompt string) (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.out, prompt)
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		return string(password), err
	}

	if c.lines == nil {
		c.lines = bufio.NewReader(c.in)
	}
	line, err := c.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

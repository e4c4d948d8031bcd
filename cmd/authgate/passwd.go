package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/vitalvas/authgate/authority"
	"github.com/vitalvas/authgate/httpauth"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Create or update a credential entry",
	Long: `Passwd writes a credential entry into an htdigest file, an htpasswd
file, or a SQLite database, creating the store when it does not exist.
Without -p the password is prompted for twice.

Examples:
  authgate passwd -f users.htdigest -t htdigest -r WebDAV mircea
  authgate passwd -f users.htpasswd -t htpasswd mircea
  authgate passwd -f authgate.db -t sqlite -r WebDAV mircea`,
	Args: cobra.ExactArgs(1),
	RunE: passwdCommand,
}

var (
	passwdFile     string
	passwdType     string
	passwdRealm    string
	passwdPassword string
)

func init() {
	passwdCmd.Flags().StringVarP(&passwdFile, "file", "f", "", "credential file or database")
	passwdCmd.Flags().StringVarP(&passwdType, "type", "t", "htdigest", "store type: htdigest, htpasswd or sqlite")
	passwdCmd.Flags().StringVarP(&passwdRealm, "realm", "r", "/", "realm of the entry (htdigest and sqlite)")
	passwdCmd.Flags().StringVarP(&passwdPassword, "password", "p", "", "password (prompted for twice when empty)")
	_ = passwdCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(passwdCmd)
}

func passwdCommand(cmd *cobra.Command, args []string) error {
	username := args[0]
	if strings.Contains(username, ":") {
		return errors.New("username must not contain a colon")
	}

	password := passwdPassword
	if password == "" {
		var err error

		password, err = promptNewPassword(cmd)
		if err != nil {
			return err
		}
	}

	var err error

	switch passwdType {
	case "htdigest":
		err = upsertHtdigest(passwdFile, passwdRealm, username, password)

	case "htpasswd":
		err = upsertHtpasswd(passwdFile, username, password)

	case "sqlite":
		err = upsertSQLite(passwdFile, passwdRealm, username, password)

	default:
		return fmt.Errorf("unknown store type %q", passwdType)
	}

	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "updated entry for %s in %s\n", username, passwdFile)

	return nil
}

// promptNewPassword reads the password twice without echo and requires
// both reads to match.
func promptNewPassword(cmd *cobra.Command) (string, error) {
	out := cmd.OutOrStdout()

	fmt.Fprint(out, "Password: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)

	if err != nil {
		return "", err
	}

	fmt.Fprint(out, "Retype password: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)

	if err != nil {
		return "", err
	}

	if len(first) == 0 {
		return "", errors.New("password must not be empty")
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}

	return string(first), nil
}

func upsertHtdigest(path, realm, username, password string) error {
	entry := fmt.Sprintf("%s:%s:%s", username, realm, httpauth.HashA1(username, realm, password))
	prefix := username + ":" + realm + ":"

	return upsertLine(path, prefix, entry)
}

func upsertHtpasswd(path, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return upsertLine(path, username+":", username+":"+string(hash))
}

// upsertLine replaces the first line starting with prefix, or appends
// entry when none does. Comments and unrelated lines stay untouched. A
// missing file is created.
func upsertLine(path, prefix, entry string) error {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	var lines []string
	if len(data) > 0 {
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	}

	replaced := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), prefix) {
			lines[i] = entry
			replaced = true

			break
		}
	}

	if !replaced {
		lines = append(lines, entry)
	}

	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600)
}

func upsertSQLite(path, realm, username, password string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(authority.Schema); err != nil {
		return err
	}

	_, err = db.Exec(
		`INSERT INTO users (realm, username, a1) VALUES (?, ?, ?)
		 ON CONFLICT (realm, username) DO UPDATE SET a1 = excluded.a1`,
		realm, username, httpauth.HashA1(username, realm, password))

	return err
}

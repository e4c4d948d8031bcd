package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vitalvas/authgate/authority"
)

var checkCmd = &cobra.Command{
	Use:   "check <username>",
	Short: "Verify a password against a credential store",
	Long: `Check authenticates a username and password against a credential
store the way the gate would, and exits non-zero when the credentials
are rejected.

Examples:
  authgate check -f users.htdigest -t htdigest -r WebDAV mircea
  authgate check -f users.htpasswd -t htpasswd mircea`,
	Args: cobra.ExactArgs(1),
	RunE: checkCommand,
}

var (
	checkFile     string
	checkType     string
	checkRealm    string
	checkPassword string
)

func init() {
	checkCmd.Flags().StringVarP(&checkFile, "file", "f", "", "credential file or database")
	checkCmd.Flags().StringVarP(&checkType, "type", "t", "htdigest", "store type: htdigest, htpasswd or sqlite")
	checkCmd.Flags().StringVarP(&checkRealm, "realm", "r", "/", "realm to authenticate against")
	checkCmd.Flags().StringVarP(&checkPassword, "password", "p", "", "password (prompted for when empty)")
	_ = checkCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(checkCmd)
}

func checkCommand(cmd *cobra.Command, args []string) error {
	username := args[0]

	password := checkPassword
	if password == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())

		if err != nil {
			return err
		}

		password = string(raw)
	}

	auth, err := authority.New(authority.Config{
		Type: checkType,
		Path: checkFile,
	})
	if err != nil {
		return err
	}

	if closer, ok := auth.(io.Closer); ok {
		defer closer.Close()
	}

	ok, err := auth.Authenticate(cmd.Context(), checkRealm, username, password)
	if err != nil {
		return err
	}

	if !ok {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s: invalid credentials for %s under realm %s\n",
			red("failed"), username, checkRealm)

		return errors.New("authentication failed")
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s authenticates under realm %s\n",
		green("ok"), username, checkRealm)

	return nil
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kitbuilder587/serpclient/internal/credentials"
)

func newLoginCmd(root *rootOptions) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the API password in the OS keyring",
		Long: `Reads the API password (hidden input on a terminal, first line of stdin otherwise)
and stores it in the OS keyring. Afterwards only SERP_USERNAME needs to be set.`,
		Example: `  serpctl login --username alice
  echo "$PASSWORD" | serpctl login --username alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username = resolveUsername(username)
			if username == "" {
				return errors.New("username is required: pass --username or set SERP_USERNAME")
			}

			password, err := readPassword(cmd)
			if err != nil {
				return err
			}
			if password == "" {
				return errors.New("empty password")
			}

			if err := root.secrets.Set(username, password); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Password for %s saved to keyring\n", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "API username (default $SERP_USERNAME)")
	return cmd
}

func newLogoutCmd(root *rootOptions) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the API password from the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			username = resolveUsername(username)
			if username == "" {
				return errors.New("username is required: pass --username or set SERP_USERNAME")
			}

			err := root.secrets.Delete(username)
			if errors.Is(err, credentials.ErrNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "No saved password for %s\n", username)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Password for %s removed from keyring\n", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "API username (default $SERP_USERNAME)")
	return cmd
}

func resolveUsername(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("SERP_USERNAME")
}

// readPassword: с терминала без эха, иначе первая строка stdin
func readPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

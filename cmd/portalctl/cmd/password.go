package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/northwind/salesportal/internal/model"
	"github.com/spf13/cobra"
)

func SetPasswordCmd() *cobra.Command {
	var role, password string

	c := &cobra.Command{
		Use:   "set-password",
		Short: "Provision the shared password for a role",
		Long: "Hashes the password with bcrypt and writes it to the credential store.\n" +
			"Without --password the first line of stdin is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := model.ParseRole(role)
			if !ok {
				return fmt.Errorf("--role must be admin or contractor")
			}

			if password == "" {
				var err error
				password, err = readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			err = a.AuthService.SetPassword(cmd.Context(), r, password)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "password for %s updated\n", r)
			return nil
		},
	}

	c.Flags().StringVar(&role, "role", "", "role to provision (admin or contractor)")
	c.Flags().StringVar(&password, "password", "", "new password (read from stdin when omitted)")
	_ = c.MarkFlagRequired("role")
	return c
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("no password given on stdin")
	}
	return line, nil
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/marcus/shelf/internal/form"
	"github.com/marcus/shelf/internal/input"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:     "auth",
	Short:   "Sign in, sign up and sign out",
	GroupID: "account",
}

var signInCmd = &cobra.Command{
	Use:     "signin",
	Aliases: []string{"login"},
	Short:   "Sign in to the catalog",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCredentials(cmd, false)
	},
}

var signUpCmd = &cobra.Command{
	Use:     "signup",
	Aliases: []string{"register"},
	Short:   "Create an account and sign in",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCredentials(cmd, true)
	},
}

// credentials collects email and password from flags, stdin or a prompt,
// validated against the sign in or sign up form rules.
func credentials(cmd *cobra.Command, signUp bool) (string, string, error) {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if fromStdin, _ := cmd.Flags().GetBool("password-stdin"); fromStdin {
		line, err := input.NewReader(cmd.InOrStdin()).ReadLine()
		if err != nil {
			return "", "", fmt.Errorf("password: %w", err)
		}
		password = line
	}

	spec := form.CredentialsSpec(signUp)
	values := map[string]string{form.KeyEmail: email, form.KeyPassword: password}
	if email == "" || password == "" {
		if !isInteractive() {
			return "", "", fmt.Errorf("--email and --password (or --password-stdin) are required")
		}
		var err error
		if values, err = promptForm(spec, values); err != nil {
			return "", "", err
		}
	} else {
		st := form.Build(spec, values)
		if err := st.Validate(); err != nil {
			return "", "", err
		}
	}
	return strings.TrimSpace(values[form.KeyEmail]), values[form.KeyPassword], nil
}

func runCredentials(cmd *cobra.Command, signUp bool) error {
	email, password, err := credentials(cmd, signUp)
	if err != nil {
		return err
	}
	a, err := openApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := commandContext(cmd)
	if signUp {
		return reported(a.ctrl.SignUp(ctx, email, password))
	}
	return reported(a.ctrl.SignIn(ctx, email, password))
}

var signOutCmd = &cobra.Command{
	Use:     "signout",
	Aliases: []string{"logout"},
	Short:   "Sign out and forget the saved session",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()
		return reported(a.ctrl.SignOut(commandContext(cmd)))
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is signed in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		w := cmd.OutOrStdout()
		sess := a.ctrl.Session()
		if !sess.SignedIn() {
			fmt.Fprintln(w, "Not signed in")
			return nil
		}
		fmt.Fprintf(w, "Signed in as %s\n", sess.Email)
		fmt.Fprintf(w, "Server: %s\n", a.client.BaseURL)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{signInCmd, signUpCmd} {
		c.Flags().StringP("email", "e", "", "Account email")
		c.Flags().String("password", "", "Account password (prefer --password-stdin)")
		c.Flags().Bool("password-stdin", false, "Read the password from stdin")
	}
	authCmd.AddCommand(signInCmd, signUpCmd, signOutCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

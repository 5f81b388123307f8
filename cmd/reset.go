package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the learner's attempts, review list and progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		user := appConfig.UserID
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Fprintf(cmd.OutOrStdout(), "Delete all progress for %q? [y/N] ", user)
			line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(line)); a != "y" && a != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.ResetUser(cmd.Context(), user)
		if err != nil {
			return err
		}
		log.Info("learner reset", "user_id", user, "attempts", n)
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d attempt(s) for %q.\n", n, user)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

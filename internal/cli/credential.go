package cli

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	credentialCmd = &cobra.Command{
		Use:   "credential",
		Short: "Verifiable credential commands",
	}

	credential_accessCmd = &cobra.Command{
		Use:   "access",
		Short: "Access credentials gating traceability reads",
	}

	access_issueCmd = &cobra.Command{
		Use:   "issue [did]",
		Short: "Issue an access credential",
		Long:  "Issue an access credential.\n\n" + reissueHelp,
		Args:  cobra.ExactArgs(1),
		RunE:  runAccessIssue,
	}

	access_verifyCmd = &cobra.Command{
		Use:   "verify [did]",
		Short: "Verify an access credential, revoking it if expired",
		Args:  cobra.ExactArgs(1),
		RunE:  runAccessVerify,
	}

	access_revokeCmd = &cobra.Command{
		Use:   "revoke [did]",
		Short: "Revoke an access credential",
		Args:  cobra.ExactArgs(1),
		RunE:  runAccessRevoke,
	}

	credential_roleCmd = &cobra.Command{
		Use:   "role",
		Short: "Role credentials",
	}

	role_issueCmd = &cobra.Command{
		Use:   "issue [did]",
		Short: "Issue a role credential",
		Args:  cobra.ExactArgs(1),
		RunE:  runRoleIssue,
	}

	role_verifyCmd = &cobra.Command{
		Use:   "verify [did]",
		Short: "Verify a role credential",
		Args:  cobra.ExactArgs(1),
		RunE:  runRoleVerify,
	}

	role_revokeCmd = &cobra.Command{
		Use:   "revoke [did] [reason]",
		Short: "Revoke a role credential",
		Args:  cobra.ExactArgs(2),
		RunE:  runRoleRevoke,
	}

	credential_claimCmd = &cobra.Command{
		Use:   "claim",
		Short: "Generic claim credentials",
	}

	claim_issueCmd = &cobra.Command{
		Use:   "issue [holder] [claims]",
		Short: "Issue a claim credential",
		Args:  cobra.ExactArgs(2),
		RunE:  runClaimIssue,
	}

	claim_readCmd = &cobra.Command{
		Use:   "read [id]",
		Short: "Read a claim credential",
		Args:  cobra.ExactArgs(1),
		RunE:  runClaimRead,
	}

	claim_revokeCmd = &cobra.Command{
		Use:   "revoke [id]",
		Short: "Revoke a claim credential",
		Args:  cobra.ExactArgs(1),
		RunE:  runClaimRevoke,
	}
)

func init() {
	access_issueCmd.Flags().StringSliceP("permission", "p", []string{"read"}, "granted permissions")
	access_issueCmd.Flags().Duration("ttl", 30*24*time.Hour, "time until the credential expires")
	access_issueCmd.Flags().String("issuer", "", "issuing organisation. blank defaults to the compliance authority")

	role_issueCmd.Flags().StringSliceP("role", "r", nil, "granted roles")
	role_issueCmd.Flags().String("issuer", "", "issuing organisation")

	claim_issueCmd.Flags().String("id", "", "credential id. blank generates one")
}

func runAccessIssue(cmd *cobra.Command, args []string) error {
	perms, _ := cmd.Flags().GetStringSlice("permission")
	ttl, _ := cmd.Flags().GetDuration("ttl")
	issuer, _ := cmd.Flags().GetString("issuer")

	return withServices(cmd, func(ctx context.Context, s *services) error {
		if issuer == "" {
			issuer = s.workflow.Authority()
		}

		vc, err := s.creds.IssueAccess(ctx, args[0], perms, time.Now().Add(ttl), issuer)
		if err != nil {
			return err
		}
		return printJSON(cmd, vc)
	})
}

func runAccessVerify(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		vc, err := s.creds.VerifyAccess(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, vc)
	})
}

func runAccessRevoke(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		return s.creds.RevokeAccess(ctx, args[0])
	})
}

func runRoleIssue(cmd *cobra.Command, args []string) error {
	roles, _ := cmd.Flags().GetStringSlice("role")
	issuer, _ := cmd.Flags().GetString("issuer")

	return withServices(cmd, func(ctx context.Context, s *services) error {
		vc, err := s.creds.IssueRole(ctx, args[0], roles, issuer)
		if err != nil {
			return err
		}
		return printJSON(cmd, vc)
	})
}

func runRoleVerify(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		vc, err := s.creds.VerifyRole(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, vc)
	})
}

func runRoleRevoke(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		return s.creds.RevokeRole(ctx, args[0], args[1])
	})
}

func runClaimIssue(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	if id == "" {
		id = uuid.NewString()
	}

	return withServices(cmd, func(ctx context.Context, s *services) error {
		vc, err := s.creds.IssueClaim(ctx, id, args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd, vc)
	})
}

func runClaimRead(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		vc, err := s.creds.ReadClaim(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, vc)
	})
}

func runClaimRevoke(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		return s.creds.RevokeClaim(ctx, args[0])
	})
}

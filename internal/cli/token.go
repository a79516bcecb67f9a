package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tcfw/agritrace/pkg/provenance"
)

var (
	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Harvest and product token commands",
	}

	token_parentCmd = &cobra.Command{
		Use:   "parent [owner]",
		Short: "Mint a harvest (parent) token",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenParent,
	}

	token_childCmd = &cobra.Command{
		Use:   "child [parent] [owner]",
		Short: "Mint a product (child) token derived from a harvest",
		Args:  cobra.ExactArgs(2),
		RunE:  runTokenChild,
	}

	token_transferCmd = &cobra.Command{
		Use:   "transfer [id] [owner]",
		Short: "Transfer a token to a new owner",
		Args:  cobra.ExactArgs(2),
		RunE:  runTokenTransfer,
	}

	token_readCmd = &cobra.Command{
		Use:   "read [id]",
		Short: "Read a token",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenRead,
	}

	token_childrenCmd = &cobra.Command{
		Use:   "children [parent]",
		Short: "List the product tokens of a harvest",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenChildren,
	}

	token_interactorsCmd = &cobra.Command{
		Use:   "interactors [id]",
		Short: "List every owner a token has had",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenInteractors,
	}

	token_checkCmd = &cobra.Command{
		Use:   "check [id]",
		Short: "Check parent/child links of a token",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenCheck,
	}
)

func init() {
	token_parentCmd.Flags().String("id", "", "token id. blank generates one")
	token_parentCmd.Flags().String("name", "", "harvest name")
	token_parentCmd.Flags().String("category", "", "harvest category")
	token_parentCmd.Flags().String("description", "", "harvest description")
	token_parentCmd.Flags().String("metadata", "", "free form metadata")
	token_parentCmd.Flags().String("organic-cert", "", "organic certificate reference")

	token_childCmd.Flags().String("id", "", "token id. blank generates one")
	token_childCmd.Flags().String("qrcode", "", "QR code payload")
	token_childCmd.Flags().String("metadata", "{}", "JSON object of product metadata")
}

func tokenID(cmd *cobra.Command) string {
	id, _ := cmd.Flags().GetString("id")
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func runTokenParent(cmd *cobra.Command, args []string) error {
	req := provenance.ParentRequest{ID: tokenID(cmd), Owner: args[0]}
	req.Name, _ = cmd.Flags().GetString("name")
	req.Category, _ = cmd.Flags().GetString("category")
	req.Description, _ = cmd.Flags().GetString("description")
	req.Metadata, _ = cmd.Flags().GetString("metadata")
	req.OrganicCertificate, _ = cmd.Flags().GetString("organic-cert")

	return withServices(cmd, func(ctx context.Context, s *services) error {
		p, err := s.graph.CreateParent(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd, p)
	})
}

func runTokenChild(cmd *cobra.Command, args []string) error {
	req := provenance.ChildRequest{ID: tokenID(cmd), ParentID: args[0], Owner: args[1]}
	req.QRCode, _ = cmd.Flags().GetString("qrcode")
	md, _ := cmd.Flags().GetString("metadata")
	req.Metadata = json.RawMessage(md)

	return withServices(cmd, func(ctx context.Context, s *services) error {
		c, err := s.graph.CreateChild(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd, c)
	})
}

func runTokenTransfer(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		t, err := s.graph.Transfer(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd, t)
	})
}

func runTokenRead(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		t, err := s.graph.Read(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, t)
	})
}

func runTokenChildren(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		ids, err := s.graph.Children(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, ids)
	})
}

func runTokenInteractors(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		ids, err := s.graph.Interactors(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, ids)
	})
}

func runTokenCheck(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		if err := s.graph.CheckLinks(ctx, args[0]); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return err
	})
}

package cli

import (
	"context"
	"crypto/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tcfw/agritrace/pkg/did"
)

var (
	didCmd = &cobra.Command{
		Use:   "did",
		Short: "Decentralised identity commands",
	}

	did_createCmd = &cobra.Command{
		Use:   "create [did]",
		Short: "Register a DID document",
		Args:  cobra.ExactArgs(1),
		RunE:  runDIDCreate,
	}

	did_readCmd = &cobra.Command{
		Use:   "read [did]",
		Short: "Read a DID document",
		Args:  cobra.ExactArgs(1),
		RunE:  runDIDRead,
	}

	did_updateCmd = &cobra.Command{
		Use:   "update [did]",
		Short: "Replace the certificate bound to a DID",
		Args:  cobra.ExactArgs(1),
		RunE:  runDIDUpdate,
	}

	did_keygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Generate an identity keypair and self-signed certificate",
		Args:  cobra.NoArgs,
		RunE:  runDIDKeygen,
	}

	did_linkCmd = &cobra.Command{
		Use:   "link [did]",
		Short: "Bind a certificate to a DID that has none",
		Args:  cobra.ExactArgs(1),
		RunE:  runDIDLink,
	}
)

func init() {
	did_createCmd.Flags().String("public-key", "", "multibase encoded public key")
	did_createCmd.Flags().String("metadata", "{}", "free form metadata")
	did_createCmd.Flags().String("role", "", "role of the subject in the supply chain")
	did_createCmd.Flags().String("org", "", "organisation the subject belongs to")
	did_createCmd.Flags().String("cert", "", "path to a PEM encoded X.509 certificate")
	did_createCmd.Flags().Bool("w3c", false, "print the W3C DID document")

	did_readCmd.Flags().Bool("w3c", false, "print the W3C DID document")

	did_updateCmd.Flags().String("cert", "", "path to a PEM encoded X.509 certificate")
	did_linkCmd.Flags().String("cert", "", "path to a PEM encoded X.509 certificate")

	did_keygenCmd.Flags().String("org", "", "organisation named in the certificate")
	did_keygenCmd.Flags().String("cert-out", "", "write a self-signed certificate to this path")
	did_keygenCmd.Flags().Duration("validity", 365*24*time.Hour, "certificate validity")
}

func readCert(cmd *cobra.Command) (string, error) {
	p, _ := cmd.Flags().GetString("cert")
	if p == "" {
		return "", errors.New("--cert is required")
	}

	b, err := os.ReadFile(p)
	if err != nil {
		return "", errors.Wrap(err, "reading certificate")
	}

	return string(b), nil
}

func printDocument(cmd *cobra.Command, doc *did.Document) error {
	if w3c, _ := cmd.Flags().GetBool("w3c"); w3c {
		return printJSON(cmd, doc.W3C())
	}
	return printJSON(cmd, doc)
}

func runDIDCreate(cmd *cobra.Command, args []string) error {
	cert, err := readCert(cmd)
	if err != nil {
		return err
	}

	req := did.CreateRequest{DID: args[0], X509Cert: cert}
	req.PublicKey, _ = cmd.Flags().GetString("public-key")
	req.Metadata, _ = cmd.Flags().GetString("metadata")
	req.Role, _ = cmd.Flags().GetString("role")
	req.Organisation, _ = cmd.Flags().GetString("org")

	return withServices(cmd, func(ctx context.Context, s *services) error {
		doc, err := s.registry.CreateDID(ctx, req)
		if err != nil {
			return err
		}
		return printDocument(cmd, doc)
	})
}

func runDIDRead(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		doc, err := s.registry.ReadDID(ctx, args[0])
		if err != nil {
			return err
		}
		return printDocument(cmd, doc)
	})
}

func runDIDUpdate(cmd *cobra.Command, args []string) error {
	cert, err := readCert(cmd)
	if err != nil {
		return err
	}

	return withServices(cmd, func(ctx context.Context, s *services) error {
		doc, err := s.registry.UpdateDID(ctx, args[0], cert)
		if err != nil {
			return err
		}
		return printJSON(cmd, doc)
	})
}

func runDIDLink(cmd *cobra.Command, args []string) error {
	cert, err := readCert(cmd)
	if err != nil {
		return err
	}

	return withServices(cmd, func(ctx context.Context, s *services) error {
		res, err := s.linker.Link(ctx, args[0], cert)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	})
}

func runDIDKeygen(cmd *cobra.Command, args []string) error {
	k, err := did.GenerateKeypair(rand.Reader)
	if err != nil {
		return errors.Wrap(err, "generating keypair")
	}

	out := struct {
		DID         string `json:"did"`
		PublicKey   string `json:"publicKey"`
		PrivateKey  string `json:"privateKey"`
		Certificate string `json:"certificate,omitempty"`
	}{}

	if out.DID, err = k.DID(); err != nil {
		return err
	}
	if out.PublicKey, err = k.PublicKeyMultibase(); err != nil {
		return err
	}
	if out.PrivateKey, err = k.PrivateKeyMultibase(); err != nil {
		return err
	}

	if p, _ := cmd.Flags().GetString("cert-out"); p != "" {
		org, _ := cmd.Flags().GetString("org")
		validity, _ := cmd.Flags().GetDuration("validity")

		now := time.Now()
		cert, err := k.Certificate(org, now, now.Add(validity))
		if err != nil {
			return err
		}

		if err := os.WriteFile(p, []byte(cert), 0644); err != nil {
			return errors.Wrap(err, "writing certificate")
		}
		out.Certificate = p
	}

	return printJSON(cmd, out)
}

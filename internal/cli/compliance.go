package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tcfw/agritrace/pkg/validation"
)

const reissueHelp = `A DID keeps one access credential. Issuing again replaces a credential that
is still active. Once a credential has been revoked, either by "credential
access revoke" or by expiring on a later verify, it can never be re-issued
for that DID and the command fails with a revoked error. Use a new DID to
restore access.`

var (
	standardCmd = &cobra.Command{
		Use:   "standard",
		Short: "Quality standard commands",
	}

	standard_registerCmd = &cobra.Command{
		Use:   "register [id] [file]",
		Short: "Register a quality standard from a JSON or YAML file. Use '-' for stdin",
		Args:  cobra.ExactArgs(2),
		RunE:  runStandardRegister,
	}

	standard_readCmd = &cobra.Command{
		Use:   "read [id]",
		Short: "Read a quality standard",
		Args:  cobra.ExactArgs(1),
		RunE:  runStandardRead,
	}

	complianceCmd = &cobra.Command{
		Use:   "compliance",
		Short: "Compliance verification and certification",
	}

	compliance_verifyCmd = &cobra.Command{
		Use:   "verify [product] [standard]",
		Short: "Check a product record against a standard",
		Args:  cobra.ExactArgs(2),
		RunE:  runComplianceVerify,
	}

	compliance_certifyCmd = &cobra.Command{
		Use:   "certify [product] [standard]",
		Short: "Issue a quality certificate for a compliant product",
		Args:  cobra.ExactArgs(2),
		RunE:  runComplianceCertify,
	}

	compliance_certificateCmd = &cobra.Command{
		Use:   "certificate [id]",
		Short: "Read a quality certificate",
		Args:  cobra.ExactArgs(1),
		RunE:  runComplianceCertificate,
	}

	compliance_grantCmd = &cobra.Command{
		Use:   "grant [did]",
		Short: "Grant traceability read access on behalf of the authority",
		Long:  "Grant traceability read access on behalf of the authority.\n\n" + reissueHelp,
		Args:  cobra.ExactArgs(1),
		RunE:  runComplianceGrant,
	}
)

func init() {
	standard_registerCmd.Flags().String("format", "", "input format (json|yaml). blank detects from the file extension")

	compliance_certifyCmd.Flags().String("id", "", "certificate id. blank generates one")

	compliance_grantCmd.Flags().StringSliceP("permission", "p", []string{"read"}, "granted permissions")
	compliance_grantCmd.Flags().Duration("ttl", 30*24*time.Hour, "time until the credential expires")
}

func readInput(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

// yamlToJSON converts a YAML mapping to a JSON object keeping the key order.
func yamlToJSON(b []byte) ([]byte, error) {
	doc := &yaml.Node{}
	if err := yaml.Unmarshal(b, doc); err != nil {
		return nil, errors.Wrap(err, "parsing yaml")
	}

	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, validation.Invalidf("standard must be a mapping of criteria")
	}
	m := doc.Content[0]

	buf := bytes.NewBufferString("{")
	for i := 0; i+1 < len(m.Content); i += 2 {
		if i > 0 {
			buf.WriteByte(',')
		}

		var v interface{}
		if err := m.Content[i+1].Decode(&v); err != nil {
			return nil, errors.Wrapf(err, "criterion %s", m.Content[i].Value)
		}

		kb, err := json.Marshal(m.Content[i].Value)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(err, "criterion %s", m.Content[i].Value)
		}

		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func runStandardRegister(cmd *cobra.Command, args []string) error {
	raw, err := readInput(args[1])
	if err != nil {
		return errors.Wrap(err, "reading standard")
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		switch strings.ToLower(filepath.Ext(args[1])) {
		case ".yaml", ".yml":
			format = "yaml"
		default:
			format = "json"
		}
	}

	if format == "yaml" {
		raw, err = yamlToJSON(raw)
		if err != nil {
			return err
		}
	}

	return withServices(cmd, func(ctx context.Context, s *services) error {
		std, err := s.workflow.RegisterStandard(ctx, args[0], raw)
		if err != nil {
			return err
		}
		return printJSON(cmd, std)
	})
}

func runStandardRead(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		std, err := s.workflow.ReadStandard(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, std)
	})
}

func runComplianceVerify(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		res, err := s.workflow.VerifyCompliance(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	})
}

func runComplianceCertify(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	if id == "" {
		id = uuid.NewString()
	}

	return withServices(cmd, func(ctx context.Context, s *services) error {
		qc, err := s.workflow.IssueQualityCertificate(ctx, args[0], args[1], id)
		if err != nil {
			return err
		}
		return printJSON(cmd, qc)
	})
}

func runComplianceCertificate(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		qc, err := s.workflow.ReadCertificate(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, qc)
	})
}

func runComplianceGrant(cmd *cobra.Command, args []string) error {
	perms, _ := cmd.Flags().GetStringSlice("permission")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	return withServices(cmd, func(ctx context.Context, s *services) error {
		vc, err := s.workflow.GrantAccess(ctx, args[0], perms, time.Now().Add(ttl))
		if err != nil {
			return err
		}
		return printJSON(cmd, vc)
	})
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tcfw/agritrace/internal/config"
	store "github.com/tcfw/agritrace/internal/ledger"
	"github.com/tcfw/agritrace/pkg/compliance"
	"github.com/tcfw/agritrace/pkg/credential"
	"github.com/tcfw/agritrace/pkg/did"
	"github.com/tcfw/agritrace/pkg/provenance"
)

var (
	rootCmd = &cobra.Command{
		Use:           "agritrace",
		Short:         "Agricultural supply chain traceability ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.GetConfig()
			if err != nil {
				return errors.Wrap(err, "loading config")
			}
			cfg = c
			return nil
		},
	}

	cfg *config.Config
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "increase verbosity")
	flags.String("log-format", "text", "log format (text|json)")
	flags.String("backend", "pebble", "ledger backend (pebble|sqlite|memory)")
	flags.String("ledger", "", "ledger data directory")
	flags.String("keys", "typed", "ledger key scheme (typed|flat)")
	flags.String("authority", config.DefaultAuthority, "organisation issuing quality certificates")

	viper.BindPFlag(config.Cfg_verbose, flags.Lookup("verbose"))
	viper.BindPFlag(config.Cfg_logFormat, flags.Lookup("log-format"))
	viper.BindPFlag(config.Cfg_ledger_backend, flags.Lookup("backend"))
	viper.BindPFlag(config.Cfg_ledger_path, flags.Lookup("ledger"))
	viper.BindPFlag(config.Cfg_ledger_keys, flags.Lookup("keys"))
	viper.BindPFlag(config.Cfg_compliance_authority, flags.Lookup("authority"))

	regCommands()
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}

	return nil
}

// services wires every domain component to one opened ledger.
type services struct {
	backend  store.Backend
	registry *did.Registry
	linker   *did.Linker
	creds    *credential.Engine
	graph    *provenance.Graph
	workflow *compliance.Workflow
}

func newServices(ctx context.Context, c *config.Config) (*services, error) {
	lc := c.Ledger()

	b, err := store.Open(ctx, lc)
	if err != nil {
		return nil, errors.Wrap(err, "opening ledger")
	}

	s := &services{backend: b}

	policy, err := did.ParseCertificatePolicy(c.Identity().CertificatePolicy)
	if err != nil {
		b.Close()
		return nil, err
	}

	s.registry, err = did.NewRegistry(b, did.WithKeyspace(lc.Keyspace), did.WithCertificatePolicy(policy))
	if err != nil {
		b.Close()
		return nil, errors.Wrap(err, "identity registry")
	}
	s.linker = did.NewLinker(s.registry)

	s.creds, err = credential.NewEngine(b, credential.WithKeyspace(lc.Keyspace))
	if err != nil {
		b.Close()
		return nil, errors.Wrap(err, "credential engine")
	}

	s.graph, err = provenance.NewGraph(b, provenance.WithKeyspace(lc.Keyspace))
	if err != nil {
		b.Close()
		return nil, errors.Wrap(err, "provenance graph")
	}

	s.workflow, err = compliance.NewWorkflow(b, s.creds,
		compliance.WithKeyspace(lc.Keyspace),
		compliance.WithAuthority(c.Compliance().Authority),
	)
	if err != nil {
		b.Close()
		return nil, errors.Wrap(err, "compliance workflow")
	}

	return s, nil
}

func (s *services) Close() error {
	return s.backend.Close()
}

// withServices runs fn against a freshly opened ledger, closing it after.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, s *services) error) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	s, err := newServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(ctx, s)
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", b)
	return err
}

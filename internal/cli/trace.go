package cli

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tcfw/agritrace/pkg/compliance"
)

var (
	traceCmd = &cobra.Command{
		Use:   "trace",
		Short: "Traceability record commands",
	}

	trace_createCmd = &cobra.Command{
		Use:   "create [did] [type] [value]",
		Short: "Record a traceability observation",
		Args:  cobra.ExactArgs(3),
		RunE:  runTraceCreate,
	}

	trace_readCmd = &cobra.Command{
		Use:   "read [id]",
		Short: "Read a traceability record without a credential check",
		Args:  cobra.ExactArgs(1),
		RunE:  runTraceRead,
	}

	trace_queryCmd = &cobra.Command{
		Use:   "query [id] [credential-did]",
		Short: "Read a traceability record as a credential holder",
		Args:  cobra.ExactArgs(2),
		RunE:  runTraceQuery,
	}
)

func init() {
	trace_createCmd.Flags().String("id", "", "record id. blank generates one")
	trace_createCmd.Flags().String("info", "", "additional information")
	trace_createCmd.Flags().String("attributes", "", "JSON object of measured attributes")
	trace_createCmd.Flags().StringToStringP("attr", "a", nil, "string attribute as KEY=value. Can be used multiple times")
}

func parseAttributes(raw string, kv map[string]string) (map[string]interface{}, error) {
	attrs := map[string]interface{}{}

	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
			return nil, errors.Wrap(err, "attributes must be a JSON object")
		}
	}

	for k, v := range kv {
		attrs[k] = v
	}

	if len(attrs) == 0 {
		return nil, nil
	}

	return attrs, nil
}

func runTraceCreate(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	if id == "" {
		id = uuid.NewString()
	}

	raw, _ := cmd.Flags().GetString("attributes")
	kv, _ := cmd.Flags().GetStringToString("attr")
	attrs, err := parseAttributes(raw, kv)
	if err != nil {
		return err
	}

	req := compliance.RecordRequest{
		ID:         id,
		DID:        args[0],
		DataType:   args[1],
		Value:      args[2],
		Attributes: attrs,
	}
	req.AdditionalInfo, _ = cmd.Flags().GetString("info")

	return withServices(cmd, func(ctx context.Context, s *services) error {
		r, err := s.workflow.CreateRecord(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd, r)
	})
}

func runTraceRead(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		r, err := s.workflow.ReadRecord(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, r)
	})
}

func runTraceQuery(cmd *cobra.Command, args []string) error {
	return withServices(cmd, func(ctx context.Context, s *services) error {
		r, err := s.workflow.ReadTraceabilityData(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(cmd, r)
	})
}

package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/dti-affinity/internal/application/prediction"
	"github.com/turtacn/dti-affinity/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/dti-affinity/pkg/client"
	"github.com/turtacn/dti-affinity/pkg/types/affinity"
)

type predictOptions struct {
	drug    string
	protein string
	server  string
	apiKey  string
}

// predictResult is the CLI rendering of an affinity answer.
type predictResult struct {
	Source          string  `json:"source"`
	Affinity        float64 `json:"affinity"`
	CanonicalSMILES string  `json:"canonical_smiles,omitempty"`
	ModelVersion    string  `json:"model_version,omitempty"`
}

func (r predictResult) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Source:    %s\n", r.Source)
	fmt.Fprintf(&sb, "Affinity:  %g\n", r.Affinity)
	if r.CanonicalSMILES != "" {
		fmt.Fprintf(&sb, "Canonical: %s\n", r.CanonicalSMILES)
	}
	if r.ModelVersion != "" {
		fmt.Fprintf(&sb, "Model:     %s\n", r.ModelVersion)
	}
	return sb.String()
}

// NewPredictCmd answers one affinity query, locally or against a server.
func NewPredictCmd() *cobra.Command {
	opts := &predictOptions{}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the binding affinity of a drug-target pair",
		Example: `  affinity predict --drug CCO --protein MKTAYIAKQR
  affinity predict --drug CCO --protein MKTAYIAKQR --server http://localhost:8000 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runPredict(cmd, cliCtx, opts)
		},
	}
	cmd.Flags().StringVar(&opts.drug, "drug", "", "drug SMILES (required)")
	cmd.Flags().StringVar(&opts.protein, "protein", "", "target amino-acid sequence (required)")
	cmd.Flags().StringVar(&opts.server, "server", "", "query a running server instead of loading the model locally")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "bearer token sent with --server")
	_ = cmd.MarkFlagRequired("drug")
	_ = cmd.MarkFlagRequired("protein")
	return cmd
}

func runPredict(cmd *cobra.Command, cliCtx *CLIContext, opts *predictOptions) error {
	ctx, cancel := withTimeout(cmd.Context(), cliCtx)
	defer cancel()

	if opts.server != "" {
		c, err := newRemoteClient(cliCtx, opts.server, opts.apiKey)
		if err != nil {
			return err
		}
		resp, err := c.Predict(ctx, opts.drug, opts.protein)
		if err != nil {
			return err
		}
		return PrintResult(cmd, fromResponse(resp))
	}

	svc, err := bootstrapLocal(ctx, cliCtx)
	if err != nil {
		return err
	}
	p, err := svc.Predict(ctx, opts.drug, opts.protein)
	if err != nil {
		return err
	}
	return PrintResult(cmd, predictResult{
		Source:          string(p.Source),
		Affinity:        p.Affinity,
		CanonicalSMILES: p.CanonicalSMILES,
		ModelVersion:    p.ModelVersion,
	})
}

func fromResponse(resp *affinity.PredictResponse) predictResult {
	v, _ := resp.Value()
	return predictResult{
		Source:          resp.Source,
		Affinity:        v,
		CanonicalSMILES: resp.CanonicalSMILES,
		ModelVersion:    resp.ModelVersion,
	}
}

func newRemoteClient(cliCtx *CLIContext, server, apiKey string) (*client.Client, error) {
	opts := []client.Option{client.WithHTTPClient(&http.Client{Timeout: cliCtx.Timeout})}
	if apiKey != "" {
		opts = append(opts, client.WithAPIKey(apiKey))
	}
	return client.NewClient(server, opts...)
}

// bootstrapLocal loads the service in-process with metrics disabled.
func bootstrapLocal(ctx context.Context, cliCtx *CLIContext) (prediction.Service, error) {
	return prediction.Bootstrap(ctx, cliCtx.Config, cliCtx.Logger, prometheus.NewNoopAffinityMetrics())
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/dti-affinity/internal/domain/molecule"
	"github.com/turtacn/dti-affinity/internal/domain/protein"
	"github.com/turtacn/dti-affinity/pkg/types/affinity"
)

type encodeOptions struct {
	drug    string
	protein string
	server  string
	apiKey  string
}

type encodeResult affinity.EncodeResponse

func (r encodeResult) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Canonical:   %s\n", r.CanonicalSMILES)
	fmt.Fprintf(&sb, "Fingerprint: radius=%d bits=%d on=%d\n", r.Radius, r.NBits, len(r.OnBits))
	fmt.Fprintf(&sb, "Features:    %d\n", r.FeatureLength)

	rows := make([][]string, 0, len(r.Composition))
	for i, v := range r.Composition {
		if i >= len(protein.Alphabet) {
			break
		}
		rows = append(rows, []string{string(protein.Alphabet[i]), fmt.Sprintf("%.4f", v)})
	}
	sb.WriteString(FormatTable([]string{"RESIDUE", "FRACTION"}, rows))
	return sb.String()
}

// NewEncodeCmd prints the intermediate encodings of a pair.
func NewEncodeCmd() *cobra.Command {
	opts := &encodeOptions{}
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Show the canonical SMILES, fingerprint and composition of a pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runEncode(cmd, cliCtx, opts)
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

func runEncode(cmd *cobra.Command, cliCtx *CLIContext, opts *encodeOptions) error {
	ctx, cancel := withTimeout(cmd.Context(), cliCtx)
	defer cancel()

	if opts.server != "" {
		c, err := newRemoteClient(cliCtx, opts.server, opts.apiKey)
		if err != nil {
			return err
		}
		resp, err := c.Encode(ctx, opts.drug, opts.protein)
		if err != nil {
			return err
		}
		return PrintResult(cmd, encodeResult(*resp))
	}

	svc, err := bootstrapLocal(ctx, cliCtx)
	if err != nil {
		return err
	}
	enc, err := svc.Encode(ctx, opts.drug, opts.protein)
	if err != nil {
		return err
	}
	return PrintResult(cmd, encodeResult{
		CanonicalSMILES: enc.CanonicalSMILES,
		Radius:          enc.Fingerprint.Radius,
		NBits:           enc.Fingerprint.Length,
		OnBits:          enc.Fingerprint.OnBits(),
		Composition:     enc.Composition.Slice(),
		FeatureLength:   len(enc.Features),
	})
}

// NewCanonicalizeCmd rewrites SMILES arguments in canonical form. It needs
// neither the estimator nor the reference table.
func NewCanonicalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "canonicalize SMILES...",
		Aliases: []string{"canon"},
		Short:   "Print the canonical form of one or more SMILES strings",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := make([]canonicalResult, 0, len(args))
			for _, s := range args {
				c, err := molecule.Canonicalize(s)
				if err != nil {
					return fmt.Errorf("%s: %w", s, err)
				}
				out = append(out, canonicalResult{Input: s, Canonical: c})
			}
			return PrintResult(cmd, canonicalResults(out))
		},
	}
}

type canonicalResult struct {
	Input     string `json:"input"`
	Canonical string `json:"canonical"`
}

type canonicalResults []canonicalResult

func (rs canonicalResults) Text() string {
	var sb strings.Builder
	for _, r := range rs {
		sb.WriteString(r.Canonical)
		sb.WriteByte('\n')
	}
	return sb.String()
}

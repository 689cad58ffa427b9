package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/dti-affinity/internal/config"
	"github.com/turtacn/dti-affinity/internal/domain/feature"
	"github.com/turtacn/dti-affinity/internal/infrastructure/storage/minio"
	"github.com/turtacn/dti-affinity/internal/intelligence/estimator"
)

// NewModelCmd groups estimator artifact commands.
func NewModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect and distribute estimator artifacts",
	}
	cmd.AddCommand(newModelInspectCmd(), newModelPushCmd(), newModelFetchCmd())
	return cmd
}

type modelInfo struct {
	Path        string   `json:"path"`
	Kind        string   `json:"kind"`
	Version     string   `json:"version"`
	NumFeatures int      `json:"num_features"`
	Trees       int      `json:"trees,omitempty"`
	Radius      *int     `json:"fingerprint_radius,omitempty"`
	NBits       *int     `json:"fingerprint_bits,omitempty"`
	Compatible  bool     `json:"compatible"`
	Problems    []string `json:"problems,omitempty"`
}

func (m modelInfo) Text() string {
	rows := [][]string{
		{"path", m.Path},
		{"kind", m.Kind},
		{"version", m.Version},
		{"num_features", strconv.Itoa(m.NumFeatures)},
	}
	if m.Trees > 0 {
		rows = append(rows, []string{"trees", strconv.Itoa(m.Trees)})
	}
	if m.Radius != nil {
		rows = append(rows, []string{"fingerprint_radius", strconv.Itoa(*m.Radius)})
	}
	if m.NBits != nil {
		rows = append(rows, []string{"fingerprint_bits", strconv.Itoa(*m.NBits)})
	}
	rows = append(rows, []string{"compatible", strconv.FormatBool(m.Compatible)})
	var sb strings.Builder
	sb.WriteString(FormatTable([]string{"FIELD", "VALUE"}, rows))
	for _, p := range m.Problems {
		fmt.Fprintf(&sb, "  ! %s\n", p)
	}
	return sb.String()
}

func newModelInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [PATH]",
		Short: "Describe an artifact and check it against the configured feature geometry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			path := cliCtx.Config.Estimator.ArtifactPath
			if len(args) == 1 {
				path = args[0]
			}
			loaded, err := estimator.Load(path)
			if err != nil {
				return err
			}
			return PrintResult(cmd, describeModel(loaded, cliCtx.Config.Features))
		},
	}
}

func describeModel(loaded *estimator.Loaded, features config.FeaturesConfig) modelInfo {
	est := estimator.Unwrap(loaded.Estimator)
	info := modelInfo{
		Path:        loaded.Path,
		Kind:        string(est.Kind()),
		Version:     est.Version(),
		NumFeatures: est.NumFeatures(),
	}
	if rf, ok := est.(*estimator.RandomForest); ok {
		info.Trees = rf.NumTrees()
	}
	if fp := loaded.Fingerprint; fp != nil {
		info.Radius, info.NBits = &fp.Radius, &fp.NBits
		if fp.Radius != features.Radius || fp.NBits != features.NBits {
			info.Problems = append(info.Problems, fmt.Sprintf(
				"fitted with radius=%d bits=%d, configured radius=%d bits=%d",
				fp.Radius, fp.NBits, features.Radius, features.NBits))
		}
	}
	if c, err := feature.NewComposer(features.NBits); err == nil && c.Dim() != info.NumFeatures {
		info.Problems = append(info.Problems, fmt.Sprintf(
			"expects %d features, configured pipeline produces %d", info.NumFeatures, c.Dim()))
	}
	info.Compatible = len(info.Problems) == 0
	return info
}

func newModelPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push [PATH]",
		Short: "Validate an artifact and upload it to estimator.minio",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), cliCtx)
			defer cancel()

			path := cliCtx.Config.Estimator.ArtifactPath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := estimator.Load(path); err != nil {
				return err
			}
			store, err := minio.NewArtifactStore(cliCtx.Config.Estimator.MinIO, cliCtx.Logger.Named("minio"))
			if err != nil {
				return err
			}
			info, err := store.Push(ctx, path)
			if err != nil {
				return err
			}
			return PrintResult(cmd, fmt.Sprintf("Uploaded %s to %s/%s (%d bytes)", path, info.Bucket, info.Key, info.Size))
		},
	}
}

func newModelFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [DEST]",
		Short: "Download the artifact named by estimator.minio",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), cliCtx)
			defer cancel()

			dest := cliCtx.Config.Estimator.ArtifactPath
			if len(args) == 1 {
				dest = args[0]
			}
			store, err := minio.NewArtifactStore(cliCtx.Config.Estimator.MinIO, cliCtx.Logger.Named("minio"))
			if err != nil {
				return err
			}
			if err := store.Fetch(ctx, dest); err != nil {
				return err
			}
			return PrintResult(cmd, "Downloaded "+dest)
		},
	}
}

package commands

import (
	"fmt"
	"strings"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	"github.com/Harshitk-cp/causalchain/internal/service"
	"github.com/spf13/cobra"
)

func newTraceCmd(opts *rootOptions) *cobra.Command {
	var (
		direction string
		depth     int
	)

	cmd := &cobra.Command{
		Use:   "trace <node>",
		Short: "Trace the causal chain from a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !domain.ValidDirection(direction) {
				return fmt.Errorf("direction must be forward or backward, got %q", direction)
			}
			g, err := opts.openGraph(cmd.Context())
			if err != nil {
				return err
			}
			id := g.resolve(args[0])
			if _, err := g.svc.GetNode(cmd.Context(), id); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			chain := g.svc.TraceChain(cmd.Context(), id, domain.Direction(direction), depth)
			return opts.print(cmd.OutOrStdout(), chain)
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", string(domain.DirectionForward), "forward (effects) or backward (causes)")
	cmd.Flags().IntVar(&depth, "depth", service.DefaultMaxDepth, "Maximum traversal depth")
	return cmd
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	var (
		question string
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:   "query <type> <node> [node...]",
		Short: "Run a reasoning query (why, impact, what_if, risk, alternatives, optimal)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := opts.openGraph(cmd.Context())
			if err != nil {
				return err
			}

			nodeIDs := make([]string, 0, len(args)-1)
			for _, key := range args[1:] {
				nodeIDs = append(nodeIDs, g.resolve(key))
			}

			out, err := g.svc.Query(cmd.Context(), domain.CausalQuery{
				Type:     domain.QueryType(strings.ToLower(args[0])),
				Question: question,
				Context:  domain.QueryContext{NodeIDs: nodeIDs},
				Options:  domain.QueryOptions{MaxDepth: maxDepth},
			})
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "Free-text question carried on the query")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Traversal depth (0 uses the default)")
	return cmd
}

func newWhatIfCmd(opts *rootOptions) *cobra.Command {
	var probability float64

	cmd := &cobra.Command{
		Use:   "whatif <node>",
		Short: "Estimate the downstream risk change of a hypothetical probability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if probability < 0 {
				return fmt.Errorf("probability must be non-negative, got %v", probability)
			}
			g, err := opts.openGraph(cmd.Context())
			if err != nil {
				return err
			}
			res := g.svc.WhatIf(cmd.Context(), g.resolve(args[0]), domain.HypotheticalChanges{Probability: &probability})
			return opts.print(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().Float64VarP(&probability, "probability", "p", 0.5, "Hypothetical probability factor")
	return cmd
}

func newExplainCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <node>",
		Short: "Print the risk explanation for a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := opts.openGraph(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), g.svc.ExplainRisk(cmd.Context(), g.resolve(args[0])))
			return err
		},
	}
}

func newVizCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "viz <node>",
		Short: "Emit visualization nodes and edges reachable from a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := opts.openGraph(cmd.Context())
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), g.svc.GetVisualizationData(cmd.Context(), g.resolve(args[0])))
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print graph metadata and derived statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := opts.openGraph(cmd.Context())
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), struct {
				Metadata   domain.GraphMetadata    `json:"metadata"`
				Statistics *domain.GraphStatistics `json:"statistics"`
			}{
				Metadata:   g.svc.Metadata(cmd.Context()),
				Statistics: g.svc.ComputeStatistics(cmd.Context()),
			})
		},
	}
}

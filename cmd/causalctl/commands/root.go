// Package commands implements causalctl, an offline CLI that loads a YAML
// graph fixture into an in-memory engine and runs one analysis against it.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Harshitk-cp/causalchain/internal/buildconfig"
	"github.com/Harshitk-cp/causalchain/internal/events"
	"github.com/Harshitk-cp/causalchain/internal/fixture"
	"github.com/Harshitk-cp/causalchain/internal/service"
	"github.com/Harshitk-cp/causalchain/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type rootOptions struct {
	graphPath string
	output    string
	logLevel  string
}

func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds a fresh command tree so flags never leak between runs.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "causalctl",
		Short: "Run causal chain analyses over a graph fixture",
		Long: `causalctl loads a YAML graph fixture into an in-memory causal graph and
runs a single trace, query, what-if, risk explanation or statistics pass.
Nodes are addressed by their fixture key (or task id).`,
		Version:       buildconfig.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.graphPath, "graph", "g", "", "Path to the YAML graph fixture")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "yaml", "Output format: yaml or json")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Engine log level (debug, info, warn, error)")

	cmd.AddCommand(
		newTraceCmd(opts),
		newQueryCmd(opts),
		newWhatIfCmd(opts),
		newExplainCmd(opts),
		newVizCmd(opts),
		newStatsCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// graph is a loaded fixture plus the engine it was applied to.
type graph struct {
	svc *service.CausalService
	ids map[string]string
}

// resolve maps a fixture key to its node id. Unknown keys pass through so
// raw node ids also work.
func (g *graph) resolve(key string) string {
	if id, ok := g.ids[key]; ok {
		return id
	}
	return key
}

func (o *rootOptions) logger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(o.logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", o.logLevel, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func (o *rootOptions) openGraph(ctx context.Context) (*graph, error) {
	if o.graphPath == "" {
		return nil, fmt.Errorf("--graph is required")
	}

	logger, err := o.logger()
	if err != nil {
		return nil, err
	}

	g, err := fixture.Load(o.graphPath)
	if err != nil {
		return nil, err
	}

	svc := service.NewCausalService(store.NewGraphStore(), events.NewBus(logger), logger)
	ids, err := fixture.Apply(ctx, svc, g)
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", o.graphPath, err)
	}
	return &graph{svc: svc, ids: ids}, nil
}

func (o *rootOptions) print(w io.Writer, v any) error {
	switch o.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// Round-trip through JSON so keys follow the json tags and keep
		// field order. JSON is valid YAML, so yaml.v3 can parse it into a
		// node tree directly.
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return err
		}
		blockStyle(&doc)

		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want yaml or json)", o.output)
	}
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

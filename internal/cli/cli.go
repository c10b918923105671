// Package cli implements the jimfs command line: it builds a filesystem from
// a config file and a node definition file, then inspects it.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/JimSP/jimfs"
	"github.com/JimSP/jimfs/adapters"
	"github.com/JimSP/jimfs/config"
	"github.com/JimSP/jimfs/filesystem"
	"github.com/JimSP/jimfs/internal/metrics"
	"github.com/JimSP/jimfs/internal/util"
	"github.com/JimSP/jimfs/requests"
)

// T holds the command tree and the state shared by its commands
type T struct {
	Root *cobra.Command

	configPath string
	nodesPath  string
	pathType   string
	verbose    int
	noFollow   bool

	fs       *filesystem.FileSystem
	metrics  *metrics.Metrics
	registry *prometheus.Registry
}

// New returns the jimfs command tree
func New() *T {
	t := &T{}
	t.Root = &cobra.Command{
		Use:   "jimfs",
		Short: "in-memory filesystem inspection tool",
		Long: `
Build an in-memory filesystem from an optional config file and node
definition file, then run a single inspection command against it.
`,
		SilenceUsage:      true,
		PersistentPreRunE: t.setup,
	}
	flags := t.Root.PersistentFlags()
	flags.StringVarP(&t.configPath, "config", "c", "", "config file (yaml or json)")
	flags.StringVarP(&t.nodesPath, "nodes", "n", "", "node definition file (yaml or json)")
	flags.StringVar(&t.pathType, "path-type", "", "preset path type when no config file is given: unix, osx or windows")
	flags.IntVarP(&t.verbose, "verbose", "v", 0, "log verbosity between 1 (error) and 5 (trace); overrides the config")

	tree := &cobra.Command{
		Use:   "tree [path]",
		Short: "print the directory tree",
		Args:  cobra.MaximumNArgs(1),
		RunE:  t.runTree,
	}
	ls := &cobra.Command{
		Use:   "ls [path]",
		Short: "list a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  t.runLs,
	}
	stat := &cobra.Command{
		Use:   "stat <path>",
		Short: "print the attributes of a file",
		Args:  cobra.ExactArgs(1),
		RunE:  t.runStat,
	}
	resolve := &cobra.Command{
		Use:   "resolve <path>",
		Short: "print the real path a path resolves to",
		Args:  cobra.ExactArgs(1),
		RunE:  t.runResolve,
	}
	uri := &cobra.Command{
		Use:   "uri <path>",
		Short: "print the jimfs URI of a path",
		Args:  cobra.ExactArgs(1),
		RunE:  t.runURI,
	}
	cat := &cobra.Command{
		Use:   "cat <path>",
		Short: "print the content of a regular file",
		Args:  cobra.ExactArgs(1),
		RunE:  t.runCat,
	}
	metricsCmd := &cobra.Command{
		Use:   "metrics",
		Short: "print the metrics collected while building the filesystem",
		Args:  cobra.NoArgs,
		RunE:  t.runMetrics,
	}
	stat.Flags().BoolVar(&t.noFollow, "nofollow", false, "do not follow a final symbolic link")
	resolve.Flags().BoolVar(&t.noFollow, "nofollow", false, "do not follow a final symbolic link")

	t.Root.AddCommand(tree, ls, stat, resolve, uri, cat, metricsCmd)
	return t
}

// setup builds the filesystem before any subcommand runs
func (t *T) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := t.loadConfig()
	if err != nil {
		return err
	}
	lvl := cfg.LogLvl
	if cmd.Flags().Changed("verbose") {
		lvl = util.LevelFromVerbosity(t.verbose)
	}
	util.InitializeLoggerTo(cmd.ErrOrStderr(), lvl)
	logger := util.GetLogger("cli")

	t.metrics = metrics.New(cfg.Name)
	t.registry = prometheus.NewRegistry()
	if err := t.metrics.Register(t.registry); err != nil {
		return err
	}
	t.fs, err = filesystem.NewFS(cfg, filesystem.WithMetrics(t.metrics))
	if err != nil {
		return err
	}

	if t.nodesPath != "" {
		registry := adapters.NewRegistry()
		adapters.RegisterBuiltins(registry)
		reqs, err := requests.LoadNodesFile(t.nodesPath, registry)
		if err != nil {
			return errors.Wrapf(err, "loading %s", t.nodesPath)
		}
		if err := requests.Apply(t.fs, reqs); err != nil {
			return err
		}
		logger.Info().Int("nodes", len(reqs)).Str("file", t.nodesPath).Msg("Nodes loaded")
	}
	return nil
}

func (t *T) loadConfig() (*config.Config, error) {
	if t.configPath != "" {
		return config.NewConfigFromFile(t.configPath)
	}
	cfg, err := config.NewPresetConfig(t.pathType)
	if err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = uuid.NewString()
	}
	return cfg, nil
}

func (t *T) mode() filesystem.LinkHandling {
	if t.noFollow {
		return filesystem.NoFollowLinks
	}
	return filesystem.FollowLinks
}

func argOr(args []string, def string) string {
	if len(args) > 0 {
		return args[0]
	}
	return def
}

func (t *T) runTree(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	p := argOr(args, t.fs.WorkingDirectory().String())
	if _, err := t.fs.Resolve(p, filesystem.FollowLinks); err != nil {
		return err
	}
	fmt.Fprintln(out, p)
	return t.printTree(out, p, "  ")
}

func (t *T) printTree(out io.Writer, dir, indent string) error {
	entries, err := t.fs.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		node, err := t.fs.Resolve(entry.String(), filesystem.NoFollowLinks)
		if err != nil {
			// removed since the listing; skip it
			continue
		}
		fmt.Fprintf(out, "%s%s\n", indent, describeEntry(entry.FileName(), node))
		if node.IsDir() {
			if err := t.printTree(out, entry.String(), indent+"  "); err != nil {
				return err
			}
		}
	}
	return nil
}

func describeEntry(name string, node *filesystem.Node) string {
	switch {
	case node.IsDir():
		return name + "/"
	case node.IsSymlink():
		return name + " -> " + node.Target()
	}
	return name
}

func (t *T) runLs(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	entries, err := t.fs.ReadDir(argOr(args, ""))
	if err != nil {
		return err
	}
	for _, entry := range entries {
		node, err := t.fs.Resolve(entry.String(), filesystem.NoFollowLinks)
		if err != nil {
			continue
		}
		fmt.Fprintf(out, "%s %3d %s\n", typeChar(node.Type()), node.LinkCount(), describeEntry(entry.FileName(), node))
	}
	return nil
}

func typeChar(kind jimfs.NodeType) string {
	switch kind {
	case jimfs.DirectoryType:
		return "d"
	case jimfs.SymlinkType:
		return "l"
	}
	return "-"
}

func (t *T) runStat(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	node, err := t.fs.Resolve(args[0], t.mode())
	if err != nil {
		return err
	}
	ctx := t.fs.GetNodeCtx(node.ID())
	if ctx == nil {
		return errors.Wrapf(jimfs.ErrNotFound, "%s", args[0])
	}
	defer ctx.Close()

	attr := ctx.Attr()
	path, err := t.fs.PathOf(node)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "path:  %s\n", path)
	fmt.Fprintf(out, "ino:   %d\n", ctx.ID())
	fmt.Fprintf(out, "type:  %s\n", ctx.Type())
	fmt.Fprintf(out, "links: %d\n", ctx.HardLinkCount())
	fmt.Fprintf(out, "size:  %d\n", attr.Size)
	fmt.Fprintf(out, "perms: %04o\n", attr.Mode&0o7777)
	fmt.Fprintf(out, "mtime: %s\n", time.Unix(int64(attr.Mtime), int64(attr.Mtimensec)).UTC().Format(time.RFC3339))
	if ctx.Type() == jimfs.SymlinkType {
		fmt.Fprintf(out, "target: %s\n", ctx.Target())
	}
	return nil
}

func (t *T) runResolve(cmd *cobra.Command, args []string) error {
	node, err := t.fs.Resolve(args[0], t.mode())
	if err != nil {
		return err
	}
	path, err := t.fs.PathOf(node)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func (t *T) runURI(cmd *cobra.Command, args []string) error {
	p, err := t.fs.GetPath(args[0])
	if err != nil {
		return err
	}
	u, err := t.fs.ToURI(t.fs.ToAbsolute(p))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), u)
	return nil
}

func (t *T) runCat(cmd *cobra.Command, args []string) error {
	ctx, err := t.fs.OpenCtx(args[0])
	if err != nil {
		return err
	}
	defer ctx.Close()
	store := ctx.Content()
	if store == nil {
		return errors.Wrapf(jimfs.ErrArgument, "%s is not a regular file", args[0])
	}

	out := cmd.OutOrStdout()
	buf := make([]byte, 32*1024)
	for off := int64(0); ; {
		n, err := store.Read(cmd.Context(), off, buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return werr
			}
			off += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (t *T) runMetrics(cmd *cobra.Command, _ []string) error {
	families, err := t.registry.Gather()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return err
		}
	}
	return nil
}

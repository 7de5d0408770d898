package cli

import (
	"context"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/bind/cli/cmd"
	"github.com/ardnew/bind/pkg"
	"github.com/ardnew/bind/scope"
)

// CLI is the top-level command-line interface for bind.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Scope []string `help:"Scope data file(s) (${extensions}) or '-' for stdin" name:"scope" placeholder:"FILE" short:"s"`

	Init   cmd.Init   `cmd:"" help:"Initialize configuration file"`
	Eval   cmd.Eval   `cmd:"" default:"withargs" help:"Evaluate expressions against the scope"`
	Tokens cmd.Tokens `cmd:"" help:"Print the tokens of an expression"`
	AST    cmd.AST    `cmd:"" help:"Print the syntax tree of an expression" name:"ast"`
	Run    cmd.Run    `cmd:"" help:"Run a watch script through the digest loop"`
	Repl   cmd.Repl   `cmd:"" help:"Start an interactive session"`
}

var helpOptions = kong.HelpOptions{
	Compact:             true,
	Summary:             true,
	Tree:                true,
	NoExpandSubcommands: true,
}

// Run executes the bind CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"ttl":                strconv.Itoa(scope.DefaultTTL),
		"extensions":         extensions(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags are applied before parsing so that parse errors are
	// reported in the requested format.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{cli.Log.group(), cli.Pprof.group()}),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.ConfigureHelp(helpOptions),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithScopeFiles(ctx, cli.Scope)

	// TimeLayout and Caller are applied only after parsing completes.
	defer cli.Log.start(ctx)()

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

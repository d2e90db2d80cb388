package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"github.com/acheong08/lsdeps/internal/actualtree"
	"github.com/acheong08/lsdeps/internal/config"
	"github.com/acheong08/lsdeps/internal/lstree"
)

// CLI is the flag surface. Most flags default from .lsdeps.yaml / LSDEPS_*
// environment variables; explicit flags win.
type CLI struct {
	Packages []string `arg:"" optional:"" help:"Limit output to these packages (name or name@range)."`

	Depth     int    `default:"1" help:"Maximum display depth of the tree."`
	All       bool   `help:"Show the whole tree regardless of depth."`
	Long      bool   `short:"l" help:"Show extended information."`
	Parseable bool   `short:"p" help:"Output parseable paths instead of a tree."`
	Color     string `default:"auto" enum:"auto,always,never" help:"When to use colored output."`
	Unicode   bool   `default:"true" negatable:"" help:"Use unicode branch characters."`

	Dev    bool   `help:"Limit to packages reached through devDependencies."`
	Prod   bool   `help:"Limit to packages reached through dependencies."`
	Link   bool   `help:"Limit to linked packages."`
	Only   string `help:"Limit to a dependency category (dev or prod)."`
	Global bool   `short:"g" help:"Report on the packages installed under the global prefix."`

	Prefix string `default:"." help:"Project directory, or installation prefix with --global."`
}

func main() {
	cli := &CLI{}
	kong.Parse(
		cli,
		kong.Name("lsdeps"),
		kong.Description("List installed packages as a dependency tree."),
	)

	if err := run(cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cli *CLI) error {
	res, reportErr := report(cli)
	if res == nil {
		return reportErr
	}

	if res.Output != "" {
		fmt.Println(res.Output)
	}

	if reportErr != nil {
		var probs *lstree.ProblemsError
		if errors.As(reportErr, &probs) {
			fmt.Fprintln(os.Stderr, probs.Error())
			os.Exit(1)
		}
		return reportErr
	}
	if res.MatchedNone {
		os.Exit(1)
	}
	return nil
}

// report loads the installed tree for the requested directory and runs one
// report pass over it. With --global the prefix is mapped to the global
// install directory, whose path also suppresses the parseable error marker
// (a global root has no project manifest of its own).
func report(cli *CLI) (*lstree.Result, error) {
	cfg, err := config.Load(cli.Prefix)
	if err != nil {
		return nil, err
	}
	applyDefaults(cli, cfg)

	dir := cli.Prefix
	var globalRoot string
	if cli.Global {
		abs, err := filepath.Abs(globalDir(cli.Prefix))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve global prefix: %w", err)
		}
		dir, globalRoot = abs, abs
	}

	root, err := actualtree.Load(dir)
	if err != nil {
		return nil, err
	}

	return lstree.Report(root, lstree.Options{
		Args:       cli.Packages,
		MaxDepth:   cli.Depth,
		All:        cli.All,
		Long:       cli.Long,
		Parseable:  cli.Parseable,
		Unicode:    cli.Unicode,
		Color:      useColor(cli.Color),
		Dev:        cli.Dev,
		Prod:       cli.Prod,
		Link:       cli.Link,
		Only:       cli.Only,
		GlobalRoot: globalRoot,
	})
}

// globalDir maps an installation prefix to the directory whose
// node_modules holds globally installed packages.
func globalDir(prefix string) string {
	if runtime.GOOS == "windows" {
		return prefix
	}
	return filepath.Join(prefix, "lib")
}

// applyDefaults fills flags left at their defaults from the project
// configuration. Kong has already parsed, so a flag set on the command line
// differs from its default only if the user typed it; config values only
// replace untouched defaults.
func applyDefaults(cli *CLI, cfg *config.Config) {
	if cfg.Depth != nil && cli.Depth == 1 {
		cli.Depth = *cfg.Depth
	}
	if cfg.Color != nil && cli.Color == "auto" {
		cli.Color = *cfg.Color
	}
	if cfg.Unicode != nil && cli.Unicode {
		cli.Unicode = *cfg.Unicode
	}
	if cfg.Long != nil && !cli.Long {
		cli.Long = *cfg.Long
	}
	if cfg.Parseable != nil && !cli.Parseable {
		cli.Parseable = *cfg.Parseable
	}
}

func useColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

package main

import (
	"os"
	"strings"

	"devops-topics/internal/cli"

	"github.com/spf13/cobra"
)

// rewriteDirectLookupArgs makes `topics <id>` work like `topics show <id>`.
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten
// before parsing. Persistent flags may come first (`topics --backend json 3`),
// so the first positional token is located rather than assuming argv[1].
func rewriteDirectLookupArgs(root *cobra.Command, argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	known := map[string]bool{"help": true, "completion": true}
	for _, c := range root.Commands() {
		known[c.Name()] = true
		for _, a := range c.Aliases {
			known[a] = true
		}
	}

	valueFlags := map[string]bool{
		"--config-dir": true,
		"--backend":    true,
		"--data-dir":   true,
		"--page-size":  true,
		"--log-level":  true,
		"--format":     true,
	}

	rewrite := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "show")
		out = append(out, argv[i:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && !known[argv[i+1]] {
				return rewrite(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if known[a] {
			return argv
		}
		return rewrite(i)
	}
	return argv
}

func main() {
	cmd := cli.NewRootCmd()
	os.Args = rewriteDirectLookupArgs(cmd, os.Args)
	cmd.SetArgs(os.Args[1:])

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

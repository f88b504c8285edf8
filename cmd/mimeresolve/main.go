// Command mimeresolve prints the MIME type of one or more files using the
// shared-mime-info glob+magic algorithm.
package main

import (
	"context"
	"fmt"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/mrclksr/go-sharedmime"
	"github.com/mrclksr/go-sharedmime/internal/resolvelog"
	"github.com/mrclksr/go-sharedmime/internal/xdgpaths"
)

// Exit codes: 0 every file resolved, 1 one or more files had no match, 2
// the resolver itself could not be opened or no file was given.
const (
	exitOK        = 0
	exitNoMatch   = 1
	exitInitError = 2
)

func main() {
	app := &cli.App{
		Name:  "mimeresolve",
		Usage: "resolve the MIME type of a file by name and content",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "globs",
				Usage: "path to a mime/globs database, overriding XDG discovery",
			},
			&cli.StringFlag{
				Name:  "magic",
				Usage: "path to a mime/magic database, overriding XDG discovery",
			},
			&cli.BoolFlag{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "list every loaded glob rule and magic section instead of resolving",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "enable debug logging",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		resolvelog.Log.Errorf("%s", err)
		os.Exit(exitInitError)
	}
}

func run(c *cli.Context) error {
	if c.Bool("debug") {
		_ = logging.SetLogLevel("sharedmime", "debug")
	}

	resolver, err := sharedmime.Open(sharedmime.Options{
		GlobsPath: c.String("globs"),
		MagicPath: c.String("magic"),
		Locator:   xdgpaths.Default(),
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("mimeresolve: %s", err), exitInitError)
	}
	defer resolver.Close()

	if c.Bool("list") {
		return listRules(resolver)
	}

	args := c.Args().Slice()
	if len(args) == 0 {
		return cli.Exit("mimeresolve: no files given", exitInitError)
	}

	ctx := context.Background()
	anyMiss := false
	for _, name := range args {
		mime, ok := resolver.Resolve(ctx, name)
		if !ok {
			anyMiss = true
			fmt.Printf("%s: unknown\n", name)
			continue
		}
		fmt.Printf("%s: %s\n", name, mime)
	}
	if anyMiss {
		return cli.Exit("", exitNoMatch)
	}
	return nil
}

func listRules(resolver *sharedmime.Resolver) error {
	for _, rule := range resolver.GlobRules() {
		fmt.Printf("glob\t%d\t%s\t%s\n", rule.Priority, rule.MIME, rule.Pattern)
	}
	for _, sec := range resolver.MagicSections() {
		fmt.Printf("magic\t%d\t%s\t%d records\n", sec.Priority, sec.MIME, len(sec.Records))
	}
	return nil
}

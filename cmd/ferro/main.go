// Command ferro is the framework's project tool: it scaffolds new
// applications and generates secrets.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is stamped at build time with -ldflags.
var Version = "0.0.0-dev"

func main() {
	app := &cli.App{
		Name:    "ferro",
		Usage:   "project tool for ferro applications",
		Version: Version,
		Commands: []*cli.Command{
			versionCmd,
			keyGenerateCmd,
			newCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ferro:", err)
		os.Exit(1)
	}
}

var versionCmd = &cli.Command{
	Name:    "version",
	Aliases: []string{"v"},
	Usage:   "Show the tool version",
	Action: func(ctx *cli.Context) error {
		fmt.Println(ctx.App.Version)
		return nil
	},
}

var keyGenerateCmd = &cli.Command{
	Name:  "key:generate",
	Usage: "Generate a secret suitable for cookie signing and encryption",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "bytes",
			Usage: "secret length in bytes before encoding",
			Value: 32,
		},
	},
	Action: func(ctx *cli.Context) error {
		n := ctx.Int("bytes")
		if n < 32 {
			return fmt.Errorf("secrets shorter than 32 bytes are rejected by the cookie jar")
		}
		buf := make([]byte, n)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("generate secret: %w", err)
		}
		fmt.Println(base64.RawURLEncoding.EncodeToString(buf))
		return nil
	},
}

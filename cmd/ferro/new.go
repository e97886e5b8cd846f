package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"text/template"

	"github.com/urfave/cli/v2"
)

var moduleNameRe = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

var newCmd = &cli.Command{
	Name:      "new",
	Usage:     "Scaffold a new ferro application",
	ArgsUsage: "<name>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "module",
			Usage: "module path for go.mod (defaults to the app name)",
		},
	},
	Action: func(ctx *cli.Context) error {
		name := ctx.Args().First()
		if name == "" {
			return fmt.Errorf("usage: ferro new <name>")
		}
		if !moduleNameRe.MatchString(name) {
			return fmt.Errorf("invalid app name %q: use lowercase letters, digits, and dashes", name)
		}

		modulePath := ctx.String("module")
		if modulePath == "" {
			modulePath = name
		}

		if _, err := os.Stat(name); err == nil {
			return fmt.Errorf("directory %q already exists", name)
		}

		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generate app secret: %w", err)
		}

		data := scaffoldData{
			Name:   name,
			Module: modulePath,
			Secret: base64.RawURLEncoding.EncodeToString(secret),
		}

		for _, f := range scaffoldFiles {
			if err := writeScaffold(name, f, data); err != nil {
				return err
			}
		}

		fmt.Printf("created %s\n\n  cd %s\n  go mod tidy\n  go run .\n", name, name)
		return nil
	},
}

type scaffoldData struct {
	Name   string
	Module string
	Secret string
}

type scaffoldFile struct {
	path string
	tmpl string
}

func writeScaffold(root string, f scaffoldFile, data scaffoldData) error {
	t, err := template.New(f.path).Parse(f.tmpl)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", f.path, err)
	}

	dst := filepath.Join(root, f.path)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()

	if err := t.Execute(out, data); err != nil {
		return fmt.Errorf("render %s: %w", dst, err)
	}
	return nil
}

var scaffoldFiles = []scaffoldFile{
	{
		path: "go.mod",
		tmpl: `module {{.Module}}

go 1.25

require github.com/albertogferrario/ferro v0.1.0
`,
	},
	{
		path: ".env",
		tmpl: `APP_NAME={{.Name}}
APP_ENV=development
HTTP_ADDR=:8080
COOKIE_SECRET={{.Secret}}
`,
	},
	{
		path: ".gitignore",
		tmpl: `.env
{{.Name}}
`,
	},
	{
		path: "main.go",
		tmpl: `package main

import (
	"log"
	"net/http"
	"os"

	"github.com/albertogferrario/ferro"
	"github.com/albertogferrario/ferro/middlewares"
)

type pages struct{}

func (pages) Routes(r ferro.Router) {
	r.GET("/", func(c ferro.Context) error {
		return c.String(http.StatusOK, "welcome to {{.Name}}")
	})
}

func main() {
	app := ferro.New(
		ferro.WithAppInfo("{{.Name}}", os.Getenv("APP_ENV")),
		ferro.WithLogger("web", middlewares.RequestIDExtractor()),
		ferro.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
		),
		ferro.WithCookieOptions(
			ferro.WithCookieSecret(os.Getenv("COOKIE_SECRET")),
		),
		ferro.WithHandlers(pages{}),
		ferro.WithHealthChecks(),
	)

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := app.Run(addr); err != nil {
		log.Fatal(err)
	}
}
`,
	},
}

// Command zenc checks and builds ZenScript modules.
package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/pontaoski/zengo/emit"
	"github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/host"
	"github.com/pontaoski/zengo/llvmout"
	"github.com/pontaoski/zengo/parser"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
)

// reportErrors prints the diagnostics and fails if any of them is an error.
func reportErrors(bag *errors.Bag) error {
	bag.WriteTo(os.Stderr)
	if bag.HasErrors() {
		return cli.Exit(fmt.Sprintf("%d errors", bag.ErrorCount()), 1)
	}
	return nil
}

// fatal prints an internal error with its trace and exits.
func fatal(err error) {
	tracerr.PrintSourceColor(err)
	os.Exit(1)
}

func initCommand(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return cli.Exit("no module name provided", 1)
	}

	return host.WriteManifest(".", &host.Manifest{Package: name})
}

func checkCommand(c *cli.Context) error {
	mod, err := loadModule(".", c.StringSlice("force-import"))
	if err != nil {
		return err
	}

	bag := errors.NewBag()
	if _, err := mod.compile(bag); err != nil {
		bag.WriteTo(os.Stderr)
		fatal(err)
	}
	return reportErrors(bag)
}

func buildCommand(c *cli.Context) error {
	mod, err := loadModule(".", c.StringSlice("force-import"))
	if err != nil {
		return err
	}

	bag := errors.NewBag()
	unit, err := mod.compile(bag)
	if err != nil {
		bag.WriteTo(os.Stderr)
		fatal(err)
	}
	if err := reportErrors(bag); err != nil {
		return err
	}

	out := c.String("output")

	if !c.Bool("llvm") {
		code := emit.NewModule()
		if err := unit.Emit(code); err != nil {
			fatal(err)
		}
		if out == "" {
			fmt.Print(code)
			return nil
		}
		return ioutil.WriteFile(out, []byte(code.String()), 0644)
	}

	target := llvmout.NewModule()
	if err := unit.Emit(target); err != nil {
		fatal(err)
	}
	module := target.String()

	if c.Bool("dump") {
		fmt.Println(module)
		return nil
	}

	if out == "" {
		out = mod.manifest.Package
	}
	if c.Bool("library") {
		out += ".so"
	}

	cmd := exec.Command("clang", "-nostdlib", "-o", out)
	cmd.Args = append(cmd.Args, mod.libs...)

	if c.Bool("library") {
		cmd.Args = append(cmd.Args, "-shared", "-no-pie")
	} else {
		cmd.Args = append(cmd.Args, "-Wl,-e,"+llvmout.EntryName)
	}

	fi, err := ioutil.TempFile("", "*.ll")
	if err != nil {
		return err
	}
	defer os.Remove(fi.Name())
	defer fi.Close()

	if _, err := io.Copy(fi, strings.NewReader(module)); err != nil {
		return err
	}

	cmd.Args = append(cmd.Args, fi.Name())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fatal(tracerr.Wrap(err))
	}
	return nil
}

func parseCommand(c *cli.Context) error {
	name := c.Args().First()
	handle, err := os.Open(name)
	if err != nil {
		return err
	}
	defer handle.Close()

	bag := errors.NewBag()
	file, err := parser.ParseFile(name, handle, parser.DirLoader{Root: "."}, bag)
	if err != nil {
		bag.WriteTo(os.Stderr)
		fatal(err)
	}

	if c.Bool("dump") {
		repr.Println(file)
	} else {
		for _, fn := range file.FunctionNames() {
			fmt.Println(file.Functions[fn])
		}
	}
	return reportErrors(bag)
}

func typeinfoCommand(c *cli.Context) error {
	data, err := readTypeInfo(c.Args().First())
	if err != nil {
		return err
	}
	repr.Println(data)
	return nil
}

func main() {
	importFlag := &cli.StringSliceFlag{
		Name:  "force-import",
		Usage: "compile and link against a built library",
		Value: cli.NewStringSlice(),
	}

	app := &cli.App{
		Name:  "zenc",
		Usage: "ZenScript compiler",
		ExitErrHandler: func(context *cli.Context, err error) {
			if err == nil {
				return
			}
			if exit, ok := err.(cli.ExitCoder); ok {
				if msg := exit.Error(); msg != "" {
					log.Println(msg)
				}
				os.Exit(exit.ExitCode())
			}
			log.Fatalf("error with zenc: %s", err)
		},
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "init a directory",
				Action: initCommand,
			},
			{
				Name:   "check",
				Usage:  "report diagnostics for the module",
				Flags:  []cli.Flag{importFlag},
				Action: checkCommand,
			},
			{
				Name:  "build",
				Usage: "build the module",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name: "output",
					},
					&cli.BoolFlag{
						Name:  "llvm",
						Usage: "emit LLVM IR and link it with clang instead of writing bytecode",
					},
					&cli.BoolFlag{
						Name:  "dump",
						Usage: "print the LLVM IR instead of linking",
					},
					&cli.BoolFlag{
						Name: "library",
					},
					importFlag,
				},
				Action: buildCommand,
			},
			{
				Name:  "parse",
				Usage: "parse a file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dump",
						Usage: "print the whole syntax tree",
					},
				},
				Action: parseCommand,
			},
			{
				Name:   "typeinfo",
				Usage:  "dump typeinfo from a built library",
				Action: typeinfoCommand,
			},
			{
				Name:   "repl",
				Usage:  "compile statements interactively against the module",
				Flags:  []cli.Flag{importFlag},
				Action: replCommand,
			},
		},
	}
	app.Run(os.Args)
}

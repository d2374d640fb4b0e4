// Package run implements the main logic for the qmockgen tool in a testable way.
package run

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/toejough/go-reorder"
)

// FileSystem is the single write the generator performs, split out for testing.
type FileSystem interface {
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// cliArgs defines the command-line arguments for the generator.
type cliArgs struct {
	Interface string `arg:"positional,required" help:"interface to wrap (e.g. Store)"`
	Name      string `arg:"--name"              help:"name for the generated facade (defaults to <Interface>Double)"`
}

// Run executes the qmockgen tool logic. It parses the package containing the
// `//go:generate` directive, finds the named interface, and writes a typed
// facade struct that routes every method through a *qmock.Double. It expects
// the GOPACKAGE and GOFILE environment variables that go generate sets.
func Run(args []string, getEnv func(string) string, fileSys FileSystem, out io.Writer) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return err
	}

	pkgName := getEnv("GOPACKAGE")
	goFile := getEnv("GOFILE")

	dir := filepath.Dir(goFile)
	if dir == "" {
		dir = "."
	}

	iface, err := findInterface(dir, parsed.Interface)
	if err != nil {
		return err
	}

	facadeName := parsed.Name
	if facadeName == "" {
		facadeName = parsed.Interface + "Double"
	}

	code := generateFacade(pkgName, facadeName, parsed.Interface, iface)

	return writeFacade(code, facadeName, pkgName, goFile, fileSys, out)
}

// parseArgs parses command-line arguments into cliArgs.
func parseArgs(args []string) (cliArgs, error) {
	var parsed cliArgs

	parser, err := arg.NewParser(arg.Config{}, &parsed)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to create argument parser: %w", err)
	}

	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}

	err = parser.Parse(cmdArgs)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to parse arguments: %w", err)
	}

	return parsed, nil
}

// writeFacade writes the generated code to generated_<facadeName>.go,
// reordering declarations first. Generating from a test file (blackbox
// package xxx_test or whitebox xxx_test.go) appends _test to the filename so
// the facade stays out of the production build.
func writeFacade(
	code string, facadeName string, pkgName string, goFile string, fileSys FileSystem, out io.Writer,
) error {
	const generatedFilePermissions = 0o600

	filename := "generated_" + facadeName

	isTestFile := strings.HasSuffix(pkgName, "_test") || strings.HasSuffix(goFile, "_test.go")
	if isTestFile && !strings.HasSuffix(facadeName, "_test") {
		filename = "generated_" + strings.TrimSuffix(facadeName, ".go") + "_test.go"
	} else if !strings.HasSuffix(filename, ".go") {
		filename += ".go"
	}

	reordered, err := reorder.Source(code)
	if err != nil {
		// If reordering fails, log but continue with original code
		_, _ = fmt.Fprintf(out, "Warning: failed to reorder %s: %v\n", filename, err)

		reordered = code
	}

	err = fileSys.WriteFile(filename, []byte(reordered), generatedFilePermissions)
	if err != nil {
		return fmt.Errorf("error writing %s: %w", filename, err)
	}

	_, _ = fmt.Fprintf(out, "%s written successfully.\n", filename)

	return nil
}

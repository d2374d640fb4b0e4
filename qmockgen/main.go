// qmockgen generates typed facades over a qmock.Double.
// To use it, install it with `go install github.com/toejough/qmock/qmockgen@latest`
// and in your test files, add a `//go:generate qmockgen <interface>` comment. By default the generated
// facade is named <Interface>Double; add a `--name <facadename>` flag to choose another. The facade is
// written to generated_<facadename>.go (or generated_<facadename>_test.go when generating from a test
// file), in the same package as the file containing the `//go:generate` comment.
package main

import (
	"fmt"
	"os"

	"github.com/toejough/qmock/qmockgen/run"
)

func main() {
	if os.Args == nil {
		return
	}

	err := run.Run(os.Args, os.Getenv, &realFileSystem{}, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// realFileSystem implements run.FileSystem using the os package.
type realFileSystem struct{}

// WriteFile writes data to the file named by name.
func (fs *realFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	err := os.WriteFile(name, data, perm)
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", name, err)
	}

	return nil
}

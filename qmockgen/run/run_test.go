package run_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toejough/qmock/qmockgen/run"
)

// fakeFS captures the single file write the generator performs.
type fakeFS struct {
	name string
	data []byte
}

func (f *fakeFS) WriteFile(name string, data []byte, _ os.FileMode) error {
	f.name = name
	f.data = data

	return nil
}

func writeFixture(t *testing.T, name, src string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	return path
}

func envFor(pkg, goFile string) func(string) string {
	return func(key string) string {
		switch key {
		case "GOPACKAGE":
			return pkg
		case "GOFILE":
			return goFile
		default:
			return ""
		}
	}
}

func TestRun_GeneratesFacade(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "store.go", `package store

import "context"

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(key string, value []byte) error
	Close()
	Keys() []string
	Scan(prefix string, limit int) ([]string, int, error)
	Append(vals ...int) error
}
`)

	fs := &fakeFS{}

	var out bytes.Buffer

	err := run.Run([]string{"qmockgen", "Store"}, envFor("store", path), fs, &out)
	require.NoError(t, err)

	assert.Equal(t, "generated_StoreDouble.go", fs.name)
	assert.Contains(t, out.String(), "written successfully")

	code := string(fs.data)

	assert.Contains(t, code, "// Code generated by qmockgen. DO NOT EDIT.")
	assert.Contains(t, code, "package store")
	assert.Contains(t, code, `"github.com/toejough/qmock"`)
	assert.Contains(t, code, `"context"`)
	assert.Contains(t, code, "type StoreDouble struct {")
	assert.Contains(t, code, "Double *qmock.Double")
	assert.Contains(t, code, "func NewStoreDouble(double *qmock.Double) *StoreDouble {")
}

func TestRun_ErrorLastResultRoutesCallErrors(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "store.go", `package store

type Store interface {
	Get(key string) (string, error)
}
`)

	fs := &fakeFS{}
	require.NoError(t, run.Run([]string{"qmockgen", "Store"}, envFor("store", path), fs, &bytes.Buffer{}))

	code := string(fs.data)

	assert.Contains(t, code, "func (d *StoreDouble) Get(arg0 string) (string, error) {")
	assert.Contains(t, code, `v, err := d.Double.Invoke("Get", arg0)`)
	assert.Contains(t, code, "return r0, err")
	assert.Contains(t, code, "r0 = v.(string)")
	assert.Contains(t, code, "return r0, nil")
	assert.NotContains(t, code, "panic(err)")
}

func TestRun_NoErrorResultPanicsOnVerificationFailure(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "counter.go", `package counter

type Counter interface {
	Next() int
	Reset()
}
`)

	fs := &fakeFS{}
	require.NoError(t, run.Run([]string{"qmockgen", "Counter"}, envFor("counter", path), fs, &bytes.Buffer{}))

	code := string(fs.data)

	assert.Contains(t, code, "func (d *CounterDouble) Next() int {")
	assert.Contains(t, code, "func (d *CounterDouble) Reset() {")
	assert.Contains(t, code, "panic(err)")
	assert.Contains(t, code, "r0 = v.(int)")
}

func TestRun_MultipleResultsUnpackFromSlice(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "store.go", `package store

type Scanner interface {
	Scan(prefix string) ([]string, int, error)
}
`)

	fs := &fakeFS{}
	require.NoError(t, run.Run([]string{"qmockgen", "Scanner"}, envFor("store", path), fs, &bytes.Buffer{}))

	code := string(fs.data)

	assert.Contains(t, code, "func (d *ScannerDouble) Scan(arg0 string) ([]string, int, error) {")
	assert.Contains(t, code, "results := v.([]any)")
	assert.Contains(t, code, "r0 = results[0].([]string)")
	assert.Contains(t, code, "r1 = results[1].(int)")
	assert.Contains(t, code, "return r0, r1, nil")
}

func TestRun_VariadicParametersSpreadIntoTheCall(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "sink.go", `package sink

type Sink interface {
	Write(prefix string, vals ...int) error
}
`)

	fs := &fakeFS{}
	require.NoError(t, run.Run([]string{"qmockgen", "Sink"}, envFor("sink", path), fs, &bytes.Buffer{}))

	code := string(fs.data)

	assert.Contains(t, code, "func (d *SinkDouble) Write(arg0 string, arg1 ...int) error {")
	assert.Contains(t, code, "args := []any{arg0}")
	assert.Contains(t, code, "for _, a := range arg1 {")
	assert.Contains(t, code, `d.Double.Invoke("Write", args...)`)
}

func TestRun_EmbeddedLocalInterfacesFlatten(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "store.go", `package store

type Reader interface {
	Read(key string) (string, error)
}

type Writer interface {
	Write(key, value string) error
}

type ReadWriter interface {
	Reader
	Writer
}
`)

	fs := &fakeFS{}
	require.NoError(t, run.Run([]string{"qmockgen", "ReadWriter"}, envFor("store", path), fs, &bytes.Buffer{}))

	code := string(fs.data)

	assert.Contains(t, code, "func (d *ReadWriterDouble) Read(arg0 string) (string, error) {")
	assert.Contains(t, code, "func (d *ReadWriterDouble) Write(arg0 string, arg1 string) error {")
}

func TestRun_NameFlagOverridesTheDefault(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "store.go", `package store

type Store interface {
	Close()
}
`)

	fs := &fakeFS{}
	require.NoError(t,
		run.Run([]string{"qmockgen", "Store", "--name", "FakeStore"}, envFor("store", path), fs, &bytes.Buffer{}))

	assert.Equal(t, "generated_FakeStore.go", fs.name)
	assert.Contains(t, string(fs.data), "type FakeStore struct {")
}

func TestRun_TestFileSourceGetsTestSuffix(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "store_test.go", `package store

type Store interface {
	Close()
}
`)

	fs := &fakeFS{}
	require.NoError(t, run.Run([]string{"qmockgen", "Store"}, envFor("store", path), fs, &bytes.Buffer{}))

	assert.Equal(t, "generated_StoreDouble_test.go", fs.name)
}

func TestRun_BlackboxTestPackageGetsTestSuffix(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "store.go", `package store

type Store interface {
	Close()
}
`)

	fs := &fakeFS{}
	require.NoError(t, run.Run([]string{"qmockgen", "Store"}, envFor("store_test", path), fs, &bytes.Buffer{}))

	assert.Equal(t, "generated_StoreDouble_test.go", fs.name)
}

func TestRun_MissingInterface(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "store.go", `package store

type Store interface {
	Close()
}
`)

	err := run.Run([]string{"qmockgen", "Missing"}, envFor("store", path), &fakeFS{}, &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")
}

func TestRun_GenericInterfacesAreRejected(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "store.go", `package store

type Store[T any] interface {
	Get(key string) (T, error)
}
`)

	err := run.Run([]string{"qmockgen", "Store"}, envFor("store", path), &fakeFS{}, &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generic")
}

func TestRun_CrossPackageEmbedsAreRejected(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "store.go", `package store

import "io"

type Store interface {
	io.Closer
	Get(key string) (string, error)
}
`)

	err := run.Run([]string{"qmockgen", "Store"}, envFor("store", path), &fakeFS{}, &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "io.Closer")
}

func TestRun_MissingInterfaceArgument(t *testing.T) {
	t.Parallel()

	err := run.Run([]string{"qmockgen"}, envFor("store", "store.go"), &fakeFS{}, &bytes.Buffer{})

	require.Error(t, err)
}

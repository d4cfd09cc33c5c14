package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danforbes/dots/internal/compiler"
	"github.com/danforbes/dots/internal/ir"
	"github.com/danforbes/dots/internal/store"
)

// readInput loads a metadata blob. arg is a file path, "-" for stdin, or a
// literal 0x hex string. File and stdin contents may be raw SCALE bytes,
// 0x hex text, or a JSON-RPC response whose result is 0x hex.
func readInput(arg string, stdin io.Reader) ([]byte, error) {
	var data []byte
	switch {
	case arg == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		data = b
	case strings.HasPrefix(arg, "0x"):
		data = []byte(arg)
	default:
		b, err := os.ReadFile(arg)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return unwrapInput(data)
}

// readDocument reads a text document from a file or, for "-", stdin.
func readDocument(arg string, cmd *cobra.Command) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(arg)
}

// unwrapInput turns hex text and JSON-RPC responses into raw bytes.
// Anything else is returned unchanged.
func unwrapInput(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)

	if bytes.HasPrefix(trimmed, []byte("{")) {
		var rpc struct {
			Result *string `json:"result"`
		}
		if err := json.Unmarshal(trimmed, &rpc); err == nil && rpc.Result != nil {
			trimmed = []byte(strings.TrimSpace(*rpc.Result))
		}
	}

	if bytes.HasPrefix(trimmed, []byte("0x")) {
		raw, err := ir.ParseBytes(string(trimmed))
		if err != nil {
			return nil, err
		}
		return raw, nil
	}
	return data, nil
}

// source resolves a metadata argument, consulting the cache when a key is
// given.
type source struct {
	opts *RootOptions
	cmd  *cobra.Command
	arg  string
	key  string
}

// load returns the normalized metadata and the size of the raw input
// (0 on a cache hit). Input and cache failures are *loadError; decode
// errors are returned as is.
func (s source) load(ctx context.Context) (*ir.Metadata, int, error) {
	var st *store.Store
	if s.opts.Cache != "" && s.key != "" {
		opened, err := store.Open(s.opts.Cache)
		if err != nil {
			return nil, 0, &loadError{ErrCodeCache, "open cache", err}
		}
		defer opened.Close()
		st = opened

		md, ok, err := st.Get(ctx, s.key)
		if err != nil {
			return nil, 0, &loadError{ErrCodeCache, "read cache", err}
		}
		if ok {
			slog.Debug("cache hit", "key", s.key)
			return md, 0, nil
		}
	}

	raw, err := readInput(s.arg, s.cmd.InOrStdin())
	if err != nil {
		return nil, 0, &loadError{ErrCodeInput, "read input", err}
	}

	md, err := compiler.DecodeMetadataWithOptions(raw, compiler.Options{Parallelism: s.opts.Parallelism})
	if err != nil {
		return nil, len(raw), err
	}

	if st != nil {
		entry, err := st.Put(ctx, s.key, len(raw), md)
		if err != nil {
			return nil, len(raw), &loadError{ErrCodeCache, "write cache", err}
		}
		slog.Debug("cached metadata", "key", entry.Key, "hash", entry.Hash)
	}
	return md, len(raw), nil
}

// loadError is an input or cache failure, as opposed to a decode error.
type loadError struct {
	code    string
	message string
	err     error
}

func (e *loadError) Error() string { return e.message + ": " + e.err.Error() }

func (e *loadError) Unwrap() error { return e.err }

// loadOrFail is load with errors written through f.
func (s source) loadOrFail(ctx context.Context, f *OutputFormatter) (*ir.Metadata, int, error) {
	md, size, err := s.load(ctx)
	if err == nil {
		return md, size, nil
	}
	var le *loadError
	if errors.As(err, &le) {
		return nil, size, f.Fail(ExitCommandError, le.code, le.message, le.err)
	}
	return nil, size, f.Fail(ExitFailure, ErrCodeGeneric, "decode failed", err)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting structured output
		Verbose:   opts.Verbose,
	}
}

package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// record is one line of an export: a file and its decoded state.
type record struct {
	Adapter string      `json:"adapter"`
	Path    string      `json:"path"`
	State   types.State `json:"state"`
}

func (a *app) newExportCmd() *cobra.Command {
	var adapter, prefix, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export decoded files as JSON lines",
		Long: "Decode every listed file and write one JSON object per line with its\n" +
			"adapter, path and state. With --output the file is replaced atomically.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			sys, err := a.openSystem(cmd)
			if err != nil {
				return err
			}
			defer func() { err = closeWith(sys, err) }()

			files, err := sys.List(cmd.Context(), func(p string) bool {
				return strings.HasPrefix(p, prefix)
			})
			if err != nil {
				return err
			}

			var records []json.RawMessage
			for _, f := range files {
				if adapter != "" && f.Adapter().Name() != adapter {
					continue
				}
				state, err := sys.Read(cmd.Context(), f)
				if err != nil {
					return err
				}
				line, err := json.Marshal(record{Adapter: f.Adapter().Name(), Path: f.Path(), State: state})
				if err != nil {
					return fmt.Errorf("encode %s: %w", f, err)
				}
				records = append(records, line)
			}

			if output == "" || output == "-" {
				return writeRecords(cmd.OutOrStdout(), records)
			}
			return writeJSONL(output, records)
		},
	}
	cmd.Flags().StringVar(&adapter, "adapter", "", "only export files on this adapter")
	cmd.Flags().StringVar(&prefix, "prefix", "", "only export paths with this prefix")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func (a *app) newImportCmd() *cobra.Command {
	var adapter string
	cmd := &cobra.Command{
		Use:   "import [file|-]",
		Short: "Write files from JSON lines produced by export",
		Long: "Read JSON lines produced by export and write each state back. Malformed\n" +
			"lines are skipped. --adapter redirects every record to one adapter.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}
			records, err := readJSONL(in)
			if err != nil {
				return err
			}

			sys, err := a.openSystem(cmd)
			if err != nil {
				return err
			}
			defer func() { err = closeWith(sys, err) }()

			imported := 0
			for _, raw := range records {
				rec, ok := decodeRecord(raw)
				if !ok {
					continue
				}
				if adapter != "" {
					rec.Adapter = adapter
				}
				dest, err := sys.GetAdapter(rec.Adapter)
				if err != nil {
					return err
				}
				if err := sys.Write(cmd.Context(), types.NewFile(dest, rec.Path), rec.State); err != nil {
					return err
				}
				imported++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d files\n", imported)
			return nil
		},
	}
	cmd.Flags().StringVar(&adapter, "adapter", "", "write every record to this adapter")
	return cmd
}

// decodeRecord parses one exported line. Integers come back as int64 and
// other numbers as float64.
func decodeRecord(raw json.RawMessage) (record, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec struct {
		Adapter string         `json:"adapter"`
		Path    string         `json:"path"`
		State   map[string]any `json:"state"`
	}
	if err := dec.Decode(&rec); err != nil || rec.Path == "" {
		return record{}, false
	}
	return record{Adapter: rec.Adapter, Path: rec.Path, State: types.State(numbers(rec.State).(map[string]any))}, true
}

// numbers replaces json.Number values with int64 or float64.
func numbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = numbers(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = numbers(e)
		}
		return out
	}
	return v
}

// readJSONL returns each non-empty, valid JSON line of r. Malformed lines
// are skipped.
func readJSONL(r io.Reader) ([]json.RawMessage, error) {
	var records []json.RawMessage
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		records = append(records, json.RawMessage(bytes.Clone(line)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning input: %w", err)
	}
	return records, nil
}

// writeRecords writes one record per line.
func writeRecords(w io.Writer, records []json.RawMessage) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := bw.Write(rec); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	return bw.Flush()
}

// writeJSONL atomically replaces path with records using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(format string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf(format, err)
	}
	if err := writeRecords(tmp, records); err != nil {
		return fail("%w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

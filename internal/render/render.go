// Package render prints snapshots and analysis results.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/Guliveer/vitalis/analyst/internal/analysis"
	"github.com/Guliveer/vitalis/analyst/internal/models"
)

// Report is the machine-readable form of one run.
type Report struct {
	Snapshot *models.Snapshot `json:"snapshot" yaml:"snapshot"`
	Result   *analysis.Result `json:"result,omitempty" yaml:"result,omitempty"`
}

// Options controls rendering.
type Options struct {
	Format string // text, json or yaml
	Raw    bool   // include the provider's raw response
}

// Write renders a run to w. A nil result means the run was collect-only, in
// which case only the snapshot is printed.
func Write(w io.Writer, snap *models.Snapshot, result *analysis.Result, opts Options) error {
	if result != nil && !opts.Raw && result.Raw != nil {
		trimmed := *result
		trimmed.Raw = nil
		result = &trimmed
	}

	switch opts.Format {
	case "json":
		if result == nil {
			return writeSnapshotJSON(w, snap)
		}
		output, err := json.MarshalIndent(Report{Snapshot: snap, Result: result}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(output))
		return err
	case "yaml":
		var doc any = Report{Snapshot: snap, Result: result}
		if result == nil {
			doc = snap
		}
		output, err := yaml.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, string(output))
		return err
	default:
		if result == nil {
			return writeSnapshotJSON(w, snap)
		}
		return writeHuman(w, snap, result)
	}
}

func writeSnapshotJSON(w io.Writer, snap *models.Snapshot) error {
	data, err := snap.JSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeHuman(w io.Writer, snap *models.Snapshot, result *analysis.Result) error {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)

	if failed := snap.Failed(); len(failed) > 0 {
		color.New(color.FgYellow).Fprintf(w, "Categories not collected: %v\n\n", failed)
	}

	if result.Failure != nil {
		failureColor(result.Failure.Kind).Fprintf(w, "Analysis failed [%s]\n", result.Failure.Kind)
		fmt.Fprintf(w, "   %s\n", result.Failure.Message)
		if result.Failure.StatusCode != 0 {
			fmt.Fprintf(w, "   HTTP status: %d\n", result.Failure.StatusCode)
		}
		fmt.Fprintf(w, "   Request ID: %s\n", color.HiBlackString(result.RequestID))
	} else {
		green.Fprintln(w, "Analysis")
		fmt.Fprintln(w, result.Text)
	}

	if result.Raw != nil {
		raw, err := json.MarshalIndent(result.Raw, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w)
		cyan.Fprintln(w, "Raw response")
		fmt.Fprintln(w, string(raw))
	}
	return nil
}

func failureColor(kind analysis.FailureKind) *color.Color {
	switch kind {
	case analysis.KindTimeout:
		return color.New(color.FgYellow, color.Bold)
	case analysis.KindNetworkError:
		return color.New(color.FgMagenta, color.Bold)
	case analysis.KindProviderError:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgRed)
	}
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"habitat-nav/models"
	"habitat-nav/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	errNoRoute      = errors.New("no route between start and end")
	errNotCertified = errors.New("route has segments narrower than the minimum path width")
)

func checkCmd() *cobra.Command {
	var (
		file   string
		asJSON bool
	)
	c := &cobra.Command{
		Use:   "check",
		Short: "Certify a single route described in a YAML query file",
		Long: `Reads a query (start, end, boundary, obstacles) from YAML, plans a route
and prints the corridor-width report. Exits non-zero when no route exists or
the route does not meet the minimum path width.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), file, asJSON)
		},
	}
	c.Flags().StringVarP(&file, "file", "f", "", "query YAML file")
	c.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	_ = c.MarkFlagRequired("file")
	return c
}

func runCheck(w io.Writer, path string, asJSON bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read query file: %w", err)
	}
	var q services.Query
	if err := yaml.Unmarshal(raw, &q); err != nil {
		return fmt.Errorf("parse query file %s: %w", path, err)
	}

	navigator := services.NewNavigator(services.LoadConfig(), nil, zap.NewNop())
	res, evalErr := navigator.Evaluate(q)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		printReport(w, res)
	}

	switch {
	case evalErr != nil:
		return evalErr
	case !res.Found():
		return errNoRoute
	case !res.Report.Passes:
		return errNotCertified
	}
	return nil
}

func printReport(w io.Writer, res *services.Result) {
	fmt.Fprintf(w, "query      %s\n", res.QueryID)
	fmt.Fprintf(w, "result     %s\n", res.Kind)
	if res.Error != "" {
		fmt.Fprintf(w, "error      %s\n", res.Error)
	}
	if res.Report == nil {
		return
	}

	r := res.Report
	fmt.Fprintf(w, "waypoints  %d (grid %.2f m)\n", len(res.Path), res.GridResolution)
	fmt.Fprintf(w, "distance   %.2f m over %d segments\n", r.TotalDistance, r.TotalSegments)
	fmt.Fprintf(w, "min width  %.2f m (required %.2f m)\n", r.MinWidth, models.MinPathWidth)
	fmt.Fprintf(w, "mean width %.2f m\n", r.MeanWidth)
	for i, seg := range r.Segments {
		if seg.Passes {
			continue
		}
		fmt.Fprintf(w, "  narrow #%d (%.2f, %.2f) -> (%.2f, %.2f) width %.2f m\n",
			i, seg.Start.X, seg.Start.Z, seg.End.X, seg.End.Z, seg.Clearance)
	}

	verdict := "PASS"
	if !r.Passes {
		verdict = "FAIL"
	}
	fmt.Fprintf(w, "verdict    %s\n", verdict)
}

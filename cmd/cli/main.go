package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	baseURL string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &client{}

	rootCmd := &cobra.Command{
		Use:           "finledger-cli",
		Short:         "finledger CLI tool",
		Long:          `A command line interface for uploading transactions to and querying a finledger server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&c.baseURL, "url", "http://localhost:8080", "Base URL of the finledger API")
	rootCmd.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(
		ingestCmd(c),
		resolveCmd(c),
		dashboardCmd(c),
		templateCmd(c),
		resetCmd(c),
		healthCmd(c),
	)

	return rootCmd
}

func ingestCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest FILE",
		Short: "Upload an .xlsx or .csv file of transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, contentType, err := multipartFile(args[0])
			if err != nil {
				return err
			}

			var result struct {
				BatchID       string            `json:"batch_id"`
				AcceptedCount int               `json:"accepted_count"`
				Conflicts     []json.RawMessage `json:"conflicts"`
			}
			if err := c.do(cmd, http.MethodPost, "/api/v1/ingest/upload", contentType, body, &result); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Accepted: %d\n", result.AcceptedCount)
			if len(result.Conflicts) > 0 {
				fmt.Fprintf(out, "Conflicts: %d (batch %s)\n", len(result.Conflicts), result.BatchID)
				fmt.Fprintf(out, "Resolve with: finledger-cli resolve %s --decision overwrite|discard\n", result.BatchID)
			}
			return nil
		},
	}
}

func resolveCmd(c *client) *cobra.Command {
	var decision string

	cmd := &cobra.Command{
		Use:   "resolve BATCH_ID",
		Short: "Overwrite or discard the conflicting rows of a parked batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := json.Marshal(map[string]string{"decision": decision})
			if err != nil {
				return err
			}

			path := "/api/v1/batches/" + url.PathEscape(args[0]) + "/resolve"
			if err := c.do(cmd, http.MethodPost, path, "application/json", bytes.NewReader(payload), nil); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Batch %s resolved: %s\n", args[0], decision)
			return nil
		},
	}

	cmd.Flags().StringVar(&decision, "decision", "", "overwrite or discard")
	_ = cmd.MarkFlagRequired("decision")

	return cmd
}

type dashboardResult struct {
	Granularity  string `json:"granularity"`
	Transactions []struct {
		FlowKind       string `json:"flow_kind"`
		Amount         string `json:"amount"`
		RecurrenceKind string `json:"recurrence_kind"`
		OccurredOn     string `json:"occurred_on"`
		Title          string `json:"title"`
	} `json:"transactions"`
	Summary    map[string]json.RawMessage `json:"summary"`
	Series     []point                    `json:"series"`
	Projection []projectionPoint          `json:"projection"`
}

type point struct {
	Start  string `json:"start"`
	Amount string `json:"amount"`
}

type projectionPoint struct {
	Start  string  `json:"start"`
	Amount float64 `json:"amount"`
}

func dashboardCmd(c *client) *cobra.Command {
	var (
		from, to, granularity      string
		flowKinds, recurrenceKinds []string
		horizon                    int
		asJSON, showTransactions   bool
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals, the bucketed series and the projection",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setIf(q, "from", from)
			setIf(q, "to", to)
			setIf(q, "granularity", granularity)
			for _, k := range flowKinds {
				q.Add("flow_kind", k)
			}
			for _, k := range recurrenceKinds {
				q.Add("recurrence_kind", k)
			}
			if horizon > 0 {
				q.Set("horizon", fmt.Sprint(horizon))
			}

			path := "/api/v1/dashboard"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			var raw json.RawMessage
			if err := c.do(cmd, http.MethodGet, path, "", nil, &raw); err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), raw)
			}

			var result dashboardResult
			if err := json.Unmarshal(raw, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			printDashboard(cmd.OutOrStdout(), &result, showTransactions)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Latest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&granularity, "granularity", "", "day, month, quarter or year")
	cmd.Flags().StringSliceVar(&flowKinds, "flow-kind", nil, "Flow kinds to include")
	cmd.Flags().StringSliceVar(&recurrenceKinds, "recurrence-kind", nil, "Recurrence kinds to include")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "Number of projected buckets")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON response")
	cmd.Flags().BoolVar(&showTransactions, "transactions", false, "List the matching transactions")

	return cmd
}

func templateCmd(c *client) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Download a blank upload template",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = "transactions_template." + format
			}

			var buf bytes.Buffer
			if err := c.do(cmd, http.MethodGet, "/api/v1/template?format="+url.QueryEscape(format), "", nil, &buf); err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write template: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "xlsx", "xlsx or csv")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default transactions_template.<format>)")

	return cmd
}

func resetCmd(c *client) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to reset the ledger without --yes")
			}

			payload := strings.NewReader(`{"confirm":true}`)
			if err := c.do(cmd, http.MethodPost, "/api/v1/ledger/reset", "application/json", payload, nil); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Ledger reset")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")

	return cmd
}

func healthCmd(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw json.RawMessage
			if err := c.do(cmd, http.MethodGet, "/ready", "", nil, &raw); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), raw)
		},
	}
}

// do sends one request. A *bytes.Buffer target receives the raw body; any
// other non-nil target is decoded as JSON.
func (c *client) do(cmd *cobra.Command, method, path, contentType string, body io.Reader, target any) error {
	req, err := http.NewRequestWithContext(cmd.Context(), method, strings.TrimRight(c.baseURL, "/")+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	httpClient := &http.Client{Timeout: c.timeout}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return fmt.Errorf("request failed (status %d): %s: %s", resp.StatusCode, apiErr.Error, apiErr.Message)
			}
			return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(data), 200))
	}

	switch t := target.(type) {
	case nil:
		return nil
	case *bytes.Buffer:
		_, err := t.Write(data)
		return err
	default:
		if err := json.Unmarshal(data, target); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		return nil
	}
}

func multipartFile(path string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

func printDashboard(out io.Writer, d *dashboardResult, showTransactions bool) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "SUMMARY")
	for _, key := range []string{"total_income", "total_expense", "net", "grand_total", "count", "most_frequent_flow_kind"} {
		if v, ok := d.Summary[key]; ok {
			fmt.Fprintf(tw, "  %s\t%s\n", key, strings.Trim(string(v), `"`))
		}
	}

	fmt.Fprintf(tw, "\nSERIES (%s)\n", d.Granularity)
	for _, p := range d.Series {
		fmt.Fprintf(tw, "  %s\t%s\n", p.Start, p.Amount)
	}

	if len(d.Projection) > 0 {
		fmt.Fprintln(tw, "\nPROJECTION")
		for _, p := range d.Projection {
			fmt.Fprintf(tw, "  %s\t%.2f\n", p.Start, p.Amount)
		}
	}

	if showTransactions {
		fmt.Fprintln(tw, "\nTRANSACTIONS")
		for _, t := range d.Transactions {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", t.OccurredOn, t.FlowKind, t.RecurrenceKind, truncate(t.Title, 30), t.Amount)
		}
	}
}

func printJSON(out io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := out.Write(buf.Bytes())
	return err
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

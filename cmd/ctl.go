package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"keysim/internal/protocol"
)

const defaultControlAddr = "127.0.0.1:8765"

type ctlOptions struct {
	addr    string
	token   string
	timeout time.Duration
}

func newCtlCmd() *cobra.Command {
	o := &ctlOptions{}
	cmd := &cobra.Command{
		Use:   "ctl pause|resume|stop|status",
		Short: "Control a run started with --listen",
		Long: `Control a run started with 'keysim run --listen'.

Examples:
  keysim ctl status
  keysim ctl pause --addr 127.0.0.1:8765 --token s3cret`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{protocol.ActionPause, protocol.ActionResume, protocol.ActionStop, "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCtl(cmd, o, args[0])
		},
	}

	cmd.Flags().StringVar(&o.addr, "addr", defaultControlAddr, "control server address")
	cmd.Flags().StringVar(&o.token, "token", "", "bearer token")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 5*time.Second, "request timeout")
	return cmd
}

func runCtl(cmd *cobra.Command, o *ctlOptions, action string) error {
	client := &http.Client{Timeout: o.timeout}

	method := http.MethodPost
	if action == "status" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(cmd.Context(), method, baseURL(o.addr)+"/api/"+action, nil)
	if err != nil {
		return err
	}
	if o.token != "" {
		req.Header.Set("Authorization", "Bearer "+o.token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("contacting %s: %w", o.addr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: server returned %s", method, req.URL.Path, resp.Status)
	}

	out := cmd.OutOrStdout()
	if action == "status" {
		var status protocol.StatusPayload
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			return fmt.Errorf("decoding status: %w", err)
		}
		fmt.Fprintf(out, "State: %s (%d/%d characters)\n", status.State, status.Done, status.Total)
		return nil
	}

	var result map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	fmt.Fprintf(out, "%s: %s (state %s)\n", action, result["status"], result["state"])
	return nil
}

// baseURL accepts "host:port" or a full http(s) URL
func baseURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimSuffix(addr, "/")
	}
	return "http://" + addr
}

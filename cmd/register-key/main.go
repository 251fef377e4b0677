// Command register-key asks a running Mailcast server to provision a tenant
// and prints the issued API key. The server owns the key registry and the
// tenant directory, so registration always goes through its admin route.
//
// With --hash-admin-token it instead prints the argon2id hash to put in
// ADMIN_TOKEN_HASH and exits without contacting a server.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/mailcast/mailcast/internal/auth"
	"github.com/mailcast/mailcast/internal/handler/dto"
)

const registerPath = "/api/admin/register_new_key"

type output struct {
	APIKey      string `json:"api_key"`
	SenderEmail string `json:"sender_email"`
	Server      string `json:"server"`
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, nil); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, client *http.Client) error {
	var (
		senderEmail    string
		senderPassword string
		format         string
		serverURL      string
		adminToken     string
		hashToken      string
		timeout        time.Duration
	)

	flagSet := pflag.NewFlagSet("register-key", pflag.ContinueOnError)
	flagSet.StringVar(&senderEmail, "sender-email", "", "sender address for the new tenant")
	flagSet.StringVar(&senderPassword, "sender-password", "", "sender credential for the new tenant")
	flagSet.StringVar(&format, "format", "plain", "output format: plain or json")
	flagSet.StringVar(&serverURL, "server", envOr("MAILCAST_URL", "http://localhost:8080"), "base URL of the running server")
	flagSet.StringVar(&adminToken, "admin-token", os.Getenv("MAILCAST_ADMIN_TOKEN"), "admin token, when the server sets ADMIN_TOKEN_HASH")
	flagSet.DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	flagSet.StringVar(&hashToken, "hash-admin-token", "", "print the argon2id hash of this admin token and exit")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return fmt.Errorf("unexpected argument: %s", extra[0])
	}
	if format != "plain" && format != "json" {
		return fmt.Errorf("unsupported format %q", format)
	}

	if hashToken != "" {
		hash, err := auth.HashToken(hashToken)
		if err != nil {
			return fmt.Errorf("hash admin token: %w", err)
		}
		fmt.Fprintln(stdout, hash)
		return nil
	}

	if strings.TrimSpace(senderEmail) == "" || strings.TrimSpace(senderPassword) == "" {
		return errors.New("--sender-email and --sender-password are required")
	}

	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	key, err := register(ctx, client, serverURL, adminToken, dto.RegisterKeyRequest{
		SenderEmail:    senderEmail,
		SenderPassword: senderPassword,
	})
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(output{APIKey: key, SenderEmail: senderEmail, Server: serverURL})
	}

	fmt.Fprintf(stdout, "API key: %s\n", key)
	fmt.Fprintf(stdout, "Sender: %s\n", senderEmail)
	return nil
}

// register posts the sender identity to the admin route and returns the key.
func register(ctx context.Context, client *http.Client, serverURL, adminToken string, body dto.RegisterKeyRequest) (string, error) {
	endpoint, err := url.JoinPath(serverURL, registerPath)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if adminToken != "" {
		req.Header.Set("X-Admin-Token", adminToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("register key: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var apiErr dto.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("register key: %s (%s)", apiErr.Error.Message, apiErr.Error.Code)
		}
		return "", fmt.Errorf("register key: unexpected status %d", resp.StatusCode)
	}

	var out dto.RegisterKeyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.APIKey == "" {
		return "", errors.New("register key: empty key in response")
	}
	return out.APIKey, nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

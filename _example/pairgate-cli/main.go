package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
)

var serverURL string

func init() {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	serverURL = getEnv("SERVER_URL", "http://localhost:8080")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type startResponse struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	Interval                int    `json:"interval"`
	ExpiresIn               int    `json:"expires_in"`
}

type pollResponse struct {
	Status    string `json:"status"`
	AppToken  string `json:"app_token"`
	ExpiresIn int    `json:"expires_in"`
	User      struct {
		ID string `json:"id"`
	} `json:"user"`
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
	Code6     string `json:"code6"`
	TTL       int    `json:"ttl"`
}

func main() {
	fmt.Printf("=== PairGate Device Pairing Demo ===\n")
	ctx := context.Background()

	// Step 1: Start pairing
	fmt.Println("Step 1: Requesting device code...")
	var start startResponse
	if err := call(ctx, http.MethodPost, "/device/start", "", nil, &start); err != nil {
		fmt.Printf("Error requesting device code: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n----------------------------------------\n")
	fmt.Printf("Please open this link to approve:\n%s\n", start.VerificationURIComplete)
	fmt.Printf("\nOr manually visit: %s\n", start.VerificationURI)
	fmt.Printf("And enter code: %s\n", start.UserCode)
	fmt.Printf("----------------------------------------\n\n")

	// Step 2: Poll until a human approves
	fmt.Println("Step 2: Waiting for approval...")
	result, err := pollWithProgress(ctx, start)
	if err != nil {
		fmt.Printf("\nError: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n========================================\n")
	fmt.Printf("Paired as user: %s\n", result.User.ID)
	fmt.Printf("App Token: %s...\n", result.AppToken[:min(50, len(result.AppToken))])
	fmt.Printf("Expires In: %s\n", time.Duration(result.ExpiresIn)*time.Second)
	fmt.Printf("========================================\n")

	// Step 3: Open a remote session as the host
	fmt.Println("\nStep 3: Creating a remote session...")
	var session sessionResponse
	err = call(ctx, http.MethodPost, "/sessions/create", result.AppToken,
		map[string]string{"role": "host"}, &session)
	if err != nil {
		fmt.Printf("Session creation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Share this code with the controller: %s (valid for %ds)\n", session.Code6, session.TTL)
}

// pollWithProgress polls at the server's interval and prints a dot per poll.
func pollWithProgress(ctx context.Context, start startResponse) (*pollResponse, error) {
	interval := time.Duration(max(start.Interval, 1)) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	body := map[string]string{"device_code": start.DeviceCode}
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		var resp pollResponse
		if err := call(ctx, http.MethodPost, "/device/poll", "", body, &resp); err != nil {
			return nil, err
		}
		switch resp.Status {
		case "approved":
			fmt.Println()
			return &resp, nil
		case "pending":
			fmt.Print(".")
		default:
			return nil, fmt.Errorf("pairing ended: %s", resp.Status)
		}
	}
}

func call(ctx context.Context, method, path, token string, in, out any) error {
	var payload bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&payload).Encode(in); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, serverURL+path, &payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return errors.New(errResp.Error + ": " + errResp.ErrorDescription)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

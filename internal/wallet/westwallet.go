// Package wallet implements the deposit-address provisioning boundary
// against a WestWallet-compatible custodial API.
package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/finacore/apiserver/config"
	"github.com/finacore/apiserver/internal/services"
)

const generateAddressPath = "/address/generate"

// Client calls the custodial wallet API. It is constructed once at process
// start and shared; the embedded http.Client handles connection reuse.
type Client struct {
	baseURL    string
	publicKey  string
	privateKey string
	httpClient *http.Client
}

func NewClient(cfg config.WalletConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		publicKey:  cfg.PublicKey,
		privateKey: cfg.PrivateKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type generateAddressRequest struct {
	Currency string `json:"currency"`
}

type generateAddressResponse struct {
	Address string `json:"address"`
	Error   string `json:"error"`
}

// GenerateAddress asks the provider for a fresh deposit address in the
// given currency. An unsupported currency is reported as
// services.ErrCurrencyNotSupported.
func (c *Client) GenerateAddress(ctx context.Context, currency string) (string, error) {
	body, err := json.Marshal(generateAddressRequest{Currency: currency})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generateAddressPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.publicKey)
	req.Header.Set("X-API-SECRET", c.privateKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("wallet api request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded generateAddressResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("wallet api response malformed: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound,
		strings.EqualFold(decoded.Error, "currency_not_found"):
		return "", services.ErrCurrencyNotSupported
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("wallet api returned status %d: %s", resp.StatusCode, decoded.Error)
	case decoded.Address == "":
		return "", errors.New("wallet api returned empty address")
	}
	return decoded.Address, nil
}

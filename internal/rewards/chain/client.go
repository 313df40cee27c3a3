package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ecosphere-community/eco-backend/config"
)

// ErrTxReverted is returned when a confirmed transaction has a failure
// status in its receipt.
var ErrTxReverted = errors.New("transaction reverted")

// Client talks JSON-RPC to the node holding the reward signer account.
// Award calls are serialized through a mutex: one signing account means
// nonce ordering matters under concurrent dispatch.
type Client struct {
	mu       sync.Mutex
	httpc    *http.Client
	rpcURL   string
	contract string
	signer   string

	confirmTimeout time.Duration
	pollInterval   time.Duration
}

func NewClient(cfg config.ChainConfig) *Client {
	return &Client{
		httpc:          &http.Client{Timeout: 15 * time.Second},
		rpcURL:         cfg.RPCURL,
		contract:       cfg.ContractAddress,
		signer:         cfg.SignerAccount,
		confirmTimeout: cfg.ConfirmTimeout,
		pollInterval:   3 * time.Second,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("rpc request failed: %w", err)
	}
	defer resp.Body.Close()

	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return fmt.Errorf("decode rpc response: %w", err)
	}
	if rr.Error != nil {
		return fmt.Errorf("rpc error %d: %s", rr.Error.Code, rr.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(rr.Result, out); err != nil {
			return fmt.Errorf("decode rpc result: %w", err)
		}
	}
	return nil
}

// Award transfers the given number of whole coins to the wallet and
// waits for the transaction to confirm, bounded by the configured
// timeout. Returns the transaction hash on success.
func (c *Client) Award(ctx context.Context, wallet string, coins int64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := encodeTransfer(wallet, ToBaseUnits(coins))
	if err != nil {
		return "", err
	}

	var txHash string
	err = c.call(ctx, "eth_sendTransaction", []any{map[string]string{
		"from": c.signer,
		"to":   c.contract,
		"data": data,
	}}, &txHash)
	if err != nil {
		return "", err
	}

	if err := c.waitConfirmed(ctx, txHash); err != nil {
		return txHash, err
	}
	return txHash, nil
}

type receipt struct {
	Status string `json:"status"`
}

func (c *Client) waitConfirmed(ctx context.Context, txHash string) error {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var rec *receipt
		if err := c.call(ctx, "eth_getTransactionReceipt", []any{txHash}, &rec); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("confirm %s: %w", txHash, ctx.Err())
			}
			return err
		}
		if rec != nil {
			if rec.Status == "0x1" {
				return nil
			}
			return fmt.Errorf("%w: %s", ErrTxReverted, txHash)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("confirm %s: %w", txHash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// BalanceOf reads the wallet's token balance and renders it in whole
// coins.
func (c *Client) BalanceOf(ctx context.Context, wallet string) (string, error) {
	data, err := encodeBalanceOf(wallet)
	if err != nil {
		return "", err
	}

	var hexBalance string
	err = c.call(ctx, "eth_call", []any{map[string]string{
		"to":   c.contract,
		"data": data,
	}, "latest"}, &hexBalance)
	if err != nil {
		return "", err
	}

	v, ok := new(big.Int).SetString(strings.TrimPrefix(hexBalance, "0x"), 16)
	if !ok {
		return "", fmt.Errorf("bad balance %q", hexBalance)
	}
	return FromBaseUnits(v), nil
}

package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecosphere-community/eco-backend/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(config.ChainConfig{
		RPCURL:          srv.URL,
		ContractAddress: "0x00000000000000000000000000000000000000cc",
		SignerAccount:   "0x00000000000000000000000000000000000000aa",
		ConfirmTimeout:  2 * time.Second,
	})
	c.pollInterval = 10 * time.Millisecond
	return c
}

func decodeRPC(t *testing.T, r *http.Request) rpcRequest {
	var req rpcRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func writeResult(w http.ResponseWriter, result any) {
	raw, _ := json.Marshal(result)
	_ = json.NewEncoder(w).Encode(rpcResponse{Result: raw})
}

func TestAward(t *testing.T) {
	t.Run("sends the transfer and waits for the receipt", func(t *testing.T) {
		var methods []string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			req := decodeRPC(t, r)
			methods = append(methods, req.Method)

			switch req.Method {
			case "eth_sendTransaction":
				writeResult(w, "0xdeadbeef")
			case "eth_getTransactionReceipt":
				writeResult(w, map[string]string{"status": "0x1"})
			default:
				t.Fatalf("unexpected method %s", req.Method)
			}
		})

		txHash, err := c.Award(context.Background(), wallet, 5)
		require.NoError(t, err)
		assert.Equal(t, "0xdeadbeef", txHash)
		assert.Equal(t, []string{"eth_sendTransaction", "eth_getTransactionReceipt"}, methods)
	})

	t.Run("reverted receipt surfaces ErrTxReverted", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			req := decodeRPC(t, r)
			if req.Method == "eth_sendTransaction" {
				writeResult(w, "0xdeadbeef")
				return
			}
			writeResult(w, map[string]string{"status": "0x0"})
		})

		_, err := c.Award(context.Background(), wallet, 5)
		assert.ErrorIs(t, err, ErrTxReverted)
	})

	t.Run("rpc error fails the dispatch", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(rpcResponse{Error: &rpcError{Code: -32000, Message: "insufficient funds"}})
		})

		_, err := c.Award(context.Background(), wallet, 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient funds")
	})

	t.Run("pending receipt is polled until confirmed", func(t *testing.T) {
		var receiptCalls int
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			req := decodeRPC(t, r)
			if req.Method == "eth_sendTransaction" {
				writeResult(w, "0xdeadbeef")
				return
			}
			receiptCalls++
			if receiptCalls < 3 {
				writeResult(w, nil)
				return
			}
			writeResult(w, map[string]string{"status": "0x1"})
		})

		_, err := c.Award(context.Background(), wallet, 5)
		require.NoError(t, err)
		assert.Equal(t, 3, receiptCalls)
	})
}

func TestBalanceOf(t *testing.T) {
	t.Run("renders the balance in whole coins", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			req := decodeRPC(t, r)
			require.Equal(t, "eth_call", req.Method)
			// 15 * 10^18
			writeResult(w, "0xd02ab486cedc0000")
		})

		balance, err := c.BalanceOf(context.Background(), wallet)
		require.NoError(t, err)
		assert.Equal(t, "15", balance)
	})

	t.Run("garbage balance is an error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeResult(w, "0xnothex")
		})

		_, err := c.BalanceOf(context.Background(), wallet)
		assert.Error(t, err)
	})
}

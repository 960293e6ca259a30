package solana

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rpcError is a JSON-RPC error object.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rpcHandler answers JSON-RPC calls by method name.
type rpcHandler map[string]func(params []json.RawMessage) (interface{}, *rpcError)

func (h rpcHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage   `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fn, ok := h[req.Method]
	if !ok {
		http.Error(w, "unknown method", http.StatusNotFound)
		return
	}
	result, rpcErr := fn(req.Params)
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func TestClient_GetAccountInfo(t *testing.T) {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, 42)
	existing := MustParsePublicKey(usdcMint)

	srv := httptest.NewServer(rpcHandler{
		"getAccountInfo": func(params []json.RawMessage) (interface{}, *rpcError) {
			var addr string
			_ = json.Unmarshal(params[0], &addr)
			if addr != existing.String() {
				return map[string]interface{}{"context": map[string]int{"slot": 1}, "value": nil}, nil
			}
			return map[string]interface{}{
				"context": map[string]int{"slot": 1},
				"value": map[string]interface{}{
					"lamports":   1000,
					"owner":      SystemProgramID.String(),
					"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
					"executable": false,
					"rentEpoch":  0,
				},
			}, nil
		},
	})
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	info, err := c.GetAccountInfo(ctx, existing)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, uint64(1000), info.Lamports)
	assert.Equal(t, SystemProgramID, info.Owner)
	assert.Equal(t, uint64(42), binary.LittleEndian.Uint64(info.Data))

	missing, err := c.GetAccountInfo(ctx, PublicKey{7})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestClient_RPCError(t *testing.T) {
	srv := httptest.NewServer(rpcHandler{
		"getLatestBlockhash": func([]json.RawMessage) (interface{}, *rpcError) {
			return nil, &rpcError{Code: -32005, Message: "node is behind"}
		},
	})
	defer srv.Close()

	_, err := NewClient(srv.URL).GetLatestBlockhash(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node is behind")
}

func TestClient_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetLatestBlockhash(context.Background())
	require.Error(t, err)
}

func TestClient_UsesGivenHTTPClient(t *testing.T) {
	var seen atomic.Int32
	srv := httptest.NewServer(rpcHandler{
		"getLatestBlockhash": func([]json.RawMessage) (interface{}, *rpcError) {
			return map[string]interface{}{
				"context": map[string]int{"slot": 1},
				"value":   map[string]interface{}{"blockhash": Hash{1}.String(), "lastValidBlockHeight": 1},
			}, nil
		},
	})
	defer srv.Close()

	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen.Add(1)
		return http.DefaultTransport.RoundTrip(r)
	})}

	got, err := NewClient(srv.URL, WithHTTPClient(hc)).GetLatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Hash{1}, got)
	assert.Equal(t, int32(1), seen.Load())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestClient_SendAndConfirmPolling(t *testing.T) {
	var blockhash Hash
	blockhash[0] = 3
	var sig Signature
	sig[0] = 9

	var polls int32
	var sentTx string
	srv := httptest.NewServer(rpcHandler{
		"getLatestBlockhash": func([]json.RawMessage) (interface{}, *rpcError) {
			return map[string]interface{}{
				"context": map[string]int{"slot": 1},
				"value":   map[string]interface{}{"blockhash": blockhash.String(), "lastValidBlockHeight": 100},
			}, nil
		},
		"sendTransaction": func(params []json.RawMessage) (interface{}, *rpcError) {
			_ = json.Unmarshal(params[0], &sentTx)
			return sig.String(), nil
		},
		"getSignatureStatuses": func([]json.RawMessage) (interface{}, *rpcError) {
			n := atomic.AddInt32(&polls, 1)
			if n < 3 {
				return map[string]interface{}{"value": []interface{}{nil}}, nil
			}
			return map[string]interface{}{"value": []interface{}{
				map[string]interface{}{"slot": 5, "confirmations": 1, "err": nil, "confirmationStatus": "confirmed"},
			}}, nil
		},
	})
	defer srv.Close()

	c := NewClient(srv.URL, WithPollInterval(5*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := c.GetLatestBlockhash(ctx)
	require.NoError(t, err)
	assert.Equal(t, blockhash, got)

	txSig, err := c.SendRawTransaction(ctx, []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, sig, txSig)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), sentTx)

	require.NoError(t, c.ConfirmTransaction(ctx, txSig))
	assert.Equal(t, int32(3), atomic.LoadInt32(&polls))
}

func TestClient_ConfirmFailedTransaction(t *testing.T) {
	srv := httptest.NewServer(rpcHandler{
		"getSignatureStatuses": func([]json.RawMessage) (interface{}, *rpcError) {
			return map[string]interface{}{"value": []interface{}{
				map[string]interface{}{
					"slot":               5,
					"err":                map[string]interface{}{"InstructionError": []interface{}{0, "InvalidAccountData"}},
					"confirmationStatus": "confirmed",
				},
			}}, nil
		},
	})
	defer srv.Close()

	err := NewClient(srv.URL).ConfirmTransaction(context.Background(), Signature{1})
	assert.ErrorIs(t, err, ErrTransactionFailed)
}

func TestClient_ConfirmFallsBackToPolling(t *testing.T) {
	srv := httptest.NewServer(rpcHandler{
		"getSignatureStatuses": func([]json.RawMessage) (interface{}, *rpcError) {
			return map[string]interface{}{
				"context": map[string]int{"slot": 5},
				"value": []interface{}{
					map[string]interface{}{"slot": 5, "err": nil, "confirmationStatus": "finalized"},
				},
			}, nil
		},
	})
	defer srv.Close()

	c := NewClient(srv.URL, WithWebsocket("ws://127.0.0.1:0"), WithPollInterval(5*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, c.ConfirmTransaction(ctx, Signature{1}))
}

func TestClient_ConfirmRespectsContext(t *testing.T) {
	srv := httptest.NewServer(rpcHandler{
		"getSignatureStatuses": func([]json.RawMessage) (interface{}, *rpcError) {
			return map[string]interface{}{"value": []interface{}{nil}}, nil
		},
	})
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := NewClient(srv.URL, WithPollInterval(5*time.Millisecond)).ConfirmTransaction(ctx, Signature{1})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_ConfirmWebsocket(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var subscribed atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close() //nolint:errcheck

		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
			Params []interface{}   `json:"params"`
		}
		if err := conn.ReadJSON(&req); err != nil || req.Method != "signatureSubscribe" {
			return
		}
		subscribed.Store(true)
		_ = conn.WriteJSON(map[string]interface{}{"jsonrpc": "2.0", "result": 23, "id": req.ID})
		_ = conn.WriteJSON(map[string]interface{}{
			"jsonrpc": "2.0",
			"method":  "signatureNotification",
			"params": map[string]interface{}{
				"result":       map[string]interface{}{"context": map[string]int{"slot": 5}, "value": map[string]interface{}{"err": nil}},
				"subscription": 23,
			},
		})
		// Hold the connection until the client hangs up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	// The HTTP endpoint is unused when the websocket succeeds.
	c := NewClient("http://127.0.0.1:0", WithWebsocket(wsURL))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.ConfirmTransaction(ctx, Signature{1}))
	assert.True(t, subscribed.Load())
}

func TestReached(t *testing.T) {
	assert.True(t, reached(rpc.ConfirmationStatusFinalized, CommitmentConfirmed))
	assert.True(t, reached(rpc.ConfirmationStatusConfirmed, CommitmentConfirmed))
	assert.False(t, reached(rpc.ConfirmationStatusProcessed, CommitmentConfirmed))
	assert.False(t, reached("", CommitmentProcessed))
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", WithRateLimit(0.001, 1))
	// Drain the single token.
	require.True(t, c.limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.GetLatestBlockhash(ctx)
	assert.Error(t, err)
}

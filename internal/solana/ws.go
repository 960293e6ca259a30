package solana

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gagliardetto/solana-go/rpc/ws"
)

// waitSignature subscribes to sig over a websocket and returns once the
// node notifies that it reached commitment.
func waitSignature(ctx context.Context, endpoint string, sig Signature, commitment Commitment) error {
	client, err := ws.Connect(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("unable to dial %s: %w", endpoint, err)
	}
	defer client.Close()

	sub, err := client.SignatureSubscribe(sig, commitment)
	if err != nil {
		return fmt.Errorf("unable to subscribe: %w", err)
	}
	defer sub.Unsubscribe()
	log.Debug("signature subscription opened", "signature", sig)

	res, err := sub.Recv(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("websocket read: %w", err)
	}
	if res != nil && res.Value.Err != nil {
		return fmt.Errorf("%w: %v", ErrTransactionFailed, res.Value.Err)
	}
	return nil
}

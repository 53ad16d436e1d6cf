package acquisition

import (
	"context"
	"sync"

	"github.com/sawpanic/memescan/internal/bundle"
	"github.com/sawpanic/memescan/internal/model"
	"github.com/sawpanic/memescan/internal/providers/chainrpc"
)

// bundleTxFetchConcurrency bounds how many getTransaction calls run at
// once per candidate so a deep signature list can't exhaust the chain
// RPC rate limiter on its own.
const bundleTxFetchConcurrency = 5

// BundleInputs is the raw clustering material a bundle.Detector needs,
// fetched from chain RPC. Ok is false when chain RPC can't supply any of
// it, in which case the caller should fall back to a permissive report
// rather than calling Analyze with empty data.
type BundleInputs struct {
	Txs          []bundle.Tx
	CreationSlot uint64
	Ok           bool
}

// FetchBundleInputs resolves a token's creation slot and its recent
// transaction signatures, fetching each transaction to extract clustering
// facts. Chain RPC unavailability or a resolution failure yields Ok=false
// so the caller can degrade bundle risk gracefully like every other
// safety input.
func (f *Facade) FetchBundleInputs(ctx context.Context, addr model.TokenAddress, limit int) BundleInputs {
	if f.ChainRPC == nil {
		return BundleInputs{}
	}

	creation, err := f.ChainRPC.GetTokenCreationSignature(ctx, addr)
	if err != nil {
		return BundleInputs{}
	}

	sigs, err := f.ChainRPC.GetRecentTransactions(ctx, addr, limit)
	if err != nil || len(sigs) == 0 {
		return BundleInputs{CreationSlot: creation.Slot, Ok: true}
	}

	txs := make([]bundle.Tx, 0, len(sigs))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, bundleTxFetchConcurrency)

	for _, sig := range sigs {
		sig := sig
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			raw, err := f.ChainRPC.GetTransaction(ctx, sig)
			if err != nil {
				return
			}
			t, ok := parseBundleTx(raw, creation.Slot)
			if !ok {
				return
			}
			mu.Lock()
			txs = append(txs, t)
			mu.Unlock()
		}()
	}
	wg.Wait()

	return BundleInputs{Txs: txs, CreationSlot: creation.Slot, Ok: true}
}

// parseBundleTx pulls a slot and a signer out of a jsonParsed
// getTransaction response. The signer is the transaction's fee payer,
// which sol-rpc exposes as the first entry of the parsed account-key
// list. FundedByDeployer is approximated as "landed within one slot of
// creation" — true funding-chain analysis needs a pre-image transfer
// trace the core doesn't attempt.
func parseBundleTx(raw chainrpc.Transaction, creationSlot uint64) (bundle.Tx, bool) {
	slotVal, ok := raw["slot"].(float64)
	if !ok {
		return bundle.Tx{}, false
	}
	slot := uint64(slotVal)

	signer := ""
	if txn, ok := raw["transaction"].(map[string]any); ok {
		if msg, ok := txn["message"].(map[string]any); ok {
			if keys, ok := msg["accountKeys"].([]any); ok && len(keys) > 0 {
				switch k := keys[0].(type) {
				case string:
					signer = k
				case map[string]any:
					if p, ok := k["pubkey"].(string); ok {
						signer = p
					}
				}
			}
		}
	}
	if signer == "" {
		return bundle.Tx{}, false
	}

	return bundle.Tx{
		Signer:           signer,
		Slot:             slot,
		FundedByDeployer: slot <= creationSlot+1,
	}, true
}

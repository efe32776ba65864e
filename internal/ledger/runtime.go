// ==============================
// File: internal/ledger/runtime.go
// ==============================
package ledger

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Runtime is a deterministic, account-based execution environment. Every
// entry point of a program built on it runs as one unit of work: the
// transaction function either commits all of its writes or none of them.
// A single mutex serializes transactions, so any two units of work are
// applied in a total order and no intermediate state is ever observable.
type Runtime struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey]*Account
	logger   *zap.Logger
}

func NewRuntime(logger *zap.Logger) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runtime{
		accounts: make(map[solana.PublicKey]*Account),
		logger:   logger.Named("ledger"),
	}
}

// Execute runs fn as one atomic transaction signed by the given keys. All
// reads and writes inside fn go through a copy-on-write overlay; if fn
// returns an error the overlay is discarded and the error is returned with
// no state change. On success every touched account is published at once.
func (r *Runtime) Execute(ctx context.Context, signers []solana.PublicKey, fn func(tx *Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &Tx{
		rt:      r,
		overlay: make(map[solana.PublicKey]*Account),
		signers: make(map[solana.PublicKey]struct{}, len(signers)),
	}
	for _, s := range signers {
		tx.signers[s] = struct{}{}
	}

	if err := fn(tx); err != nil {
		r.logger.Debug("transaction rolled back", zap.Error(err))
		return err
	}

	for addr, acc := range tx.overlay {
		r.accounts[addr] = acc
	}
	return nil
}

// Fund credits lamports to an address outside of any transaction. It stands
// in for the host environment's faucet and is how wallets get their initial
// balances in tests and local runs.
func (r *Runtime) Fund(addr solana.PublicKey, lamports uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[addr]
	if !ok {
		acc = &Account{}
		r.accounts[addr] = acc
	}
	acc.Lamports += lamports
}

// Balance returns the committed lamport balance of addr.
func (r *Runtime) Balance(addr solana.PublicKey) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if acc, ok := r.accounts[addr]; ok {
		return acc.Lamports
	}
	return 0
}

// Account returns a copy of the committed state of addr. Ledger state is
// public: any observer may read any account, writes only happen through
// Execute.
func (r *Runtime) Account(addr solana.PublicKey) (Account, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[addr]
	if !ok || !acc.Exists() {
		return Account{}, false
	}
	return *acc.clone(), true
}

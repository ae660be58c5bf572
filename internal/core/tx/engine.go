package tx

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	crypto "github.com/LeJamon/goxrpl-lending/internal/crypto/common"
)

// Sandbox is an ApplyView whose writes are buffered until Commit.
type Sandbox interface {
	ApplyView
	Commit() error
	Discard()
}

// Ledger opens sandboxes over the current ledger state.
type Ledger interface {
	Sandbox(parentCloseTime uint32) (Sandbox, error)
	ParentHash() [32]byte
}

// Observer is told about every transaction the engine finishes.
// Events are only present when the result is tesSUCCESS.
type Observer interface {
	Observe(t Transaction, res ApplyResult)
}

// ApplyResult is the outcome of Engine.Apply.
type ApplyResult struct {
	Result  Result
	Applied bool
	Fee     int64
	TxHash  [32]byte
	Events  []Event
	Message string

	// CloseTime is the parent close time the transaction was applied at.
	CloseTime uint32
}

// Engine processes transactions against a ledger
type Engine struct {
	ledger    Ledger
	config    Config
	logger    *slog.Logger
	observers []Observer
}

// NewEngine creates an engine. A nil logger discards.
func NewEngine(l Ledger, cfg Config, logger *slog.Logger, observers ...Observer) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{ledger: l, config: cfg, logger: logger, observers: observers}
}

func (e *Engine) Config() Config { return e.config }

// Apply runs t through preflight, preclaim and doApply at the given close
// time. State changes are committed only when doApply returns tesSUCCESS;
// any other result leaves the ledger untouched. The error is reserved for
// storage failures.
func (e *Engine) Apply(t Transaction, parentCloseTime uint32) (ApplyResult, error) {
	res, err := e.apply(t, parentCloseTime)
	if err == nil {
		res.CloseTime = parentCloseTime
		for _, o := range e.observers {
			o.Observe(t, res)
		}
	}
	return res, err
}

func (e *Engine) apply(t Transaction, parentCloseTime uint32) (ApplyResult, error) {
	log := e.logger.With("tx", t.TxType().String())

	// Step 1: Preflight checks (syntax validation)
	if r := t.Preflight(e.config); !r.IsSuccess() {
		log.Debug("preflight failed", "result", r)
		return ApplyResult{Result: r, Message: r.Message()}, nil
	}

	sb, err := e.ledger.Sandbox(parentCloseTime)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("failed to open sandbox: %w", err)
	}
	defer sb.Discard()

	ctx := NewApplyContext(sb, e.config, log)
	ctx.TxHash = transactionHash(t, parentCloseTime)
	ctx.ParentHash = e.ledger.ParentHash()

	fee := e.config.BaseFee
	if fc, ok := t.(FeeCalculator); ok {
		fee = fc.CalculateBaseFee(sb, e.config)
	}

	// Step 2: Preclaim checks (validate against ledger state)
	r := t.Preclaim(ctx)
	if !r.IsSuccess() {
		log.Debug("preclaim failed", "result", r)
		return ApplyResult{Result: r, Applied: r.IsApplied(), Fee: fee, TxHash: ctx.TxHash, Message: r.Message()}, nil
	}

	// Step 3: Apply
	r = t.DoApply(ctx)
	res := ApplyResult{
		Result:  r,
		Applied: r.IsApplied(),
		Fee:     fee,
		TxHash:  ctx.TxHash,
		Message: r.Message(),
	}
	if !r.IsSuccess() {
		log.Debug("transaction not applied", "result", r)
		return res, nil
	}

	if err := sb.Commit(); err != nil {
		return ApplyResult{}, fmt.Errorf("failed to commit %s: %w", t.TxType(), err)
	}
	res.Events = ctx.Events()
	return res, nil
}

// transactionHash identifies a transaction by its type, account, sequence
// and the ledger it was applied in.
func transactionHash(t Transaction, parentCloseTime uint32) [32]byte {
	c := t.GetCommon()
	var buf [10]byte
	binary.BigEndian.PutUint16(buf[:2], uint16(t.TxType()))
	binary.BigEndian.PutUint32(buf[2:6], c.Sequence)
	binary.BigEndian.PutUint32(buf[6:], parentCloseTime)
	return crypto.Sha512Half([]byte("TXN\x00"), c.Account[:], buf[:])
}

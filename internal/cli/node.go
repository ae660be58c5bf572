package cli

import (
	"fmt"
	"io"

	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/LeJamon/goxrpl-lending/internal/di"
)

// withNode opens the configured node, runs fn and closes it.
func withNode(fn func(n *di.Node) error) (err error) {
	n, err := di.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open node: %w", err)
	}
	defer func() {
		if cerr := n.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(n)
}

// modify runs fn in a sandbox at the current close time and commits it.
func modify(n *di.Node, fn func(v tx.ApplyView) error) error {
	sb, err := n.Ledger.Sandbox(now())
	if err != nil {
		return err
	}
	defer sb.Discard()
	if err := fn(sb); err != nil {
		return err
	}
	return sb.Commit()
}

// view opens a read-only sandbox.
func view(n *di.Node) (tx.Sandbox, error) {
	return n.Ledger.Sandbox(now())
}

// submit applies t and prints the outcome.
func submit(n *di.Node, t tx.Transaction, out io.Writer) error {
	res, err := n.Engine.Apply(t, now())
	if err != nil {
		return err
	}
	logger.Debug("applied", "tx", t.TxType().String(), "result", res.Result.String())
	return printResult(out, res)
}

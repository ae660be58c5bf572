package cli

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	addresscodec "github.com/Peersyst/xrpl-go/address-codec"
	"github.com/shopspring/decimal"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/LeJamon/goxrpl-lending/internal/crypto"
)

// rippleEpoch is 2000-01-01T00:00:00Z, the zero of ledger close times.
const rippleEpoch = 946684800

// now returns the --at close time, or the wall clock.
func now() uint32 {
	if closeTime != 0 {
		return closeTime
	}
	return uint32(time.Now().Unix() - rippleEpoch)
}

func formatTime(t uint32) string {
	return time.Unix(int64(t)+rippleEpoch, 0).UTC().Format(time.RFC3339)
}

// parseAccount accepts a classic address.
func parseAccount(s string) ([20]byte, error) {
	var id [20]byte
	_, accountID, err := addresscodec.DecodeClassicAddressToAccountID(s)
	if err != nil {
		return id, fmt.Errorf("invalid address %q: %w", s, err)
	}
	copy(id[:], accountID)
	return id, nil
}

func formatAccount(id [20]byte) string {
	addr, err := addresscodec.EncodeAccountIDToClassicAddress(id[:])
	if err != nil {
		return strings.ToUpper(hex.EncodeToString(id[:]))
	}
	return addr
}

// namedAccount derives a deterministic account from a name.
func namedAccount(name string) [20]byte {
	h := sha512.Sum512([]byte(name))
	return crypto.CalcAccountID(h[:16])
}

// parseAsset reads "XRP", "CUR/rIssuer" or "MPT/<48 hex digits>".
func parseAsset(s string) (asset.Asset, error) {
	if strings.EqualFold(s, "XRP") {
		return asset.XRP(), nil
	}
	cur, rest, ok := strings.Cut(s, "/")
	if !ok {
		return asset.Asset{}, fmt.Errorf("invalid asset %q: want XRP, CUR/issuer or MPT/id", s)
	}
	var a asset.Asset
	if strings.EqualFold(cur, "MPT") {
		id, err := asset.ParseMPTIssuanceID(rest)
		if err != nil {
			return a, err
		}
		a = asset.MPT(id)
	} else {
		issuer, err := parseAccount(rest)
		if err != nil {
			return a, err
		}
		a = asset.IOU(cur, issuer)
	}
	return a, a.Validate()
}

func parseHash(s string) ([32]byte, error) {
	var h [32]byte
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(h) {
		return h, fmt.Errorf("invalid ID %q: want 64 hex digits", s)
	}
	copy(h[:], b)
	return h, nil
}

func formatHash(h [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

func parseNumber(s string) (number.Number, error) {
	return number.Parse(s)
}

// formatAmount renders v with at most places fractional digits.
func formatAmount(v number.Number, places int32) string {
	d := v.Decimal()
	if places <= 0 {
		return d.Round(0).String()
	}
	return d.Round(places).String()
}

// placesForScale is the number of fractional digits a loan scale keeps.
func placesForScale(scale int32) int32 {
	return max(-scale, 0)
}

// formatRate renders a tenth-bips rate as a percentage.
func formatRate(r uint32) string {
	return decimal.New(int64(r), -3).String() + "%"
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

// printResult writes the outcome of a transaction and returns an error
// when it did not succeed.
func printResult(w io.Writer, res tx.ApplyResult) error {
	fmt.Fprintf(w, "result: %s\n", res.Result)
	if res.Message != "" && !res.Result.IsSuccess() {
		fmt.Fprintf(w, "message: %s\n", res.Message)
	}
	fmt.Fprintf(w, "fee: %d drops\n", res.Fee)
	fmt.Fprintf(w, "hash: %s\n", formatHash(res.TxHash))
	for _, ev := range res.Events {
		fmt.Fprintf(w, "event: %s %s loan=%s", ev.TxType, ev.Action, formatHash(ev.LoanID))
		if ev.Path != "" {
			fmt.Fprintf(w, " path=%s payments=%d principal=%s interest=%s fee=%s value_change=%s",
				ev.Path, ev.Payments, ev.PrincipalPaid, ev.InterestPaid, ev.FeePaid, ev.ValueChange)
		}
		fmt.Fprintln(w)
	}
	if !res.Result.IsSuccess() {
		return fmt.Errorf("transaction failed: %s", res.Result)
	}
	return nil
}

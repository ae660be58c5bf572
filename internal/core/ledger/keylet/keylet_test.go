package keylet

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountKey(t *testing.T) {
	// rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh, the genesis account
	raw, err := hex.DecodeString("b5f762798a53d543a014caf8b297cff8f2f937e8")
	require.NoError(t, err)
	var id [20]byte
	copy(id[:], raw)

	k := Account(id)
	assert.Equal(t, entry.TypeAccountRoot, k.Type)
	assert.Equal(t,
		"2B6AC232AA4C4BE41BF49D2459FA4A0347E1B543A4C92FCEE0821C0201E2E9A8",
		strings.ToUpper(hex.EncodeToString(k.Key[:])))
}

func TestLendingKeys(t *testing.T) {
	owner := [20]byte{1}
	vault := Vault(owner, 5)
	broker := LoanBroker(owner, 5)

	assert.Equal(t, entry.TypeVault, vault.Type)
	assert.Equal(t, entry.TypeLoanBroker, broker.Type)
	assert.NotEqual(t, vault.Key, broker.Key, "spaces separate objects with the same owner and sequence")

	l1 := Loan(broker.Key, 1)
	l2 := Loan(broker.Key, 2)
	assert.Equal(t, entry.TypeLoan, l1.Type)
	assert.NotEqual(t, l1.Key, l2.Key)
	assert.Equal(t, l1, Loan(broker.Key, 1))
	assert.Equal(t, l1, LoanByID(l1.Key))
}

package entries

import (
	"encoding/binary"
	"errors"

	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

// Loan is a single loan made by a broker to a borrower.
// Reference: rippled ledger_entries.macro ltLOAN
//
// PrincipalOutstanding, TotalValueOutstanding and ManagementFeeOutstanding
// are always multiples of 10^LoanScale. NextPaymentDueDate is nil exactly
// when PaymentRemaining is zero.
type Loan struct {
	BaseEntry

	LoanSequence uint32   `codec:"loan_sequence"`
	LoanBrokerID [32]byte `codec:"loan_broker_id"`
	Borrower     [20]byte `codec:"borrower"`

	StartDate           uint32  `codec:"start_date"`
	PaymentInterval     uint32  `codec:"payment_interval"`
	GracePeriod         uint32  `codec:"grace_period"`
	PreviousPaymentDate uint32  `codec:"previous_payment_date"`
	NextPaymentDueDate  *uint32 `codec:"next_payment_due_date,omitempty"`
	PaymentRemaining    uint32  `codec:"payment_remaining"`

	LoanScale int32 `codec:"loan_scale"`

	PrincipalOutstanding     number.Number `codec:"principal_outstanding"`
	TotalValueOutstanding    number.Number `codec:"total_value_outstanding"`
	ManagementFeeOutstanding number.Number `codec:"management_fee_outstanding"`
	PeriodicPayment          number.Number `codec:"periodic_payment"`

	LoanOriginationFee number.Number `codec:"loan_origination_fee"`
	LoanServiceFee     number.Number `codec:"loan_service_fee"`
	LatePaymentFee     number.Number `codec:"late_payment_fee"`
	ClosePaymentFee    number.Number `codec:"close_payment_fee"`

	// Rates in tenth basis points.
	InterestRate            uint32 `codec:"interest_rate"`
	LateInterestRate        uint32 `codec:"late_interest_rate"`
	CloseInterestRate       uint32 `codec:"close_interest_rate"`
	OverpaymentInterestRate uint32 `codec:"overpayment_interest_rate"`
	OverpaymentFee          uint32 `codec:"overpayment_fee"`
}

func (l *Loan) Type() entry.Type {
	return entry.TypeLoan
}

func (l *Loan) Validate() error {
	if l.Borrower == [20]byte{} {
		return errors.New("borrower is required")
	}
	if l.LoanBrokerID == [32]byte{} {
		return errors.New("loan broker ID is required")
	}
	if l.PaymentInterval == 0 {
		return errors.New("payment interval is required")
	}
	if l.PrincipalOutstanding.Sign() < 0 || l.TotalValueOutstanding.Sign() < 0 ||
		l.ManagementFeeOutstanding.Sign() < 0 {
		return errors.New("outstanding balances cannot be negative")
	}
	if l.PrincipalOutstanding.Gt(l.TotalValueOutstanding) {
		return errors.New("principal outstanding cannot exceed total value outstanding")
	}
	if (l.PaymentRemaining == 0) != (l.NextPaymentDueDate == nil) {
		return errors.New("next payment due date must be set exactly while payments remain")
	}
	if l.PaymentRemaining == 0 && !l.PrincipalOutstanding.IsZero() {
		return errors.New("principal outstanding on a completed loan")
	}
	return nil
}

func (l *Loan) Hash() ([32]byte, error) {
	hash := l.BaseEntry.Hash()

	var buf [12]byte
	binary.BigEndian.PutUint32(buf[:4], l.LoanSequence)
	binary.BigEndian.PutUint32(buf[4:8], l.StartDate)
	binary.BigEndian.PutUint32(buf[8:], l.PaymentRemaining)
	xorInto(&hash, 0, buf[:])
	xorInto(&hash, 12, l.Borrower[:])
	return hash, nil
}

// IsPaidOff reports whether the loan has no payments left.
func (l *Loan) IsPaidOff() bool {
	return l.PaymentRemaining == 0 || l.PrincipalOutstanding.IsZero()
}

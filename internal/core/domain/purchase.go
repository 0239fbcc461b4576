package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseIntent is one buyer's request to buy a quantity of a single product.
// It only lives for the duration of the purchase transaction.
type PurchaseIntent struct {
	BuyerID         int64
	ProductID       int64
	Quantity        int
	ShippingAddress string
	ClientAddress   string
}

// Outcome classifies how a purchase attempt ended.
type Outcome int

const (
	OutcomeInternalFailure Outcome = iota
	OutcomeSuccess
	OutcomeNotFound
	OutcomeLockContention
	OutcomeSoldOut
	OutcomeInsufficientStock
)

var outcomeNames = map[Outcome]string{
	OutcomeInternalFailure:   "internal_failure",
	OutcomeSuccess:           "success",
	OutcomeNotFound:          "not_found",
	OutcomeLockContention:    "lock_contention",
	OutcomeSoldOut:           "sold_out",
	OutcomeInsufficientStock: "insufficient_stock",
}

var outcomeCodes = map[Outcome]string{
	OutcomeInternalFailure:   "INTERNAL",
	OutcomeSuccess:           "OK",
	OutcomeNotFound:          "NOT_FOUND",
	OutcomeLockContention:    "LOCK_CONTENTION",
	OutcomeSoldOut:           "SOLD_OUT",
	OutcomeInsufficientStock: "INSUFFICIENT_STOCK",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Code is the stable machine-readable error code exposed to API callers.
func (o Outcome) Code() string {
	if code, ok := outcomeCodes[o]; ok {
		return code
	}
	return outcomeCodes[OutcomeInternalFailure]
}

// Retryable reports whether resubmitting the same request may succeed.
func (o Outcome) Retryable() bool {
	return o == OutcomeLockContention
}

// PurchaseReceipt is everything a successful purchase reports back.
type PurchaseReceipt struct {
	OrderID        int64
	PaymentSplitID int64
	ProductName    string
	Quantity       int
	TotalPrice     decimal.Decimal
	CommissionFee  decimal.Decimal
	ArtisanPayout  decimal.Decimal
	RemainingStock int
	CreatedAt      time.Time
}

// PurchaseResult is the tagged result of a purchase. Receipt is set only for
// OutcomeSuccess, Available only for OutcomeInsufficientStock, and Err only
// for OutcomeInternalFailure (for logging, never for callers).
type PurchaseResult struct {
	Outcome   Outcome
	Receipt   *PurchaseReceipt
	Available int
	Err       error
}

func PurchaseSucceeded(receipt PurchaseReceipt) PurchaseResult {
	return PurchaseResult{Outcome: OutcomeSuccess, Receipt: &receipt}
}

func PurchaseRejected(outcome Outcome) PurchaseResult {
	return PurchaseResult{Outcome: outcome}
}

func PurchaseShort(available int) PurchaseResult {
	return PurchaseResult{Outcome: OutcomeInsufficientStock, Available: available}
}

func PurchaseFailed(err error) PurchaseResult {
	return PurchaseResult{Outcome: OutcomeInternalFailure, Err: err}
}

// Package billing contains the order and invoice aggregates, the billing
// plan with its consume-once installment items, and the payment lifecycle
// that moves an invoice from draft to paid.
package billing

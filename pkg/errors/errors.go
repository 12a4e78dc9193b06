package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Domain errors
var (
	ErrPatientNotFound        = errors.New("patient not found")
	ErrQuotationNotFound      = errors.New("quotation not found")
	ErrFinancingNotFound      = errors.New("financing not found")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrInvalidPrincipal       = errors.New("total amount must be greater than down payment")
	ErrInvalidPaymentAmount   = errors.New("invalid payment amount")
	ErrPaymentAlreadyReverted = errors.New("payment is already reverted")
	ErrFinancingCancelled     = errors.New("financing is cancelled")
	ErrFinancingNotCancelable = errors.New("financing cannot be cancelled")
	ErrConcurrentUpdate       = errors.New("record was modified concurrently")
	ErrInUse                  = errors.New("record is still referenced")
	ErrValidation             = errors.New("validation failed")
)

// Kind classifies a BusinessError so transports can map it without
// inspecting codes.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindInternal   Kind = "internal"
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Kind    Kind
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code string, kind Kind, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodePatientNotFound        = "PATIENT_NOT_FOUND"
	ErrCodeQuotationNotFound      = "QUOTATION_NOT_FOUND"
	ErrCodeFinancingNotFound      = "FINANCING_NOT_FOUND"
	ErrCodePaymentNotFound        = "PAYMENT_NOT_FOUND"
	ErrCodeInvalidPrincipal       = "INVALID_PRINCIPAL"
	ErrCodeInvalidPaymentAmount   = "INVALID_PAYMENT_AMOUNT"
	ErrCodePaymentReverted        = "PAYMENT_ALREADY_REVERTED"
	ErrCodeFinancingCancelled     = "FINANCING_CANCELLED"
	ErrCodeFinancingNotCancelable = "FINANCING_NOT_CANCELABLE"
	ErrCodeConcurrentUpdate       = "CONCURRENT_UPDATE"
	ErrCodeInUse                  = "RECORD_IN_USE"
	ErrCodeDatabaseError          = "DATABASE_ERROR"
)

// KindOf reports the Kind of err, KindInternal when err carries no
// BusinessError.
func KindOf(err error) Kind {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// MessageOf returns the human-readable message for err. Internal errors get
// a generic message so storage details never reach a caller.
func MessageOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) && be.Kind != KindInternal {
		return be.Message
	}
	return "internal error, please try again later"
}

// WrapValidation turns validator output into a readable validation error.
func WrapValidation(err error) *BusinessError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			if fe.Param() != "" {
				parts = append(parts, fmt.Sprintf("%s failed on %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			} else {
				parts = append(parts, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
			}
		}
		return NewBusinessError(ErrCodeValidation, KindValidation, strings.Join(parts, "; "), ErrValidation)
	}
	return NewBusinessError(ErrCodeValidation, KindValidation, err.Error(), ErrValidation)
}

func NewValidationError(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, KindValidation, message, ErrValidation)
}

func WrapPatientNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodePatientNotFound,
		KindNotFound,
		fmt.Sprintf("Patient with ID %s not found", id),
		ErrPatientNotFound,
	)
}

func WrapQuotationNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeQuotationNotFound,
		KindNotFound,
		fmt.Sprintf("Quotation with ID %s not found", id),
		ErrQuotationNotFound,
	)
}

func WrapFinancingNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeFinancingNotFound,
		KindNotFound,
		fmt.Sprintf("Financing with ID %s not found", id),
		ErrFinancingNotFound,
	)
}

func WrapPaymentNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		KindNotFound,
		fmt.Sprintf("Payment with ID %s not found", id),
		ErrPaymentNotFound,
	)
}

func WrapInvalidPrincipal(total, downPayment string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPrincipal,
		KindValidation,
		fmt.Sprintf("Total amount %s must be greater than down payment %s", total, downPayment),
		ErrInvalidPrincipal,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		KindValidation,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapPaymentAlreadyReverted(id string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentReverted,
		KindConflict,
		fmt.Sprintf("Payment with ID %s is already reverted", id),
		ErrPaymentAlreadyReverted,
	)
}

func WrapFinancingCancelled(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeFinancingCancelled,
		KindConflict,
		fmt.Sprintf("Financing with ID %s is cancelled", id),
		ErrFinancingCancelled,
	)
}

func WrapFinancingNotCancelable(id, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeFinancingNotCancelable,
		KindConflict,
		fmt.Sprintf("Financing with ID %s cannot be cancelled from status %s", id, status),
		ErrFinancingNotCancelable,
	)
}

func WrapConcurrentUpdate(entity, id string) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrentUpdate,
		KindConflict,
		fmt.Sprintf("%s %s was modified by another operation, please retry", entity, id),
		ErrConcurrentUpdate,
	)
}

func WrapInUse(entity, id string) *BusinessError {
	return NewBusinessError(
		ErrCodeInUse,
		KindConflict,
		fmt.Sprintf("%s %s is still referenced by other records", entity, id),
		ErrInUse,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		KindInternal,
		"database operation failed",
		err,
	)
}

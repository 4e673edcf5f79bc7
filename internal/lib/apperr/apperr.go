package apperr

import (
	"errors"
	"net/http"
)

// Code машиночитаемый код ошибки, который уходит клиенту
type Code string

const (
	CodeEmptyCart             Code = "EMPTY_CART"
	CodeOverAmount            Code = "OVER_AMOUNT"
	CodeNotEnoughPayMoney     Code = "NOT_ENOUGH_PAYMONEY"
	CodeFailToCreate          Code = "FAIL_TO_CREATE"
	CodeNoCreatedPayment      Code = "NO_CREATED_PAYMENT"
	CodeNotFoundByID          Code = "NOT_FOUND_BY_ID"
	CodeNotFoundSeller        Code = "NOT_FOUND_SELLER"
	CodeNotFoundProduct       Code = "NOTFOUND_PRODUCT"
	CodeBadID                 Code = "BAD_ID"
	CodeInvalidQueryParameter Code = "INVALID_QUERY_PARAMETER"
	CodeInvalidRequest        Code = "INVALID_REQUEST"
	CodeIOE                   Code = "IOE_ERROR"
	CodeUnauthorized          Code = "UNAUTHORIZED"
	CodeResourceLocked        Code = "RESOURCE_LOCKED"
	CodeInternal              Code = "INTERNAL_ERROR"
)

// Error доменная ошибка приложения. Все бизнес-ошибки сервисов возвращаются в этом виде
type Error struct {
	Code    Code
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, чтобы работал errors.Is(err, apperr.EmptyCart)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap возвращает копию ошибки с причиной
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

func newError(code Code, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

var (
	EmptyCart             = newError(CodeEmptyCart, http.StatusBadRequest, "shopping cart is empty")
	OverAmount            = newError(CodeOverAmount, http.StatusBadRequest, "requested amount exceeds product stock")
	NotEnoughPayMoney     = newError(CodeNotEnoughPayMoney, http.StatusBadRequest, "not enough pay-money")
	FailToCreate          = newError(CodeFailToCreate, http.StatusInternalServerError, "failed to create order number")
	NoCreatedPayment      = newError(CodeNoCreatedPayment, http.StatusInternalServerError, "no payment was created")
	NotFoundByID          = newError(CodeNotFoundByID, http.StatusNotFound, "consumer not found")
	NotFoundSeller        = newError(CodeNotFoundSeller, http.StatusNotFound, "seller not found")
	NotFoundProduct       = newError(CodeNotFoundProduct, http.StatusNotFound, "product not found")
	BadID                 = newError(CodeBadID, http.StatusNotFound, "review not found")
	InvalidQueryParameter = newError(CodeInvalidQueryParameter, http.StatusBadRequest, "invalid query parameter")
	InvalidRequest        = newError(CodeInvalidRequest, http.StatusBadRequest, "invalid request")
	IOE                   = newError(CodeIOE, http.StatusInternalServerError, "file i/o error")
	Unauthorized          = newError(CodeUnauthorized, http.StatusUnauthorized, "invalid or missing token")
	ResourceLocked        = newError(CodeResourceLocked, http.StatusConflict, "resource is locked, please try again")
)

// From достает *Error из цепочки. Для неизвестных ошибок возвращает INTERNAL_ERROR
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
		Err:     err,
	}
}

package fakeapi

import (
	"context"
	"net/http"

	"github.com/bytedance/sonic"
)

// Error is an API failure with the status it is reported under.
type Error struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	internal bool
}

func newError(code int, err error) *Error {
	return &Error{Code: code, Message: err.Error()}
}

func (e *Error) Error() string {
	return e.Message
}

func respondJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) error {
	setStatusCode(ctx, statusCode)

	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return nil
	}

	jsonData, err := sonic.ConfigStd.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if _, err = w.Write(jsonData); err != nil {
		return err
	}

	return nil
}

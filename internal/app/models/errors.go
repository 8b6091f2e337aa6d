package models

import "errors"

var (
	ErrNoToken       = errors.New("login response carries no token")
	ErrNoQuestions   = errors.New("no questions in response")
	ErrUnknownTestID = errors.New("submit response carries no test id")
)

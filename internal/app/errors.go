package app

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUsernameExists    = errors.New("username already taken")
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrQuestionEmpty     = errors.New("no question provided")
	ErrDocumentEmpty     = errors.New("PDF is empty or cannot be read")
)

// Package service provides business logic for the application.
package service

import "errors"

// Service errors.
var (
	ErrEmailRequired     = errors.New("email is required")
	ErrSenderRequired    = errors.New("sender email and password are required")
	ErrAlreadySubscribed = errors.New("email already subscribed")
	ErrNotSubscribed     = errors.New("email not subscribed")
	ErrUnauthorized      = errors.New("invalid or missing API key")
	ErrTransport         = errors.New("mail transport failure")
)

// Messages returned to tenants. They match the wording existing clients
// already parse.
const (
	MessageBroadcastSent     = "Success"
	MessageNoRecipients      = "No clients to send to."
	MessageClientCreated     = "Client Successfully Created"
	MessageClientUnsubscribe = "Client Successfully Unsubscribed"
)

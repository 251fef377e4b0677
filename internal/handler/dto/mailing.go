// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/mailcast/mailcast/internal/model"

// ClientRequest carries a subscriber email, from a form field or JSON.
type ClientRequest struct {
	Email string `json:"email"`
}

// BroadcastRequest is the body of POST /api/send_to_clients.
type BroadcastRequest struct {
	Subject  string `json:"subject"`
	BodyText string `json:"bodyText"`
	BodyHTML string `json:"bodyHTML"`
}

// ToModel converts the request into a domain broadcast.
func (r BroadcastRequest) ToModel() model.Broadcast {
	return model.Broadcast{Subject: r.Subject, BodyText: r.BodyText, BodyHTML: r.BodyHTML}
}

// RegisterKeyRequest carries the sender identity for a new tenant.
type RegisterKeyRequest struct {
	SenderEmail    string `json:"sender_email"`
	SenderPassword string `json:"sender_password"`
}

// ClientsResponse is returned by GET /api/get_clients.
type ClientsResponse struct {
	Data ClientsData `json:"data"`
}

type ClientsData struct {
	Clients []string `json:"clients"`
}

// ClientResponse is returned after a subscribe or unsubscribe.
type ClientResponse struct {
	Message string     `json:"message"`
	Data    ClientData `json:"data"`
}

type ClientData struct {
	Client Client `json:"client"`
}

type Client struct {
	Email string `json:"email"`
}

// NewClientResponse builds the subscribe/unsubscribe envelope.
func NewClientResponse(message, email string) ClientResponse {
	return ClientResponse{Message: message, Data: ClientData{Client: Client{Email: email}}}
}

// BroadcastResponse is returned by POST /api/send_to_clients. Data is
// omitted when nothing was sent.
type BroadcastResponse struct {
	Message string         `json:"message"`
	Data    *BroadcastData `json:"data,omitempty"`
}

type BroadcastData struct {
	BroadcastID string `json:"broadcast_id"`
	Recipients  int    `json:"recipients"`
}

// ToBroadcastResponse converts a dispatch result into its API shape.
func ToBroadcastResponse(res *model.DispatchResult) BroadcastResponse {
	out := BroadcastResponse{Message: res.Message}
	if res.Sent {
		out.Data = &BroadcastData{BroadcastID: res.ID, Recipients: res.Recipients}
	}
	return out
}

// RegisterKeyResponse is the JSON form of a registration result.
type RegisterKeyResponse struct {
	APIKey string `json:"api_key"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

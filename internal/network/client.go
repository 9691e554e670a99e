package network

import (
	"net/http"
	"time"
)

// ClientFactory creates the HTTP clients the channel adapters use.
type ClientFactory struct {
	testHTTPClient *http.Client // For testing only
}

// NewClientFactory creates a new client factory.
func NewClientFactory() *ClientFactory {
	return &ClientFactory{}
}

// NewClientFactoryForTest creates a client factory that returns the given
// http.Client. This is only for use in tests.
func NewClientFactoryForTest(client *http.Client) *ClientFactory {
	return &ClientFactory{testHTTPClient: client}
}

// NewHTTPClient creates a standard http.Client with the given timeout.
func (f *ClientFactory) NewHTTPClient(timeout time.Duration) *http.Client {
	if f.testHTTPClient != nil {
		return f.testHTTPClient
	}
	return &http.Client{Timeout: timeout}
}

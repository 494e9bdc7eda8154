package mocks

import (
	"net/http"

	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// HTTPClient mocks gateway.HTTPClient.
type HTTPClient struct {
	mock.Mock
}

func NewHTTPClient(t testingT) *HTTPClient {
	m := &HTTPClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	ret := m.Called(req)
	var resp *http.Response
	if ret.Get(0) != nil {
		resp = ret.Get(0).(*http.Response)
	}
	return resp, ret.Error(1)
}

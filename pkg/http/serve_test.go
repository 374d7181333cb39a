package xhttp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_DefaultOptionCarriesLogger(t *testing.T) {
	require.NotNil(t, DefaultServerOption.Logger)

	s := NewServer(DefaultServerOption)
	s.Router = CreateDefaultRouter()
	s.Use(RecoverMiddleware)
	s.GET("/ping", func(ctx *RequestCtx) {})

	// DoRouting logs every route and middleware through Server.Logger; a
	// nil logger here takes the binary down before it listens.
	require.NotNil(t, s.Server.Logger)
	assert.NoError(t, s.DoRouting())
}

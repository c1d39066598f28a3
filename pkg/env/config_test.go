package env

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/deckmem/pkg/framework"
)

func TestWithClientID(t *testing.T) {
	assert.Equal(t, "tcp://localhost:7700", WithClientID("tcp://localhost:7700", "deckcli"))
	assert.Equal(t, "mqtt://broker/deck/?client-id=mine", WithClientID("mqtt://broker/deck/?client-id=mine", "deckcli"))

	u, err := url.Parse(WithClientID("mqtt://broker/deck/?endpoint=board", "deckcli"))
	require.NoError(t, err)
	assert.Equal(t, "board", u.Query().Get("endpoint"))
	assert.True(t, strings.HasPrefix(u.Query().Get("client-id"), "deckcli"))
}

func TestNewConfigCopies(t *testing.T) {
	conf := NewConfig()
	conf.LinkURL = "sim:"
	assert.NotEqual(t, "sim:", Default().LinkURL)
}

func TestConnectSim(t *testing.T) {
	conf := NewConfig()
	conf.LinkURL = "sim:"
	conn, err := conf.Connect()
	require.NoError(t, err)

	r := fx.NewRunner()
	r.StopOnError = true
	r.Go(fx.NamedRun(conf.LinkURL, conn))

	req, err := conn.Manager.QueryDecks()
	require.NoError(t, err)
	select {
	case res := <-req.ResultChan():
		require.NoError(t, res.Err)
		assert.Len(t, res.Decks, 2)
	case <-time.After(time.Second):
		t.Fatal("query timeout")
	}

	r.Stop()
	assert.NoError(t, r.Wait())
	assert.Empty(t, conn.Manager.Decks())
}

func TestConnectInvalid(t *testing.T) {
	conf := NewConfig()
	conf.LinkURL = "bogus://somewhere"
	_, err := conf.Connect()
	assert.Error(t, err)
	conf.LinkURL = "sim:"
	conf.BoardFile = "/nonexistent/board.yaml"
	_, err = conf.Connect()
	assert.Error(t, err)
}

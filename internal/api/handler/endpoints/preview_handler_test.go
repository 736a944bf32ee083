package endpoints

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AppKaki/blockly-ulisp/internal/api/service"
	"github.com/AppKaki/blockly-ulisp/internal/api/websocket"
	"github.com/AppKaki/blockly-ulisp/internal/gen"
)

type wireMessage struct {
	Type     string         `json:"type"`
	Room     string         `json:"room"`
	ClientID string         `json:"clientId"`
	Data     map[string]any `json:"data"`
}

func previewServer(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zerolog.Nop()
	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	router := gin.New()
	PreviewHandler(router, hub, service.NewGenerationService(logger, gen.DefaultOptions()), logger)
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *gorilla.Conn {
	t.Helper()
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func next(t *testing.T, conn *gorilla.Conn, want string) wireMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg wireMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == want {
			return msg
		}
	}
}

func TestPreview_BroadcastsToRoom(t *testing.T) {
	url := previewServer(t) + "/api/v1/ws/preview/lab"

	alice := dial(t, url)
	joined := next(t, alice, "join")
	assert.Equal(t, float64(1), joined.Data["clients"])

	bob := dial(t, url)
	next(t, bob, "join")
	assert.Equal(t, float64(2), next(t, alice, "join").Data["clients"])

	require.NoError(t, alice.WriteJSON(map[string]any{
		"type": "generate",
		"data": map[string]any{"workspace": json.RawMessage(printJSON)},
	}))

	for _, conn := range []*gorilla.Conn{alice, bob} {
		msg := next(t, conn, "generated")
		assert.Equal(t, "lab", msg.Room)
		assert.Equal(t, "main() {\n    print('hi');\n}", msg.Data["code"])
	}
}

func TestPreview_ErrorsGoToSenderOnly(t *testing.T) {
	url := previewServer(t) + "/api/v1/ws/preview/lab"
	alice := dial(t, url)
	next(t, alice, "join")

	require.NoError(t, alice.WriteMessage(gorilla.TextMessage, []byte(`{"type":"generate","data":{"format":"xml"}}`)))
	assert.NotEmpty(t, next(t, alice, "error").Data["message"])

	require.NoError(t, alice.WriteMessage(gorilla.TextMessage, []byte(`not json`)))
	assert.Equal(t, "Invalid message format", next(t, alice, "error").Data["message"])

	require.NoError(t, alice.WriteMessage(gorilla.TextMessage, []byte(`{"type":"chat"}`)))
	assert.Equal(t, "Unsupported message type chat", next(t, alice, "error").Data["message"])
}

func TestPreview_FailedGenerationKeepsConnection(t *testing.T) {
	url := previewServer(t) + "/api/v1/ws/preview/lab"
	alice := dial(t, url)
	next(t, alice, "join")

	hostile := []string{
		`{"blocks":{"blocks":[null]}}`,
		`{"blocks":{"blocks":[{"type":"lists_create_with","id":"l","extraState":{"itemCount":-1}}]}}`,
		`{"blocks":{"blocks":[{"type":"no_such_block","id":"x"}]}}`,
	}
	for _, doc := range hostile {
		require.NoError(t, alice.WriteJSON(map[string]any{
			"type": "generate",
			"data": map[string]any{"workspace": json.RawMessage(doc)},
		}))
		assert.NotEmpty(t, next(t, alice, "error").Data["message"], doc)
	}

	require.NoError(t, alice.WriteJSON(map[string]any{
		"type": "generate",
		"data": map[string]any{"workspace": json.RawMessage(printJSON), "options": map[string]any{"indent": "  "}},
	}))
	assert.Equal(t, "main() {\n  print('hi');\n}", next(t, alice, "generated").Data["code"])

	bob := dial(t, url)
	assert.Equal(t, float64(2), next(t, bob, "join").Data["clients"])
}

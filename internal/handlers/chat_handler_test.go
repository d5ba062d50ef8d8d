package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"brainself/internal/access"
	"brainself/internal/models"
	"brainself/internal/realtime"
	"brainself/internal/services"
)

// scriptedChat отдает заранее заданную историю и живой поток
type scriptedChat struct {
	services.ChatService
	backlog []realtime.ChatEvent
	live    chan realtime.ChatEvent
}

func (f *scriptedChat) List(context.Context, access.Session, uuid.UUID, *time.Time) ([]realtime.ChatEvent, error) {
	return f.backlog, nil
}

func (f *scriptedChat) Subscribe(context.Context, access.Session, uuid.UUID) (<-chan realtime.ChatEvent, func(), error) {
	return f.live, func() {}, nil
}

type profileMap map[uuid.UUID]*models.Profile

func (m profileMap) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	if p, ok := m[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f wsFrame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestChatHandler_StreamSkipsBacklogDuplicatesAndClosesOnSignOut(t *testing.T) {
	userID, session := sessionFor(models.RoleStudent)
	events := access.NewEvents()
	resolver := access.NewResolver(profileMap{userID: session.Profile}, nil)

	groupID := uuid.New()
	old := realtime.ChatEvent{ID: uuid.New(), GroupID: groupID, Message: "from backlog"}
	fresh := realtime.ChatEvent{ID: uuid.New(), GroupID: groupID, Message: "live"}
	chat := &scriptedChat{backlog: []realtime.ChatEvent{old}, live: make(chan realtime.ChatEvent, 4)}
	// сообщение из истории пришло и в живой поток
	chat.live <- old
	chat.live <- fresh

	r := gin.New()
	r.Use(SessionMiddleware(fakeTokens{"student": userID}, fakeResolver{userID: session}))
	r.GET("/groups/:id/stream", NewChatHandler(chat, resolver, events, nil).Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/groups/" + groupID.String() + "/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {"Bearer student"}})
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	first := readFrame(t, conn)
	require.NotNil(t, first.Message)
	assert.Equal(t, old.ID, first.Message.ID)

	second := readFrame(t, conn)
	require.NotNil(t, second.Message)
	assert.Equal(t, fresh.ID, second.Message.ID, "backlog message must not be repeated")

	events.Publish(access.AuthEvent{Type: access.EventSignedOut, UserID: userID})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestChatHandler_StreamRejectsAnonymous(t *testing.T) {
	chat := &scriptedChat{live: make(chan realtime.ChatEvent)}
	r := gin.New()
	r.Use(SessionMiddleware(fakeTokens{}, fakeResolver{}))
	r.GET("/groups/:id/stream", Gate(access.RequireAuthenticated),
		NewChatHandler(chat, access.NewResolver(profileMap{}, nil), access.NewEvents(), nil).Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/groups/" + uuid.NewString() + "/stream"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

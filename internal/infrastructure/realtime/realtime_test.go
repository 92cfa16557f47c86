package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	"github.com/sangkips/brewline-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() *entity.Order {
	return &entity.Order{
		ID:      uuid.New(),
		Status:  enum.OrderStatusProcessing,
		Channel: enum.OrderChannelOnline,
		Items:   []entity.OrderItem{{Name: "Latte", Quantity: 2}},
	}
}

func TestKafkaPublisher_SendsKeyedMessage(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	order := sampleOrder()

	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var msg Message
		if err := json.Unmarshal(val, &msg); err != nil {
			return err
		}
		if msg.Event != EventNewOrder || msg.Data.ID != order.ID || len(msg.Data.Items) != 1 {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := NewKafkaPublisher(producer, "orders.new", logger.Discard())
	require.NoError(t, p.PublishNewOrder(context.Background(), order))
	require.NoError(t, p.Close())
}

func TestKafkaPublisher_SendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPublisher(producer, "orders.new", logger.Discard())
	err := p.PublishNewOrder(context.Background(), sampleOrder())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

type recordingPublisher struct {
	calls int
	err   error
}

func (r *recordingPublisher) PublishNewOrder(context.Context, *entity.Order) error {
	r.calls++
	return r.err
}

func TestFanOut_ContinuesPastFailure(t *testing.T) {
	failing := &recordingPublisher{err: errors.New("down")}
	ok := &recordingPublisher{}

	err := FanOut{failing, ok}.PublishNewOrder(context.Background(), sampleOrder())

	assert.Error(t, err)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)
}

func TestHub_BroadcastsToSubscriber(t *testing.T) {
	hub := NewHub(logger.Discard())
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	order := sampleOrder()
	require.NoError(t, hub.PublishNewOrder(context.Background(), order))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, EventNewOrder, msg.Event)
	assert.Equal(t, order.ID, msg.Data.ID)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

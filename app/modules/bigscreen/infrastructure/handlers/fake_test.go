package bigscreenhandlers

import (
	"context"
	"sync"

	bigscreenservice "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/application"
	bigscreendomain "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/domain"
	"github.com/ThreeDotsLabs/watermill/message"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	mu    sync.Mutex
	trace []string

	BoardFunc          func() bigscreenservice.BoardSnapshot
	LiveFunc           func() bigscreenservice.LiveSnapshot
	RequestRefreshFunc func()
	BoardHeightFunc    func(viewport bigscreendomain.Viewport) bigscreenservice.HeightView
}

func NewFakeService() *FakeService {
	return &FakeService{trace: []string{}}
}

func (f *FakeService) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeService) Run(context.Context) { f.record("Run") }

func (f *FakeService) Close() error {
	f.record("Close")
	return nil
}

func (f *FakeService) Board() bigscreenservice.BoardSnapshot {
	f.record("Board")
	if f.BoardFunc != nil {
		return f.BoardFunc()
	}
	return bigscreenservice.BoardSnapshot{}
}

func (f *FakeService) Live() bigscreenservice.LiveSnapshot {
	f.record("Live")
	if f.LiveFunc != nil {
		return f.LiveFunc()
	}
	return bigscreenservice.LiveSnapshot{}
}

func (f *FakeService) RequestRefresh() {
	f.record("RequestRefresh")
	if f.RequestRefreshFunc != nil {
		f.RequestRefreshFunc()
	}
}

func (f *FakeService) BoardHeight(viewport bigscreendomain.Viewport) bigscreenservice.HeightView {
	f.record("BoardHeight")
	if f.BoardHeightFunc != nil {
		return f.BoardHeightFunc(viewport)
	}
	h := bigscreendomain.BoardHeight(viewport)
	return bigscreenservice.HeightView{MinHeight: h, MaxHeight: h}
}

// ------------------------
// Fake Subscriber
// ------------------------

type FakeSubscriber struct {
	mu     sync.Mutex
	topics map[string]chan *message.Message
}

func NewFakeSubscriber() *FakeSubscriber {
	return &FakeSubscriber{topics: make(map[string]chan *message.Message)}
}

func (f *FakeSubscriber) channel(topic string) chan *message.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.topics[topic]
	if !ok {
		ch = make(chan *message.Message, 8)
		f.topics[topic] = ch
	}
	return ch
}

func (f *FakeSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := f.channel(topic)
	out := make(chan *message.Message)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-ch:
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (f *FakeSubscriber) Publish(topic string, payload []byte) *message.Message {
	msg := message.NewMessage("test", payload)
	f.channel(topic) <- msg
	return msg
}

// ------------------------
// Fake Client Metrics
// ------------------------

type fakeClientMetrics struct {
	mu        sync.Mutex
	connected int
}

func (m *fakeClientMetrics) ClientConnected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected++
}

func (m *fakeClientMetrics) ClientDisconnected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected--
}

func (m *fakeClientMetrics) Connected() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

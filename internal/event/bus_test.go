package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-api/internal/model"
)

func TestInMemoryBus(t *testing.T) {
	t.Run("delivers to every subscriber", func(t *testing.T) {
		bus := NewBus()
		first, unsubFirst := bus.Subscribe("first")
		defer unsubFirst()
		second, unsubSecond := bus.Subscribe("second")
		defer unsubSecond()

		e := New(TypeProductCreated, model.AuditActor{UserID: "u1"}, "products/p1", nil, map[string]any{"name": "Desk"})
		bus.Publish(e)

		for _, ch := range []<-chan Event{first, second} {
			select {
			case got := <-ch:
				assert.Equal(t, e.ID, got.ID)
				assert.Equal(t, TypeProductCreated, got.Type)
				assert.Equal(t, "u1", got.Actor.UserID)
			case <-time.After(time.Second):
				t.Fatal("event not delivered")
			}
		}
	})

	t.Run("type filter", func(t *testing.T) {
		bus := NewBus()
		products, unsubscribe := bus.Subscribe("products", TypeProductCreated, TypeProductDeleted)
		defer unsubscribe()

		bus.Publish(New(TypeCategoryCreated, model.AuditActor{}, "categories/c1", nil, nil))
		bus.Publish(New(TypeProductDeleted, model.AuditActor{}, "products/p1", nil, nil))

		require.Len(t, products, 1)
		assert.Equal(t, TypeProductDeleted, (<-products).Type)
	})

	t.Run("unsubscribe closes the channel", func(t *testing.T) {
		bus := NewBus()
		ch, unsubscribe := bus.Subscribe("gone")
		unsubscribe()
		unsubscribe()

		_, open := <-ch
		assert.False(t, open)

		bus.Publish(New(TypeUserDeleted, model.AuditActor{}, "users/x", nil, nil))
		assert.Zero(t, bus.Dropped())
	})

	t.Run("full subscriber does not block publisher", func(t *testing.T) {
		bus := NewBus()
		ch, unsubscribe := bus.Subscribe("slow")
		defer unsubscribe()

		done := make(chan struct{})
		go func() {
			for i := 0; i < subscriberBuffer+10; i++ {
				bus.Publish(New(TypeCategoryUpdated, model.AuditActor{}, "categories/c", nil, nil))
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("publish blocked")
		}
		require.Len(t, ch, subscriberBuffer)
		assert.Equal(t, uint64(10), bus.Dropped())
	})

	t.Run("new events carry id and timestamp", func(t *testing.T) {
		e := New(TypeUserCreated, model.AuditActor{}, "users/1", nil, nil)
		assert.NotEmpty(t, e.ID)
		_, err := time.Parse(time.RFC3339Nano, e.Timestamp)
		assert.NoError(t, err)
	})
}

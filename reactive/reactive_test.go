package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReactiveCycleBlocking(t *testing.T) {
	obs := New[int](1)
	sub := obs.Subscribe()
	defer sub.Cancel()
	go obs.Publish(1)
	v := <-sub.Channel()
	assert.Equal(t, 1, v)
}

func TestReactiveCycleNonBlockingMultiple(t *testing.T) {
	obs := New[int](2)
	sub := obs.Subscribe()
	defer sub.Cancel()
	obs.Publish(1)
	obs.Publish(2)
	v := <-sub.Channel()
	assert.Equal(t, 1, v)
	v = <-sub.Channel()
	assert.Equal(t, 2, v)
}

func TestReactiveCycleMultipleSubscribers(t *testing.T) {
	obs := New[int](2)
	sub1 := obs.Subscribe()
	defer sub1.Cancel()
	sub2 := obs.Subscribe()
	defer sub2.Cancel()
	obs.Publish(1)
	obs.Publish(2)
	v := <-sub1.Channel()
	assert.Equal(t, 1, v)
	v = <-sub2.Channel()
	assert.Equal(t, 1, v)
	v = <-sub1.Channel()
	assert.Equal(t, 2, v)
	v = <-sub2.Channel()
	assert.Equal(t, 2, v)
}

func TestReactiveCycleSubscriberCancel(t *testing.T) {
	obs := New[int](2)
	sub1 := obs.Subscribe()
	sub2 := obs.Subscribe()
	sub1.Cancel()
	obs.Publish(1)
	obs.Publish(2)
	v := <-sub2.Channel()
	assert.Equal(t, 1, v)
	v = <-sub2.Channel()
	assert.Equal(t, 2, v)

	v = <-sub1.Channel()
	assert.Equal(t, 0, v) // zero value means channel is closed
}

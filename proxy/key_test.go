package proxy

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type orderService struct{}

func (s *orderService) GetOrder(id string) string { return "order " + id }

type widgetFactory struct{}

func (f *widgetFactory) Produce() (any, error) { return &orderService{}, nil }

func TestKeyFor(t *testing.T) {
	svcType := reflect.TypeOf(&orderService{})
	factoryType := reflect.TypeOf(&widgetFactory{})

	t.Run("named key is name-derived", func(t *testing.T) {
		key := KeyFor(svcType, "orders")

		assert.True(t, key.Named())
		assert.Equal(t, "orders", key.String())
	})

	t.Run("same name resolves to same key regardless of type", func(t *testing.T) {
		a := KeyFor(svcType, "orders")
		b := KeyFor(reflect.TypeOf(&struct{ X int }{}), "orders")

		assert.Equal(t, a, b)
	})

	t.Run("factory role carries reserved prefix", func(t *testing.T) {
		key := KeyFor(factoryType, "widgets")

		assert.Equal(t, FactoryPrefix+"widgets", key.String())
		assert.NotEqual(t, key, KeyFor(svcType, "widgets"))
	})

	t.Run("unnamed key is type-derived", func(t *testing.T) {
		key := KeyFor(svcType, "")

		assert.False(t, key.Named())
		assert.Equal(t, KeyFor(svcType, ""), key)
		assert.NotEqual(t, KeyFor(factoryType, ""), key)
	})
}

func TestCache(t *testing.T) {
	svcType := reflect.TypeOf(&orderService{})

	t.Run("absent key is unknown", func(t *testing.T) {
		cache := NewCache()

		assert.Equal(t, ClassificationUnknown, cache.Classification(KeyFor(svcType, "x")))
	})

	t.Run("first terminal decision wins", func(t *testing.T) {
		cache := NewCache()
		key := KeyFor(svcType, "x")

		first := cache.SetClassification(key, ClassificationNoWrap)
		second := cache.SetClassification(key, ClassificationNeedsWrap)

		assert.Equal(t, ClassificationNoWrap, first)
		assert.Equal(t, ClassificationNoWrap, second)
		assert.Equal(t, ClassificationNoWrap, cache.Classification(key))
	})

	t.Run("wrapper types are recorded per key", func(t *testing.T) {
		cache := NewCache()
		key := KeyFor(svcType, "x")

		_, ok := cache.WrapperType(key)
		assert.False(t, ok)

		cache.SetWrapperType(key, reflect.TypeOf(&Wrapper{}))
		wt, ok := cache.WrapperType(key)
		assert.True(t, ok)
		assert.Equal(t, reflect.TypeOf(&Wrapper{}), wt)
	})

	t.Run("classification string forms", func(t *testing.T) {
		assert.Equal(t, "unknown", ClassificationUnknown.String())
		assert.Equal(t, "needs-wrap", ClassificationNeedsWrap.String())
		assert.Equal(t, "no-wrap", ClassificationNoWrap.String())
	})
}

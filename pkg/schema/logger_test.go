package schema

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerSwapWhileNavigating(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })
	s := mustParse(t)
	buf := person(t, goodTags(t))

	core, logs := observer.New(zap.DebugLevel)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetLogger(zap.New(core))
		}()
		go func() {
			defer wg.Done()
			_, err := s.Navigate(buf, "Person", "tags.0")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	SetLogger(zap.New(core))
	_, err := s.Navigate(buf, "Person", "home")
	require.NoError(t, err)
	assert.NotZero(t, logs.FilterMessage("navigated").Len())

	SetLogger(nil)
	assert.Same(t, nop, Logger())
}

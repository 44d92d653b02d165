package clock

import "time"

// Clock abstracts wall time so snapshot timestamps can be pinned in tests.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// MockClock returns CurrentTime until the field is changed.
type MockClock struct {
	CurrentTime time.Time
}

func (c *MockClock) Now() time.Time {
	return c.CurrentTime
}

var (
	_ Clock = RealClock{}
	_ Clock = (*MockClock)(nil)
)

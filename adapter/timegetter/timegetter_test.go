package timegetter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TimeGetterTestSuite struct {
	suite.Suite
}

func (s *TimeGetterTestSuite) TestGetTimeTracksClock() {
	tg := NewTimeGetter()
	before := time.Now()
	got := tg.GetTime()
	after := time.Now()
	s.False(got.Before(before))
	s.False(got.After(after))
}

func (s *TimeGetterTestSuite) TestFixedAdvancesByStep() {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tg := NewFixed(start, time.Second)
	s.Equal(start, tg.GetTime())
	s.Equal(start.Add(time.Second), tg.GetTime())
	s.Equal(start.Add(2*time.Second), tg.GetTime())
}

func TestTimeGetterTestSuite(t *testing.T) {
	suite.Run(t, new(TimeGetterTestSuite))
}

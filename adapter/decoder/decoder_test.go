package decoder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/porolink/porobase/domain"
)

type parcelRecord struct {
	ID        string    `poro:"id"`
	Status    string    `poro:"status"`
	Weight    float64   `poro:"weight"`
	CreatedAt time.Time `poro:"created_at"`
	PickedAt  time.Time `poro:"picked_at"`
}

type DecoderTestSuite struct {
	suite.Suite
	d domain.Decoder
}

func (s *DecoderTestSuite) SetupTest() {
	s.d = NewDecoder()
}

func (s *DecoderTestSuite) TestDecode() {
	stamp := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	source := domain.M{
		"id":         "p1",
		"status":     "picked_up",
		"weight":     2.5,
		"created_at": "2025-03-01T12:00:00.000Z",
		"picked_at":  domain.NewTimestamp(stamp),
	}

	var rec parcelRecord
	s.Require().NoError(s.d.Decode(source, &rec))
	s.Equal("p1", rec.ID)
	s.Equal("picked_up", rec.Status)
	s.Equal(2.5, rec.Weight)
	s.True(rec.CreatedAt.Equal(stamp))
	s.True(rec.PickedAt.Equal(stamp))
}

func (s *DecoderTestSuite) TestDecodeFieldNameFallback() {
	type row struct {
		Status string
	}
	var r row
	s.Require().NoError(s.d.Decode(domain.M{"Status": "new"}, &r))
	s.Equal("new", r.Status)
}

func (s *DecoderTestSuite) TestNilTarget() {
	s.ErrorIs(s.d.Decode(domain.M{}, nil), domain.ErrTargetNil)
}

func (s *DecoderTestSuite) TestNonPointerTarget() {
	s.ErrorIs(s.d.Decode(domain.M{}, parcelRecord{}), domain.ErrNonPointer)
}

func (s *DecoderTestSuite) TestMismatchedTypes() {
	var rec parcelRecord
	err := s.d.Decode(domain.M{"weight": "heavy"}, &rec)
	s.Error(err)
}

func TestDecoderTestSuite(t *testing.T) {
	suite.Run(t, new(DecoderTestSuite))
}

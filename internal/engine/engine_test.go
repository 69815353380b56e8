package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lc/bip353/internal/engine"
	"github.com/lc/bip353/pkg/bip353"
)

// stubLookup returns a fixed set of TXT records or a fixed error.
type stubLookup struct {
	records [][]string
	err     error
}

func (s stubLookup) LookupTXT(_ context.Context, _ string) ([][]string, error) {
	return s.records, s.err
}

type EngineTestSuite struct {
	suite.Suite
}

func (s *EngineTestSuite) TestResolveSuccess() {
	eng := engine.New(bip353.NewResolver(stubLookup{
		records: [][]string{{"bitcoin:bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"}},
	}))

	instruction, err := eng.Resolve(context.Background(), "alice@example.com")

	s.Require().NoError(err)
	s.Equal(bip353.OnChain, instruction.Type)

	stats := eng.Stats()
	s.Equal(int64(1), stats.Resolutions)
	s.Equal(int64(0), stats.Failures)
}

func (s *EngineTestSuite) TestResolveFailureCounted() {
	eng := engine.New(bip353.NewResolver(stubLookup{
		err: errors.New("no records found: NXDOMAIN"),
	}))

	instruction, err := eng.Resolve(context.Background(), "alice@example.com")

	s.Nil(instruction)
	s.Require().Error(err)
	s.Equal(bip353.KindDNS, bip353.ErrorKind(err))

	stats := eng.Stats()
	s.Equal(int64(1), stats.Resolutions)
	s.Equal(int64(1), stats.Failures)
}

func (s *EngineTestSuite) TestCountersAccumulate() {
	eng := engine.New(bip353.NewResolver(stubLookup{
		records: [][]string{{"bitcoin:?lno=lno1pg257"}},
	}))

	for i := 0; i < 3; i++ {
		_, err := eng.Resolve(context.Background(), "alice@example.com")
		s.Require().NoError(err)
	}
	// Invalid address fails before the lookup but still counts.
	_, err := eng.Resolve(context.Background(), "not-an-address")
	s.Error(err)

	stats := eng.Stats()
	s.Equal(int64(4), stats.Resolutions)
	s.Equal(int64(1), stats.Failures)
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

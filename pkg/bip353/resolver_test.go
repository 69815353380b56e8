package bip353_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/lc/bip353/pkg/bip353"
)

type mockLookuper struct {
	mock.Mock
}

func (m *mockLookuper) LookupTXT(ctx context.Context, name string) ([][]string, error) {
	args := m.Called(ctx, name)
	if records := args.Get(0); records != nil {
		return records.([][]string), args.Error(1)
	}
	return nil, args.Error(1)
}

type ResolverTestSuite struct {
	suite.Suite
	lookup   *mockLookuper
	resolver *bip353.Resolver
}

func (s *ResolverTestSuite) SetupTest() {
	s.lookup = new(mockLookuper)
	s.resolver = bip353.NewResolver(s.lookup)
}

func (s *ResolverTestSuite) TestQueryName() {
	s.lookup.On("LookupTXT", mock.Anything, "alice.user._bitcoin-payment.example.com").
		Return([][]string{{"bitcoin:" + testAddr}}, nil)

	instruction, err := s.resolver.Resolve(context.Background(), "alice", "example.com")

	s.Require().NoError(err)
	s.Equal(bip353.OnChain, instruction.Type)
	s.lookup.AssertExpectations(s.T())
}

func (s *ResolverTestSuite) TestAggregation() {
	testCases := []struct {
		name     string
		records  [][]string
		wantURI  string
		wantErr  string
		wantKind bip353.Kind
	}{
		{
			name:    "single candidate",
			records: [][]string{{"bitcoin:" + testAddr}},
			wantURI: "bitcoin:" + testAddr,
		},
		{
			name: "segments of one record concatenated in order",
			records: [][]string{
				{"bitcoin:?lno=", testOffer},
			},
			wantURI: "bitcoin:?lno=" + testOffer,
		},
		{
			name: "non-bitcoin records filtered out",
			records: [][]string{
				{"v=spf1 include:example.com ~all"},
				{"bitcoin:" + testAddr},
			},
			wantURI: "bitcoin:" + testAddr,
		},
		{
			name:    "scheme filter is case-insensitive",
			records: [][]string{{"BITCOIN:" + testAddr}},
			wantURI: "BITCOIN:" + testAddr,
		},
		{
			name:     "no candidates",
			records:  [][]string{{"v=spf1 include:example.com ~all"}},
			wantErr:  "no bitcoin uri found",
			wantKind: bip353.KindInvalidRecord,
		},
		{
			name: "multiple candidates",
			records: [][]string{
				{"bitcoin:" + testAddr},
				{"bitcoin:?lightning=" + testInvoice},
			},
			wantErr:  "multiple bitcoin uris found",
			wantKind: bip353.KindInvalidRecord,
		},
		{
			name: "identical candidates still count as two",
			records: [][]string{
				{"bitcoin:" + testAddr},
				{"bitcoin:" + testAddr},
			},
			wantErr:  "multiple bitcoin uris found",
			wantKind: bip353.KindInvalidRecord,
		},
		{
			name: "segments are never independent candidates",
			records: [][]string{
				{"bitcoin:" + testAddr, "bitcoin:" + testAddr},
			},
			// Concatenation yields one (nonsensical) candidate, not two.
			wantURI: "bitcoin:" + testAddr + "bitcoin:" + testAddr,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.lookup.On("LookupTXT", mock.Anything, mock.Anything).
				Return(tc.records, nil)

			instruction, err := s.resolver.Resolve(context.Background(), "alice", "example.com")

			if tc.wantErr != "" {
				s.Require().Error(err)
				s.ErrorContains(err, tc.wantErr)
				s.Equal(tc.wantKind, bip353.ErrorKind(err))
				return
			}

			s.Require().NoError(err)
			s.Equal(tc.wantURI, instruction.URI)
		})
	}
}

func (s *ResolverTestSuite) TestLookupErrorSurfacesAsDNS() {
	cause := errors.New("no records found: NXDOMAIN")
	s.lookup.On("LookupTXT", mock.Anything, mock.Anything).
		Return(nil, cause)

	instruction, err := s.resolver.Resolve(context.Background(), "alice", "example.com")

	s.Nil(instruction)
	s.Require().Error(err)
	s.Equal(bip353.KindDNS, bip353.ErrorKind(err))
	// The underlying cause stays reachable through the wrap chain.
	s.ErrorIs(err, cause)
}

func (s *ResolverTestSuite) TestResolveAddress() {
	s.lookup.On("LookupTXT", mock.Anything, "bob.user._bitcoin-payment.bitcoin.org").
		Return([][]string{{"bitcoin:?lightning=" + testInvoice}}, nil)

	instruction, err := s.resolver.ResolveAddress(context.Background(), "₿bob@bitcoin.org")

	s.Require().NoError(err)
	s.Equal(bip353.Lightning, instruction.Type)
	s.False(instruction.Reusable)
	s.lookup.AssertExpectations(s.T())
}

func (s *ResolverTestSuite) TestResolveAddressInvalidInputSkipsLookup() {
	instruction, err := s.resolver.ResolveAddress(context.Background(), "not-an-address")

	s.Nil(instruction)
	s.Equal(bip353.KindInvalidAddress, bip353.ErrorKind(err))
	s.lookup.AssertNotCalled(s.T(), "LookupTXT", mock.Anything, mock.Anything)
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}

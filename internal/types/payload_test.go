package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type PayloadTestSuite struct {
	suite.Suite
}

func TestPayloadSuite(t *testing.T) {
	suite.Run(t, new(PayloadTestSuite))
}

func (suite *PayloadTestSuite) TestPayloadKinds() {
	suite.Equal(PayloadKindTrade, TradeLogData{}.PayloadKind())
	suite.Equal(PayloadKindCognitive, CognitiveLogData{}.PayloadKind())
	suite.Equal(PayloadKindError, ErrorLogData{}.PayloadKind())
	suite.Equal(PayloadKindSystem, SystemMetricsData{}.PayloadKind())
	suite.Equal(PayloadKindPerformance, PerformanceLogData{}.PayloadKind())
	suite.Equal(PayloadKindGeneric, GenericLogData{}.PayloadKind())
}

func (suite *PayloadTestSuite) TestStrictCategoriesRejectGeneric() {
	suite.False(PayloadAllowed(CategoryTrade, PayloadKindGeneric))
	suite.False(PayloadAllowed(CategoryCognitive, PayloadKindGeneric))

	suite.True(PayloadAllowed(CategoryTrade, PayloadKindTrade))
	suite.True(PayloadAllowed(CategoryCognitive, PayloadKindCognitive))
}

func (suite *PayloadTestSuite) TestCrossCategoryMismatch() {
	suite.False(PayloadAllowed(CategoryTrade, PayloadKindCognitive))
	suite.False(PayloadAllowed(CategoryCognitive, PayloadKindTrade))
	suite.False(PayloadAllowed(CategorySystem, PayloadKindTrade))
	suite.False(PayloadAllowed(CategoryError, PayloadKindPerformance))
}

func (suite *PayloadTestSuite) TestEveryCategoryAcceptsSomething() {
	for _, category := range AllLogCategories() {
		accepted := false

		for _, kind := range []PayloadKind{
			PayloadKindTrade, PayloadKindCognitive, PayloadKindError,
			PayloadKindSystem, PayloadKindPerformance, PayloadKindGeneric,
		} {
			if PayloadAllowed(category, kind) {
				accepted = true

				break
			}
		}

		suite.True(accepted, "category %s accepts no payload kind", category)
	}
}

func (suite *PayloadTestSuite) TestGenericFallbackCategories() {
	for _, category := range []LogCategory{
		CategorySystem, CategoryPosition, CategoryStrategy, CategoryRisk,
		CategoryPerformance, CategoryError, CategoryMarketData, CategoryRecovery,
		CategoryAlert,
	} {
		suite.True(PayloadAllowed(category, PayloadKindGeneric), "category %s should admit generic", category)
	}
}

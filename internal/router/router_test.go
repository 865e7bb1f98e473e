package router

import (
	"testing"

	"github.com/rxtech-lab/tradelog/internal/types"
	"github.com/stretchr/testify/suite"
)

type RouterTestSuite struct {
	suite.Suite
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func entry(level types.LogLevel, category types.LogCategory, class types.RoutingClass) types.LogEntry {
	return types.LogEntry{
		Level:        level,
		Category:     category,
		RoutingClass: class,
	}
}

// Every (level, category, routing class) combination lands in at least one
// tier and only severe levels bypass batching.
func (suite *RouterTestSuite) TestClassifyExhaustive() {
	for _, level := range types.AllLogLevels() {
		for _, category := range types.AllLogCategories() {
			for _, class := range types.AllRoutingClasses() {
				decision := Classify(entry(level, category, class))

				suite.True(decision.ToHot || decision.ToCold,
					"%s/%s/%s landed in no tier", level, category, class)

				suite.Equal(level.Severe(), decision.Immediate,
					"%s/%s/%s immediate mismatch", level, category, class)

				if level.Severe() || category == types.CategoryTrade {
					suite.True(decision.ToHot && decision.ToCold,
						"%s/%s/%s should be dual-tier", level, category, class)
				}
			}
		}
	}
}

func (suite *RouterTestSuite) TestRoutingClassDrivesTiers() {
	decision := Classify(entry(types.LogLevelInfo, types.CategorySystem, types.RoutingRealTime))
	suite.True(decision.ToHot)
	suite.False(decision.ToCold)
	suite.False(decision.Immediate)

	decision = Classify(entry(types.LogLevelInfo, types.CategorySystem, types.RoutingArchival))
	suite.False(decision.ToHot)
	suite.True(decision.ToCold)

	decision = Classify(entry(types.LogLevelInfo, types.CategoryPerformance, types.RoutingAnalytics))
	suite.False(decision.ToHot)
	suite.True(decision.ToCold)
}

func (suite *RouterTestSuite) TestTradeAlwaysDualTier() {
	// Even a bulk-routed trade is mirrored into the hot tier.
	decision := Classify(entry(types.LogLevelInfo, types.CategoryTrade, types.RoutingBulk))

	suite.True(decision.ToHot)
	suite.True(decision.ToCold)
	suite.False(decision.Immediate)
}

func (suite *RouterTestSuite) TestSevereLevelsForceImmediateDualTier() {
	for _, level := range []types.LogLevel{types.LogLevelError, types.LogLevelCritical} {
		decision := Classify(entry(level, types.CategorySystem, types.RoutingRealTime))

		suite.True(decision.ToHot)
		suite.True(decision.ToCold)
		suite.True(decision.Immediate)
	}
}

func (suite *RouterTestSuite) TestWarningIsNotImmediate() {
	decision := Classify(entry(types.LogLevelWarning, types.CategoryError, types.RoutingDashboard))

	suite.True(decision.ToHot)
	suite.False(decision.Immediate)
}
